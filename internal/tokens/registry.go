package tokens

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"swapScope/internal/dex"
	"swapScope/internal/model"
)

// Registry is an in-memory token table keyed by normalized address.
type Registry struct {
	mu     sync.RWMutex
	tokens map[string]model.TokenMeta
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]model.TokenMeta)}
}

// RegistryFromList indexes the list entries of chainID. A zero chainID keeps
// every entry. The first entry of an address wins; invalid addresses are
// counted in skipped.
func RegistryFromList(list *List, chainID uint64) (reg *Registry, skipped int) {
	reg = NewRegistry()
	if list == nil {
		return reg, 0
	}
	for _, token := range list.Tokens {
		if chainID != 0 && token.ChainID != chainID {
			continue
		}
		meta, ok := token.Meta()
		if !ok {
			skipped++
			continue
		}
		reg.Add(meta)
	}
	return reg, skipped
}

// Add inserts meta unless its address is already present and reports whether it was stored.
func (r *Registry) Add(meta model.TokenMeta) bool {
	key, ok := dex.NormalizeHex(meta.Address)
	if !ok {
		return false
	}
	meta.Address = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[key]; exists {
		return false
	}
	r.tokens[key] = meta
	return true
}

// Lookup implements dex.TokenResolver.
func (r *Registry) Lookup(address common.Address) (model.TokenMeta, bool) {
	r.mu.RLock()
	meta, ok := r.tokens[dex.NormalizeAddress(address)]
	r.mu.RUnlock()
	return meta, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
