package tokens

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swapScope/internal/dex"
	"swapScope/internal/model"
)

// Caller executes eth_call against a contract.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type metaEntry struct {
	meta model.TokenMeta
	ok   bool
}

// MetaCache caches on-chain token metadata by address, including failed lookups.
type MetaCache struct {
	mu   sync.RWMutex
	data map[common.Address]metaEntry
}

func NewMetaCache() *MetaCache {
	return &MetaCache{data: make(map[common.Address]metaEntry)}
}

// Get returns the cached metadata and whether the address was fetched before.
func (c *MetaCache) Get(address common.Address) (model.TokenMeta, bool, bool) {
	c.mu.RLock()
	entry, seen := c.data[address]
	c.mu.RUnlock()
	return entry.meta, entry.ok, seen
}

func (c *MetaCache) Set(address common.Address, meta model.TokenMeta, ok bool) {
	c.mu.Lock()
	c.data[address] = metaEntry{meta: meta, ok: ok}
	c.mu.Unlock()
}

// ChainResolver resolves tokens from a base resolver and falls back to ERC20
// calls for addresses fetched through Ensure.
type ChainResolver struct {
	base   dex.TokenResolver
	caller Caller
	cache  *MetaCache
	logger *zap.Logger
}

func NewChainResolver(base dex.TokenResolver, caller Caller, logger *zap.Logger) *ChainResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChainResolver{
		base:   base,
		caller: caller,
		cache:  NewMetaCache(),
		logger: logger,
	}
}

// Lookup implements dex.TokenResolver. It never performs I/O.
func (r *ChainResolver) Lookup(address common.Address) (model.TokenMeta, bool) {
	if r.base != nil {
		if meta, ok := r.base.Lookup(address); ok {
			return meta, true
		}
	}
	meta, ok, _ := r.cache.Get(address)
	return meta, ok
}

// Ensure fetches metadata for addresses unknown to the base resolver and not
// fetched before. It returns how many addresses became resolvable.
func (r *ChainResolver) Ensure(ctx context.Context, addresses []common.Address) int {
	resolved := 0
	for _, address := range addresses {
		if r.base != nil {
			if _, ok := r.base.Lookup(address); ok {
				continue
			}
		}
		if _, _, seen := r.cache.Get(address); seen {
			continue
		}

		meta, err := FetchTokenMeta(ctx, r.caller, address, r.logger)
		if err != nil {
			if ctx.Err() != nil {
				return resolved
			}
			r.logger.Warn("token metadata fetch failed", zap.String("token", address.Hex()), zap.Error(err))
			r.cache.Set(address, meta, false)
			continue
		}
		r.cache.Set(address, meta, true)
		resolved++
	}
	return resolved
}

// FetchTokenMeta loads token metadata via ERC20 calls. Decimals are required;
// symbol and name fall back to the bytes32 variants and are optional.
func FetchTokenMeta(ctx context.Context, caller Caller, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	meta := model.TokenMeta{Address: dex.NormalizeAddress(token)}
	if caller == nil {
		return meta, fmt.Errorf("contract caller is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	stringABI, bytes32ABI, err := erc20ABIs()
	if err != nil {
		return meta, fmt.Errorf("parse erc20 abi: %w", err)
	}

	call := func(method string, parsed abi.ABI) ([]interface{}, error) {
		data, err := parsed.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		msg := ethereum.CallMsg{To: &token, Data: data}
		resp, err := caller.CallContract(ctx, msg, nil)
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		values, err := parsed.Unpack(method, resp)
		if err != nil {
			return nil, fmt.Errorf("unpack %s: %w", method, err)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("unpack %s: no values", method)
		}
		return values, nil
	}

	values, err := call("decimals", stringABI)
	if err != nil {
		return meta, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return meta, err
	}
	meta.Decimals = decimals

	textField := func(method string) string {
		if values, err := call(method, stringABI); err == nil {
			if s, ok := values[0].(string); ok {
				return s
			}
		}
		values, err := call(method, bytes32ABI)
		if err != nil {
			logger.Debug("erc20 call failed", zap.String("method", method), zap.String("token", token.Hex()), zap.Error(err))
			return ""
		}
		s, _ := bytes32ToString(values[0])
		return s
	}
	meta.Symbol = textField("symbol")
	meta.Name = textField("name")

	return meta, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		if !v.IsUint64() || v.Uint64() > 255 {
			return 0, fmt.Errorf("decimals out of range: %s", v.String())
		}
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
