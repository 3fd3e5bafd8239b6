package dex

import (
	"github.com/ethereum/go-ethereum/common"

	"swapScope/internal/model"
)

// Filter selects router transactions carrying a supported swap selector.
type Filter struct {
	router common.Address
}

func NewFilter(router common.Address) *Filter {
	return &Filter{router: router}
}

// Router returns the router address the filter matches.
func (f *Filter) Router() common.Address {
	return f.router
}

// Keep reports whether tx is a supported swap call to the router.
// Contract creations and inputs shorter than a selector never match.
func (f *Filter) Keep(tx model.Transaction) bool {
	if tx.To == nil || *tx.To != f.router {
		return false
	}
	sel, ok := SelectorOf(tx.Input)
	if !ok {
		return false
	}
	_, ok = Classify(sel)
	return ok
}

// Match returns the kept transactions in block order.
func (f *Filter) Match(txs []model.Transaction) []model.Transaction {
	matched := make([]model.Transaction, 0)
	for _, tx := range txs {
		if f.Keep(tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}
