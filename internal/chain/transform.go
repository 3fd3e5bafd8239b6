package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"

	"swapScope/internal/model"
)

// ToBlock converts a go-ethereum block to the pipeline's block view.
func ToBlock(block *types.Block) model.Block {
	if block == nil {
		return model.Block{}
	}
	txs := block.Transactions()
	out := model.Block{
		Hash:         block.Hash(),
		Number:       block.NumberU64(),
		Timestamp:    block.Time(),
		Transactions: make([]model.Transaction, 0, len(txs)),
	}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, ToTransaction(tx))
	}
	return out
}

// ToTransaction copies the fields the swap pipeline reads.
func ToTransaction(tx *types.Transaction) model.Transaction {
	value := tx.Value()
	if value == nil {
		value = new(big.Int)
	}
	return model.Transaction{
		Hash:  tx.Hash(),
		To:    tx.To(),
		Value: value,
		Input: tx.Data(),
	}
}
