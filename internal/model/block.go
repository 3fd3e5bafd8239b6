package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transaction is the read-only view of a chain transaction used by the swap pipeline.
type Transaction struct {
	Hash  common.Hash
	To    *common.Address
	Value *big.Int
	Input []byte
}

// Block is a block with its full transaction list.
type Block struct {
	Hash         common.Hash
	Number       uint64
	Timestamp    uint64
	Transactions []Transaction
}
