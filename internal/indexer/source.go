package indexer

//go:generate mockgen -source=source.go -destination=mock/mock_source.go -package=mock

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"swapScope/internal/model"
	"swapScope/internal/pipeline"
)

// BlockSource provides chain blocks.
type BlockSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockByNumber(ctx context.Context, number uint64) (model.Block, error)
}

// HeadSubscriber streams new chain heads.
type HeadSubscriber interface {
	SubscribeNewHeads(ctx context.Context, ch chan<- *types.Header) (ethereum.Subscription, error)
}

// BlockProcessor decodes and emits the swaps of one block.
type BlockProcessor interface {
	ProcessBlock(ctx context.Context, block model.Block) (pipeline.BlockReport, error)
}

// Checkpointer persists the last fully processed block.
type Checkpointer interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, lastProcessed uint64) error
}
