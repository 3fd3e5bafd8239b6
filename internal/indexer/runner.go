package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"swapScope/internal/model"
	"swapScope/internal/observability"
	"swapScope/internal/pipeline"
	"swapScope/internal/storage"
)

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	PrevBlocks   uint64
	BatchSize    uint64
	ChainID      uint64
	MaxRetries   int
	RetryBackoff time.Duration
	PollInterval time.Duration
}

// Runner feeds chain blocks through the swap processor in block order.
type Runner struct {
	cfg        RunConfig
	source     BlockSource
	processor  BlockProcessor
	checkpoint Checkpointer
	decodeErrs storage.DecodeErrorSink
	logger     *zap.Logger
	metrics    *observability.Metrics

	next uint64
	head uint64
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source BlockSource, processor BlockProcessor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		source:    source,
		processor: processor,
		logger:    logger,
	}
}

// WithCheckpoint enables resume from and persistence of the last processed block.
func (r *Runner) WithCheckpoint(cp Checkpointer) *Runner {
	r.checkpoint = cp
	return r
}

// WithDecodeErrorSink records skipped transactions.
func (r *Runner) WithDecodeErrorSink(sink storage.DecodeErrorSink) *Runner {
	r.decodeErrs = sink
	return r
}

func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// Run scans the configured historical range.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}

	head, err := r.latestWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}

	blockRange, err := ResolveRange(r.cfg.FromBlock, r.cfg.ToBlock, r.cfg.PrevBlocks, head)
	if err != nil {
		return err
	}

	from, err := r.resume(ctx, blockRange.From)
	if err != nil {
		return err
	}
	if from > blockRange.To {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", blockRange.To))
		return nil
	}

	return r.scan(ctx, from, blockRange.To)
}

func (r *Runner) validate() error {
	if r.source == nil {
		return fmt.Errorf("block source is nil")
	}
	if r.processor == nil {
		return fmt.Errorf("block processor is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	return nil
}

// resume returns the first block to process, honoring the checkpoint.
func (r *Runner) resume(ctx context.Context, from uint64) (uint64, error) {
	if r.checkpoint == nil {
		return from, nil
	}
	last, ok, err := r.checkpoint.Load(ctx)
	if err != nil {
		return 0, err
	}
	if ok && last >= from {
		r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", last+1))
		return last + 1, nil
	}
	return from, nil
}

// scan processes [from, to] in batches, saving the checkpoint after each batch.
func (r *Runner) scan(ctx context.Context, from, to uint64) error {
	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		emitted, skipped := 0, 0
		for number := blockRange.From; number <= blockRange.To; number++ {
			report, err := r.processNumber(ctx, number)
			if err != nil {
				return err
			}
			emitted += report.Emitted
			skipped += len(report.Skipped)
		}

		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}

		r.logger.Info("batch complete",
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Int("swaps", emitted),
			zap.Int("skipped", skipped),
		)
	}

	return nil
}

func (r *Runner) processNumber(ctx context.Context, number uint64) (pipeline.BlockReport, error) {
	block, err := r.blockWithRetry(ctx, number)
	if err != nil {
		return pipeline.BlockReport{}, fmt.Errorf("fetch block %d: %w", number, err)
	}

	report, err := r.processor.ProcessBlock(ctx, block)
	if err != nil {
		return report, fmt.Errorf("process block %d: %w", number, err)
	}

	if r.decodeErrs != nil && len(report.Skipped) > 0 {
		if err := r.decodeErrs.PutDecodeErrors(ctx, report.DecodeErrors(r.cfg.ChainID)); err != nil {
			r.logger.Warn("store decode errors failed", zap.Uint64("block", number), zap.Error(err))
		}
	}

	r.next = number + 1
	if number > r.head {
		r.head = number
	}
	r.metrics.RecordProgress(number, r.head)

	return report, nil
}

func (r *Runner) blockWithRetry(ctx context.Context, number uint64) (model.Block, error) {
	var block model.Block
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		block, err = r.source.BlockByNumber(ctx, number)
		return err
	}, r.onRetry("block_by_number"))
	return block, err
}

func (r *Runner) latestWithRetry(ctx context.Context) (uint64, error) {
	var head uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = r.source.LatestBlockNumber(ctx)
		return err
	}, r.onRetry("block_number"))
	if err == nil && head > r.head {
		r.head = head
	}
	return head, err
}

func (r *Runner) onRetry(op string) func(int, error) {
	return func(attempt int, err error) {
		r.metrics.RecordRetry(op)
		r.logger.Warn("rpc retry", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
	}
}
