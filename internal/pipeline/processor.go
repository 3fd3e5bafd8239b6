package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapScope/internal/dex"
	"swapScope/internal/model"
	"swapScope/internal/observability"
	"swapScope/internal/storage"
)

// MetadataEnricher fetches metadata for tokens the resolver is missing.
// It returns how many of the addresses became resolvable.
type MetadataEnricher interface {
	Ensure(ctx context.Context, addresses []common.Address) int
}

// Result is the outcome of one matched transaction.
type Result struct {
	TxHash   common.Hash
	Selector string
	Method   dex.SwapMethod
	Input    dex.SwapInput
	Line     string
	Err      error
	Warnings []error
}

// BlockReport summarizes one processed block.
type BlockReport struct {
	Number   uint64
	Hash     common.Hash
	Matched  int
	Emitted  int
	Skipped  []Result
	Warnings int
}

// DecodeErrors converts the skipped transactions into storable records.
func (r BlockReport) DecodeErrors(chainID uint64) []model.DecodeError {
	out := make([]model.DecodeError, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		out = append(out, model.DecodeError{
			ChainID:     chainID,
			BlockNumber: r.Number,
			TxHash:      s.TxHash.Hex(),
			Selector:    s.Selector,
			Method:      s.Method.Name(),
			Error:       s.Err.Error(),
		})
	}
	return out
}

// Config wires a Processor.
type Config struct {
	Filter    *dex.Filter
	Decoder   *dex.Decoder
	Formatter *dex.Formatter
	Sink      storage.Sink
	Enricher  MetadataEnricher
	Workers   int
	ChainID   uint64
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// Processor decodes and emits the router swaps of a block.
type Processor struct {
	filter    *dex.Filter
	decoder   *dex.Decoder
	formatter *dex.Formatter
	sink      storage.Sink
	enricher  MetadataEnricher
	workers   int
	chainID   uint64
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewProcessor(cfg Config) (*Processor, error) {
	if cfg.Filter == nil || cfg.Decoder == nil || cfg.Formatter == nil {
		return nil, fmt.Errorf("filter, decoder and formatter are required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		filter:    cfg.Filter,
		decoder:   cfg.Decoder,
		formatter: cfg.Formatter,
		sink:      cfg.Sink,
		enricher:  cfg.Enricher,
		workers:   workers,
		chainID:   cfg.ChainID,
		logger:    logger,
		metrics:   cfg.Metrics,
		now:       time.Now,
	}, nil
}

// ProcessBlock decodes the block's router swaps on the worker pool and emits
// each line through a single consumer. It returns after every line of the
// block has been emitted and buffered sinks have been flushed, so sequential
// calls keep blocks in order. Lines within a block may be emitted in any order.
// Per-transaction failures are reported in BlockReport.Skipped; the returned
// error covers cancellation and sink failures only.
func (p *Processor) ProcessBlock(ctx context.Context, block model.Block) (BlockReport, error) {
	start := time.Now()
	matched := p.filter.Match(block.Transactions)
	report := BlockReport{
		Number:  block.Number,
		Hash:    block.Hash,
		Matched: len(matched),
	}

	p.logger.Info("block",
		zap.String("hash", block.Hash.Hex()),
		zap.Uint64("number", block.Number),
		zap.Int("txs", len(block.Transactions)),
		zap.Int("matched", len(matched)),
	)

	if len(matched) == 0 {
		err := p.flush(ctx)
		p.metrics.RecordBlock(0, time.Since(start))
		return report, err
	}

	results := make(chan Result)
	done := make(chan struct{})
	var sinkErr error

	go func() {
		defer close(done)
		for r := range results {
			if r.Err != nil {
				report.Skipped = append(report.Skipped, r)
				p.metrics.RecordSkipped(skipReason(r.Err))
				p.logger.Warn("swap skipped",
					zap.String("tx", r.TxHash.Hex()),
					zap.String("selector", r.Selector),
					zap.Error(r.Err),
				)
				continue
			}

			report.Warnings += len(r.Warnings)
			p.metrics.RecordUnresolved(len(r.Warnings))
			for _, w := range r.Warnings {
				p.logger.Debug("token metadata missing", zap.String("tx", r.TxHash.Hex()), zap.Error(w))
			}

			if err := p.sink.Emit(ctx, p.record(block, r)); err != nil {
				sinkErr = multierr.Append(sinkErr, fmt.Errorf("emit %s: %w", r.TxHash.Hex(), err))
				p.metrics.RecordSinkError()
				continue
			}
			report.Emitted++
			p.metrics.RecordEmitted(r.Method.Name())
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, tx := range matched {
		tx := tx
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			r := p.processTx(gctx, tx)
			select {
			case results <- r:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	waitErr := g.Wait()
	close(results)
	<-done

	if waitErr == nil {
		waitErr = ctx.Err()
	}
	err := multierr.Combine(waitErr, sinkErr)
	if waitErr == nil {
		err = multierr.Append(err, p.flush(ctx))
	}

	p.metrics.RecordBlock(len(matched), time.Since(start))
	return report, err
}

func (p *Processor) processTx(ctx context.Context, tx model.Transaction) Result {
	r := Result{TxHash: tx.Hash}
	if sel, ok := dex.SelectorOf(tx.Input); ok {
		r.Selector = sel.Hex()
	}

	method, input, err := p.decoder.DecodeTransaction(tx)
	r.Method = method
	if err != nil {
		r.Err = err
		return r
	}
	r.Input = input

	line, missing := p.formatter.Describe(input)
	if len(missing) > 0 && p.enricher != nil {
		if p.enricher.Ensure(ctx, missing) > 0 {
			line, missing = p.formatter.Describe(input)
		}
	}
	r.Line = line
	for _, addr := range missing {
		r.Warnings = append(r.Warnings, errors.Wrap(dex.ErrMissingTokenMetadata, dex.NormalizeAddress(addr)))
	}
	return r
}

func (p *Processor) record(block model.Block, r Result) model.SwapRecord {
	return model.SwapRecord{
		ChainID:           p.chainID,
		BlockNumber:       block.Number,
		BlockHash:         block.Hash.Hex(),
		TxHash:            r.TxHash.Hex(),
		Method:            r.Method.Name(),
		OriginToken:       tokenKey(r.Input.OriginAddress),
		OriginAmount:      r.Input.OriginAmount.String(),
		DestinationToken:  tokenKey(r.Input.DestinationAddress),
		DestinationAmount: r.Input.DestinationAmount.String(),
		Line:              r.Line,
		Timestamp:         block.Timestamp,
		IngestedAt:        p.now().UTC().Format(time.RFC3339Nano),
	}
}

func (p *Processor) flush(ctx context.Context) error {
	f, ok := p.sink.(storage.Flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(ctx); err != nil {
		p.metrics.RecordSinkError()
		return fmt.Errorf("flush sink: %w", err)
	}
	return nil
}

func tokenKey(address *common.Address) string {
	if address == nil {
		return ""
	}
	return dex.NormalizeAddress(*address)
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, dex.ErrAmountOverflow):
		return "amount_overflow"
	case errors.Is(err, dex.ErrMalformedCalldata):
		return "malformed_calldata"
	case errors.Is(err, dex.ErrUnrecognizedSelector):
		return "unrecognized_selector"
	default:
		return "error"
	}
}
