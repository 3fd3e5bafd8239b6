package storage

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"swapScope/internal/model"
)

// Sink receives formatted swaps. Emit is called from a single goroutine per block.
type Sink interface {
	Emit(ctx context.Context, record model.SwapRecord) error
}

// Flusher is implemented by sinks that buffer records. Flush is called once
// every line of a block has been emitted.
type Flusher interface {
	Flush(ctx context.Context) error
}

// DecodeErrorSink records transactions that could not be decoded.
type DecodeErrorSink interface {
	PutDecodeErrors(ctx context.Context, errs []model.DecodeError) error
}

// MultiSink fans records out to every sink and aggregates their failures.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, record model.SwapRecord) error {
	var err error
	for _, sink := range m {
		err = multierr.Append(err, sink.Emit(ctx, record))
	}
	return err
}

func (m MultiSink) Flush(ctx context.Context) error {
	var err error
	for _, sink := range m {
		if f, ok := sink.(Flusher); ok {
			err = multierr.Append(err, f.Flush(ctx))
		}
	}
	return err
}

// LogSink writes every swap line to the logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, record model.SwapRecord) error {
	s.logger.Info("Txn "+record.TxHash+" :: "+record.Line,
		zap.Uint64("block", record.BlockNumber),
		zap.String("method", record.Method),
	)
	return nil
}
