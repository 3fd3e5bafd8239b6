package clickhouse

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"swapScope/internal/model"
)

const swapsDDL = `
CREATE TABLE IF NOT EXISTS router_swaps (
	chain_id           UInt64,
	block_number       UInt64,
	block_hash         String,
	block_time         DateTime,
	tx_hash            String,
	method             LowCardinality(String),
	origin_token       String,
	origin_amount      UInt128,
	destination_token  String,
	destination_amount UInt128,
	line               String,
	ingested_at        DateTime64(3)
) ENGINE = ReplacingMergeTree
ORDER BY (chain_id, block_number, tx_hash)
`

// SwapSink archives swaps in ClickHouse, one insert batch per flush.
type SwapSink struct {
	conn *Conn

	mu  sync.Mutex
	buf []model.SwapRecord
}

func NewSwapSink(conn *Conn) *SwapSink {
	return &SwapSink{conn: conn}
}

// EnsureSchema creates the swap table.
func (s *SwapSink) EnsureSchema(ctx context.Context) error {
	if err := s.conn.Exec(ctx, swapsDDL); err != nil {
		return fmt.Errorf("create router_swaps: %w", err)
	}
	return nil
}

func (s *SwapSink) Emit(_ context.Context, record model.SwapRecord) error {
	s.mu.Lock()
	s.buf = append(s.buf, record)
	s.mu.Unlock()
	return nil
}

func (s *SwapSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.buf
	s.buf = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	if err := s.insert(ctx, pending); err != nil {
		s.mu.Lock()
		s.buf = append(pending, s.buf...)
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *SwapSink) insert(ctx context.Context, records []model.SwapRecord) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO router_swaps (
			chain_id, block_number, block_hash, block_time, tx_hash, method,
			origin_token, origin_amount, destination_token, destination_amount, line, ingested_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		originAmount, err := parseAmount(r.OriginAmount)
		if err != nil {
			return fmt.Errorf("origin amount of %s: %w", r.TxHash, err)
		}
		destinationAmount, err := parseAmount(r.DestinationAmount)
		if err != nil {
			return fmt.Errorf("destination amount of %s: %w", r.TxHash, err)
		}
		ingestedAt := time.Now().UTC()
		if r.IngestedAt != "" {
			if ts, err := time.Parse(time.RFC3339Nano, r.IngestedAt); err == nil {
				ingestedAt = ts
			}
		}

		err = batch.Append(
			r.ChainID, r.BlockNumber, r.BlockHash, time.Unix(int64(r.Timestamp), 0).UTC(), r.TxHash, r.Method,
			r.OriginToken, originAmount, r.DestinationToken, destinationAmount, r.Line, ingestedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
