package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swapScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS router_swaps (
	chain_id           BIGINT      NOT NULL,
	tx_hash            TEXT        NOT NULL,
	block_number       BIGINT      NOT NULL,
	block_hash         TEXT        NOT NULL,
	block_time         BIGINT      NOT NULL,
	method             TEXT        NOT NULL,
	origin_token       TEXT        NOT NULL,
	origin_amount      NUMERIC(39) NOT NULL,
	destination_token  TEXT        NOT NULL,
	destination_amount NUMERIC(39) NOT NULL,
	line               TEXT        NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, tx_hash)
);
CREATE INDEX IF NOT EXISTS router_swaps_block_idx ON router_swaps (chain_id, block_number);
CREATE TABLE IF NOT EXISTS indexer_state (
	name                 TEXT        PRIMARY KEY,
	last_processed_block BIGINT      NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for swaps and indexer state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the store writes to.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertSwaps stores swaps. A transaction already stored for the chain is left untouched.
func (s *Store) InsertSwaps(ctx context.Context, swaps []model.SwapRecord) error {
	if len(swaps) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, swap := range swaps {
		batch.Queue(`
			INSERT INTO router_swaps (
				chain_id, tx_hash, block_number, block_hash, block_time, method,
				origin_token, origin_amount, destination_token, destination_amount, line
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (chain_id, tx_hash) DO NOTHING
		`,
			int64(swap.ChainID),
			swap.TxHash,
			int64(swap.BlockNumber),
			swap.BlockHash,
			int64(swap.Timestamp),
			swap.Method,
			swap.OriginToken,
			swap.OriginAmount,
			swap.DestinationToken,
			swap.DestinationAmount,
			swap.Line,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range swaps {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// CountSwaps returns the number of stored swaps for a chain between two blocks, inclusive.
func (s *Store) CountSwaps(ctx context.Context, chainID, fromBlock, toBlock uint64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM router_swaps
		WHERE chain_id=$1 AND block_number BETWEEN $2 AND $3
	`, int64(chainID), int64(fromBlock), int64(toBlock)).Scan(&n)
	return n, err
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

// SwapSink buffers emitted swaps and writes them in one batch per flush.
// A failed flush keeps the records for the next one.
type SwapSink struct {
	store *Store

	mu  sync.Mutex
	buf []model.SwapRecord
}

func NewSwapSink(store *Store) *SwapSink {
	return &SwapSink{store: store}
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

	if err := s.store.InsertSwaps(ctx, pending); err != nil {
		s.mu.Lock()
		s.buf = append(pending, s.buf...)
		s.mu.Unlock()
		return fmt.Errorf("insert swaps: %w", err)
	}
	return nil
}
