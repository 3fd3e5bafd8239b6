package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"swapScope/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func swapAt(block uint64, tx string) model.SwapRecord {
	return model.SwapRecord{
		ChainID:           1,
		BlockNumber:       block,
		BlockHash:         "0xblock",
		TxHash:            tx,
		Method:            "swapExactTokensForTokens",
		OriginToken:       "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		OriginAmount:      "340282366920938463463374607431768211455",
		DestinationToken:  "0x6b175474e89094c44da98b954eedeac495271d0f",
		DestinationAmount: "1",
		Line:              "Swap 1 USDC for 1 DAI",
		Timestamp:         1700000000,
	}
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.Error(t, err)
}

func TestSwapSinkFlush(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	sink := NewSwapSink(store)

	require.NoError(t, sink.Emit(ctx, swapAt(10, "0x01")))
	require.NoError(t, sink.Emit(ctx, swapAt(10, "0x02")))
	require.NoError(t, sink.Emit(ctx, swapAt(11, "0x01")))
	require.NoError(t, sink.Flush(ctx))
	require.NoError(t, sink.Flush(ctx))

	n, err := store.CountSwaps(ctx, 1, 0, 100)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}

func TestState(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadState(ctx, "scan")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.SaveState(ctx, "scan", 19000000))
	require.NoError(t, store.SaveState(ctx, "scan", 19000005))

	block, ok, err := store.LoadState(ctx, "scan")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(19000005), block)

	require.Error(t, store.SaveState(ctx, "", 1))
}
