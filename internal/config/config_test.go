package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	require.Equal(t, DefaultRouter, cfg.Router)
	require.Equal(t, "ETH", cfg.NativeSymbol)
	require.Equal(t, "https://tokens.coingecko.com/uniswap/all.json", cfg.TokenList)
	require.Equal(t, uint64(100), cfg.BatchSize)
	require.Equal(t, 8, cfg.Workers)
	require.Equal(t, 12*time.Second, cfg.PollInterval)
	require.True(t, cfg.CheckpointEnabled)
	require.Equal(t, "swaps", cfg.RedisChannel)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.RPCURL)
	require.Empty(t, cfg.WSURL)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "swapscope.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
rpc: http://node:8545
batch-size: 25
workers: 2
address: "0xa, 0xb"
`), 0o644))

	t.Setenv("SWAPSCOPE_WORKERS", "4")
	t.Setenv("SWAPSCOPE_PG_DSN", "postgres://localhost/swaps")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Uint64("batch-size", 100, "")
	flags.Duration("retry-backoff", time.Second, "")
	require.NoError(t, flags.Parse([]string{"--batch-size=10", "--retry-backoff=2s"}))

	cfg, err := Load(cfgFile, flags)
	require.NoError(t, err)

	require.Equal(t, "http://node:8545", cfg.RPCURL)
	require.Equal(t, uint64(10), cfg.BatchSize)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "postgres://localhost/swaps", cfg.PGDSN)
	require.Equal(t, 2*time.Second, cfg.RetryBackoff)
	require.Equal(t, []string{"0xa", "0xb"}, cfg.Addresses)
}

func TestLoadExpandsProviders(t *testing.T) {
	t.Setenv("SWAPSCOPE_RPC", "infura")
	t.Setenv("SWAPSCOPE_WS_RPC", "infura")
	t.Setenv("SWAPSCOPE_PROVIDER_ID", "abc123")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, "https://mainnet.infura.io/v3/abc123", cfg.RPCURL)
	require.Equal(t, "wss://mainnet.infura.io/ws/v3/abc123", cfg.WSURL)
}

func TestLoadRejectsProviderWithoutID(t *testing.T) {
	t.Setenv("SWAPSCOPE_RPC", "alchemy")

	_, err := Load("", nil)
	require.ErrorContains(t, err, "rpc")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.ErrorContains(t, err, "read config")
}
