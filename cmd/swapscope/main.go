package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"swapScope/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "swapscope",
		Short:        "Uniswap V2 router swap monitor",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// .env is optional
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().String("config", "", "config file path")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Print the router swaps of a historical block range",
		RunE:  runScan,
	}
	addChainFlags(scanCmd.Flags())
	addPipelineFlags(scanCmd.Flags())
	scanCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	scanCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	scanCmd.Flags().Uint64("prev-blocks", 0, "scan the last N blocks ending at --to")
	root.AddCommand(scanCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Catch up and follow new blocks",
		RunE:  runWatch,
	}
	addChainFlags(watchCmd.Flags())
	addPipelineFlags(watchCmd.Flags())
	watchCmd.Flags().String("ws-rpc", "", "websocket RPC URL for head subscriptions")
	watchCmd.Flags().Uint64("from", 0, "start block (inclusive), 0 means the next block")
	watchCmd.Flags().Uint64("prev-blocks", 0, "start N blocks before the head")
	watchCmd.Flags().Duration("poll-interval", 12*time.Second, "head polling interval without a subscription")
	root.AddCommand(watchCmd)

	tokensCmd := &cobra.Command{
		Use:   "tokens [address...]",
		Short: "Resolve token metadata from the token list or on-chain",
		RunE:  runTokens,
	}
	addChainFlags(tokensCmd.Flags())
	addTokenFlags(tokensCmd.Flags())
	tokensCmd.Flags().StringSlice("address", nil, "token addresses (comma-separated)")
	root.AddCommand(tokensCmd)

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Print swaps published to redis by a running watcher",
		RunE:  runTail,
	}
	tailCmd.Flags().String("redis-addr", "", "redis address")
	tailCmd.Flags().String("redis-channel", "swaps", "redis pub/sub channel")
	tailCmd.Flags().String("method", "", "only swaps of this router method, e.g. swapExactTokensForTokens")
	tailCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(tailCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "RPC URL or provider shorthand (infura[:id], alchemy[:key], geth, ipc:<path>)")
	flags.String("provider-id", "", "default project id or api key for provider shorthands")
	flags.Uint64("chain-id", 0, "chain id, 0 asks the node")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addTokenFlags(flags *pflag.FlagSet) {
	flags.String("token-list", "", "token list URL or file (default coingecko uniswap list)")
	flags.Duration("token-list-timeout", 30*time.Second, "token list download timeout")
	flags.Duration("token-cache-ttl", time.Hour, "redis cache TTL for the token list")
	flags.Bool("onchain-metadata", false, "fetch unknown token metadata with ERC20 calls")
	flags.String("redis-addr", "", "redis address for the token list cache and swap publishing")
}

func addPipelineFlags(flags *pflag.FlagSet) {
	addTokenFlags(flags)
	flags.String("router", config.DefaultRouter, "router contract address")
	flags.String("native-symbol", "ETH", "symbol of the native currency")
	flags.Uint64("batch-size", 100, "blocks per checkpoint batch")
	flags.Int("workers", 8, "decode workers per block")
	flags.Float64("rps", 0, "maximum block RPC calls per second, 0 disables")
	flags.String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	flags.Bool("checkpoint-enabled", true, "enable checkpointing")
	flags.Int("max-retries", 5, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("out", "", "swap JSONL output path")
	flags.String("errors-out", "", "decode errors JSONL output path")
	flags.String("pg-dsn", "", "Postgres DSN for swaps and checkpoint state")
	flags.String("redis-channel", "swaps", "redis pub/sub channel for swaps")
	flags.String("clickhouse-dsn", "", "ClickHouse DSN for the swap archive")
	flags.String("metrics-addr", "", "Prometheus metrics listen address")
}

func loadConfig(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
