package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"swapScope/internal/chain"
	"swapScope/internal/dex"
	"swapScope/internal/storage/pubsub"
	"swapScope/internal/tokens"
)

// DefaultRouter is the Uniswap V2 router on Ethereum mainnet.
const DefaultRouter = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL     string
	WSURL      string
	ProviderID string

	Router       string
	NativeSymbol string
	ChainID      uint64

	TokenList        string
	TokenListTimeout time.Duration
	TokenCacheTTL    time.Duration
	OnchainMetadata  bool
	Addresses        []string

	FromBlock    uint64
	ToBlock      uint64
	PrevBlocks   uint64
	BatchSize    uint64
	Workers      int
	PollInterval time.Duration
	RPS          float64

	Checkpoint        string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration

	Out           string
	ErrorsOut     string
	PGDSN         string
	RedisAddr     string
	RedisChannel  string
	ClickHouseDSN string
	MetricsAddr   string

	LogLevel string
}

// Load merges config file, environment variables, and flags into Config.
// Provider shorthands in rpc and ws-rpc are expanded to endpoint URLs.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("router", DefaultRouter)
	v.SetDefault("native-symbol", dex.DefaultNativeSymbol)
	v.SetDefault("token-list", tokens.DefaultListURL)
	v.SetDefault("token-list-timeout", 30*time.Second)
	v.SetDefault("token-cache-ttl", time.Hour)
	v.SetDefault("batch-size", uint64(100))
	v.SetDefault("workers", 8)
	v.SetDefault("poll-interval", 12*time.Second)
	v.SetDefault("checkpoint", "./data/checkpoint.json")
	v.SetDefault("checkpoint-enabled", true)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("redis-channel", pubsub.DefaultChannel)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		ProviderID:        v.GetString("provider-id"),
		Router:            v.GetString("router"),
		NativeSymbol:      v.GetString("native-symbol"),
		ChainID:           v.GetUint64("chain-id"),
		TokenList:         v.GetString("token-list"),
		TokenListTimeout:  v.GetDuration("token-list-timeout"),
		TokenCacheTTL:     v.GetDuration("token-cache-ttl"),
		OnchainMetadata:   v.GetBool("onchain-metadata"),
		Addresses:         getStringSlice(v, "address"),
		FromBlock:         v.GetUint64("from"),
		ToBlock:           v.GetUint64("to"),
		PrevBlocks:        v.GetUint64("prev-blocks"),
		BatchSize:         v.GetUint64("batch-size"),
		Workers:           v.GetInt("workers"),
		PollInterval:      v.GetDuration("poll-interval"),
		RPS:               v.GetFloat64("rps"),
		Checkpoint:        v.GetString("checkpoint"),
		CheckpointEnabled: v.GetBool("checkpoint-enabled"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Out:               v.GetString("out"),
		ErrorsOut:         v.GetString("errors-out"),
		PGDSN:             v.GetString("pg-dsn"),
		RedisAddr:         v.GetString("redis-addr"),
		RedisChannel:      v.GetString("redis-channel"),
		ClickHouseDSN:     v.GetString("clickhouse-dsn"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}

	var err error
	if cfg.RPCURL, err = chain.ResolveEndpoint(v.GetString("rpc"), cfg.ProviderID, false); err != nil {
		return Config{}, fmt.Errorf("rpc: %w", err)
	}
	if cfg.WSURL, err = chain.ResolveEndpoint(v.GetString("ws-rpc"), cfg.ProviderID, true); err != nil {
		return Config{}, fmt.Errorf("ws-rpc: %w", err)
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
