package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/config"
	"swapScope/internal/dex"
	"swapScope/internal/indexer"
	"swapScope/internal/observability"
	"swapScope/internal/pipeline"
	"swapScope/internal/storage"
	"swapScope/internal/storage/clickhouse"
	"swapScope/internal/storage/postgres"
	"swapScope/internal/storage/pubsub"
	"swapScope/internal/tokens"
)

// app holds the wired components shared by scan and watch.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	chain   *chain.Client
	redis   *redis.Client
	store   *postgres.Store
	ch      *clickhouse.Conn
	metrics *observability.Metrics
	runner  *indexer.Runner
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	router, err := indexer.ParseAddress(cfg.Router)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.chain, err = chain.NewClient(ctx, cfg.RPCURL); err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	if a.cfg.ChainID == 0 {
		if a.cfg.ChainID, err = a.chain.ChainID(ctx); err != nil {
			return nil, fmt.Errorf("get chain id: %w", err)
		}
	}

	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err = a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	if cfg.MetricsAddr != "" {
		reg := observability.NewRegistry()
		a.metrics = observability.NewMetrics(reg, "")
		go func() {
			if err := observability.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	resolver, enricher, err := a.tokenResolver(ctx)
	if err != nil {
		return nil, err
	}

	sink, err := a.sinks(ctx)
	if err != nil {
		return nil, err
	}

	schemas, err := dex.NewSchemaTable()
	if err != nil {
		return nil, err
	}
	decoder, err := dex.NewDecoder(schemas)
	if err != nil {
		return nil, err
	}

	processor, err := pipeline.NewProcessor(pipeline.Config{
		Filter:    dex.NewFilter(router),
		Decoder:   decoder,
		Formatter: dex.NewFormatter(resolver, cfg.NativeSymbol),
		Sink:      sink,
		Enricher:  enricher,
		Workers:   cfg.Workers,
		ChainID:   a.cfg.ChainID,
		Logger:    logger,
		Metrics:   a.metrics,
	})
	if err != nil {
		return nil, err
	}

	source := indexer.NewRateLimitedSource(a.chain, cfg.RPS)
	a.runner = indexer.NewRunner(indexer.RunConfig{
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
		PrevBlocks:   cfg.PrevBlocks,
		BatchSize:    cfg.BatchSize,
		ChainID:      a.cfg.ChainID,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		PollInterval: cfg.PollInterval,
	}, source, processor, logger).WithMetrics(a.metrics)

	if cfg.CheckpointEnabled {
		if a.store != nil {
			name := fmt.Sprintf("swaps:%d:%s", a.cfg.ChainID, dex.NormalizeAddress(router))
			a.runner.WithCheckpoint(indexer.NewStateCheckpoint(a.store, name))
		} else {
			a.runner.WithCheckpoint(indexer.NewCheckpointStore(cfg.Checkpoint, true))
		}
	}
	if cfg.ErrorsOut != "" {
		a.runner.WithDecodeErrorSink(storage.NewJsonlStorage(cfg.ErrorsOut))
	}

	logger.Info("swapscope start",
		zap.String("rpc", redactURL(cfg.RPCURL)),
		zap.Uint64("chain_id", a.cfg.ChainID),
		zap.String("router", router.Hex()),
		zap.Int("workers", cfg.Workers),
		zap.Uint64("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.Bool("postgres", a.store != nil),
		zap.Bool("clickhouse", a.ch != nil),
		zap.Bool("redis", a.redis != nil),
	)

	return a, nil
}

// tokenResolver loads the token list and wraps it with on-chain lookups
// when enabled.
func (a *app) tokenResolver(ctx context.Context) (dex.TokenResolver, pipeline.MetadataEnricher, error) {
	var cache tokens.Cache
	if a.redis != nil {
		cache = tokens.NewRedisCache(a.redis)
	}
	loader := tokens.NewLoader(a.cfg.TokenListTimeout, cache, a.cfg.TokenCacheTTL, a.logger)
	registry, err := loader.Load(ctx, a.cfg.TokenList, a.cfg.ChainID)
	if err != nil {
		return nil, nil, fmt.Errorf("load token list: %w", err)
	}

	if !a.cfg.OnchainMetadata {
		return registry, nil, nil
	}
	resolver := tokens.NewChainResolver(registry, a.chain, a.logger)
	return resolver, resolver, nil
}

func (a *app) sinks(ctx context.Context) (storage.Sink, error) {
	sinks := storage.MultiSink{storage.NewLogSink(a.logger)}

	if a.cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(a.cfg.Out))
	}

	if a.cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, a.cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.store = store
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, postgres.NewSwapSink(store))
	}

	if a.cfg.ClickHouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, a.cfg.ClickHouseDSN)
		if err != nil {
			return nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		a.ch = conn
		sink := clickhouse.NewSwapSink(conn)
		if err := sink.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if a.redis != nil {
		sinks = append(sinks, pubsub.NewPublisher(a.redis, a.cfg.RedisChannel))
	}

	return sinks, nil
}

func (a *app) Close() error {
	var err error
	if a.ch != nil {
		err = multierr.Append(err, a.ch.Close())
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
	}
	if a.chain != nil {
		a.chain.Close()
	}
	return err
}

// redactURL drops the path of hosted endpoints, which carries the api key.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}
	host, _, hasPath := strings.Cut(rest, "/")
	if !hasPath {
		return raw
	}
	return scheme + "://" + host + "/..."
}
