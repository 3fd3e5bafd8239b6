package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/indexer"
	"swapScope/internal/model"
	"swapScope/internal/tokens"
)

func runTokens(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addresses, err := indexer.ParseAddresses(append(cfg.Addresses, args...))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cache tokens.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cache = tokens.NewRedisCache(rdb)
	}

	loader := tokens.NewLoader(cfg.TokenListTimeout, cache, cfg.TokenCacheTTL, logger)
	registry, err := loader.Load(ctx, cfg.TokenList, cfg.ChainID)
	if err != nil {
		return fmt.Errorf("load token list: %w", err)
	}

	var client *chain.Client
	if cfg.OnchainMetadata {
		if cfg.RPCURL == "" {
			return fmt.Errorf("rpc url is required for on-chain metadata")
		}
		if client, err = chain.NewClient(ctx, cfg.RPCURL); err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer client.Close()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tSYMBOL\tDECIMALS\tNAME\tSOURCE")
	for _, address := range addresses {
		meta, ok := registry.Lookup(address)
		source := "list"
		if !ok && client != nil {
			meta, err = tokens.FetchTokenMeta(ctx, client, address, logger)
			if err != nil {
				logger.Warn("token metadata fetch failed", zap.String("token", address.Hex()), zap.Error(err))
			}
			ok, source = err == nil, "chain"
		}
		if !ok {
			meta, source = model.TokenMeta{Address: address.Hex()}, "unknown"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", address.Hex(), meta.Symbol, meta.Decimals, meta.Name, source)
	}
	if len(addresses) == 0 {
		logger.Info("token list summary", zap.Int("tokens", registry.Len()))
	}
	return w.Flush()
}
