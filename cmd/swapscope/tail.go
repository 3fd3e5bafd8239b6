package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"swapScope/internal/model"
	"swapScope/internal/storage/pubsub"
)

// runTail prints swap lines published by a running watcher.
func runTail(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RedisAddr == "" {
		return fmt.Errorf("redis address is required")
	}
	channel := cfg.RedisChannel
	if method, _ := cmd.Flags().GetString("method"); method != "" {
		channel = pubsub.MethodChannel(channel, method)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	out := cmd.OutOrStdout()
	err = pubsub.Subscribe(ctx, rdb, channel, func(record model.SwapRecord) {
		fmt.Fprintf(out, "%d Txn %s :: %s\n", record.BlockNumber, record.TxHash, record.Line)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
