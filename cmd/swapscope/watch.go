package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swapScope/internal/chain"
	"swapScope/internal/indexer"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close", zap.Error(err))
		}
	}()

	var subscriber indexer.HeadSubscriber
	if cfg.WSURL != "" {
		ws, err := chain.NewClient(ctx, cfg.WSURL)
		if err != nil {
			logger.Warn("websocket rpc unavailable, polling instead", zap.Error(err))
		} else {
			defer ws.Close()
			subscriber = ws
		}
	}

	logger.Info("watch start",
		zap.Bool("subscription", subscriber != nil),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	err = a.runner.Watch(ctx, subscriber)
	if errors.Is(err, context.Canceled) {
		logger.Info("watch stopped")
		return nil
	}
	return err
}
