package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const defaultPollInterval = 12 * time.Second

// Watch catches up from the configured start and then follows the chain head.
// Without a start block or checkpoint only blocks after the current head are
// processed. Heads come from subscriber when set, otherwise the head is polled
// every PollInterval; a failed subscription falls back to polling.
// Watch returns when ctx is done.
func (r *Runner) Watch(ctx context.Context, subscriber HeadSubscriber) error {
	if err := r.validate(); err != nil {
		return err
	}

	head, err := r.latestWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}

	start := head + 1
	if r.cfg.FromBlock > 0 || r.cfg.PrevBlocks > 0 {
		blockRange, err := ResolveRange(r.cfg.FromBlock, 0, r.cfg.PrevBlocks, head)
		if err != nil {
			return err
		}
		start = blockRange.From
	}
	if r.next, err = r.resume(ctx, start); err != nil {
		return err
	}

	if err := r.catchUp(ctx, head); err != nil {
		return err
	}
	r.logger.Info("waiting for new blocks", zap.Uint64("next", r.next))

	if subscriber != nil {
		err := r.follow(ctx, subscriber)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var subErr *subscriptionError
		if !errors.As(err, &subErr) {
			return err
		}
		r.logger.Warn("head subscription failed, polling instead", zap.Error(err))
	}
	return r.poll(ctx)
}

type subscriptionError struct {
	err error
}

func (e *subscriptionError) Error() string { return "head subscription: " + e.err.Error() }

func (e *subscriptionError) Unwrap() error { return e.err }

// catchUp processes every block from r.next up to head.
func (r *Runner) catchUp(ctx context.Context, head uint64) error {
	if head > r.head {
		r.head = head
	}
	if r.next > head {
		return nil
	}
	return r.scan(ctx, r.next, head)
}

func (r *Runner) follow(ctx context.Context, subscriber HeadSubscriber) error {
	heads := make(chan *types.Header, 16)
	sub, err := subscriber.SubscribeNewHeads(ctx, heads)
	if err != nil {
		return &subscriptionError{err: err}
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			return &subscriptionError{err: err}
		case header := <-heads:
			if header == nil || header.Number == nil {
				continue
			}
			if err := r.catchUp(ctx, header.Number.Uint64()); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) poll(ctx context.Context) error {
	interval := r.cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		head, err := r.latestWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("poll head failed", zap.Error(err))
			continue
		}
		if err := r.catchUp(ctx, head); err != nil {
			return err
		}
	}
}
