package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"swapScope/internal/model"
)

// DefaultChannel is the base channel swaps are published on.
const DefaultChannel = "swaps"

// Publisher fans swap records out over redis pub/sub. Every record goes to
// the base channel and to <base>:method:<name>.
type Publisher struct {
	client  redis.Cmdable
	channel string
}

func NewPublisher(client redis.Cmdable, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Channels returns the channels a record is published to.
func (p *Publisher) Channels(record model.SwapRecord) []string {
	return []string{p.channel, MethodChannel(p.channel, record.Method)}
}

// MethodChannel returns the per-method channel under base.
func MethodChannel(base, method string) string {
	return fmt.Sprintf("%s:method:%s", base, method)
}

func (p *Publisher) Emit(ctx context.Context, record model.SwapRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := p.client.Pipeline()
	for _, channel := range p.Channels(record) {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

// Subscribe delivers records published on channel until ctx is done.
// Undecodable payloads are skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, handler func(model.SwapRecord)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var record model.SwapRecord
			if err := json.Unmarshal([]byte(msg.Payload), &record); err != nil {
				continue
			}
			handler(record)
		}
	}
}
