package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay relays change events over a Redis Pub/Sub channel. The caller
// owns the client.
type RedisRelay struct {
	client   *redis.Client
	channel  string
	instance string
	logger   *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisRelay(client *redis.Client, channel, instance string, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, instance: instance, logger: logger}
}

func (r *RedisRelay) Publish(ctx context.Context, event order.ChangeEvent) error {
	data, err := encodeRelayed(event)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to redis channel %s: %w", r.channel, err)
	}
	return nil
}

func (r *RedisRelay) Listen(ctx context.Context, fn func(order.ChangeEvent)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pubsub != nil {
		return fmt.Errorf("redis relay already listening")
	}

	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to redis channel %s: %w", r.channel, err)
	}
	r.pubsub = pubsub
	r.done = make(chan struct{})

	go func(ch <-chan *redis.Message, done chan struct{}) {
		defer close(done)
		for msg := range ch {
			if event, ok := decodeRelayed([]byte(msg.Payload), r.instance, r.logger); ok {
				fn(event)
			}
		}
	}(pubsub.Channel(), r.done)

	r.logger.Info("Listening for relayed events", zap.String("redis_channel", r.channel))
	return nil
}

// Close stops listening. The client is left open.
func (r *RedisRelay) Close() error {
	r.mu.Lock()
	pubsub, done := r.pubsub, r.done
	r.pubsub = nil
	r.mu.Unlock()
	if pubsub == nil {
		return nil
	}
	err := pubsub.Close()
	<-done
	return err
}
