// Package realtime implements the change propagation channel: advisory
// "state changed, re-fetch" signals between mutations and connected
// clients. Signals carry no payload and may coalesce; consumers always
// re-read full state.
package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"podpulse/internal/domain"
)

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisBroker propagates invalidation signals across nodes via redis
// pub/sub.
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string) error {
	return b.client.Publish(ctx, topic, "1").Err()
}

// Subscribe opens a dedicated pub/sub connection for the topic. The
// returned subscription must be closed by the consumer; Close tears the
// connection down and stops the pump goroutine.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (domain.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)
	// Wait for the subscription to be confirmed so a publish racing with
	// Subscribe is not silently lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	sub := &redisSubscription{pubsub: pubsub, ch: make(chan struct{}, 1)}
	go sub.pump()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan struct{}
}

func (s *redisSubscription) C() <-chan struct{} { return s.ch }

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

// pump converts incoming messages into coalesced stale signals. The
// buffered channel of size one means a slow consumer sees at least one
// signal, which is sufficient: it re-fetches full state anyway.
func (s *redisSubscription) pump() {
	defer close(s.ch)
	for range s.pubsub.Channel() {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}
