package notifier

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBridge mirrors notifications to Redis Pub/Sub so dashboards and
// alerting outside the process can follow along. A failed publish is
// logged and forgotten; reduction must never wait on a consumer.
type RedisBridge struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisBridge(client *redis.Client, prefix string, logger *slog.Logger) *RedisBridge {
	if prefix == "" {
		prefix = "indexer"
	}
	return &RedisBridge{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "notifier.bridge"),
	}
}

func (b *RedisBridge) Publish(ctx context.Context, channel string, payload []byte) {
	full := b.prefix + ":" + channel
	if err := b.client.Publish(ctx, full, payload).Err(); err != nil {
		b.logger.Warn("bridge publish failed", "channel", full, "error", err)
	}
}
