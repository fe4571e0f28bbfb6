package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
)

const (
	defaultStreamPrefix = "indexer:events"
	defaultGroup        = "reducer"
)

// Config controls the Streams-backed queue.
type Config struct {
	// URL is a redis:// connection string.
	URL string
	// StreamPrefix namespaces the per-chain streams.
	StreamPrefix string
	// Group is the reducer consumer group name.
	Group string
	// MaxLen caps each stream approximately; 0 leaves streams unbounded.
	MaxLen int64
}

func (c *Config) applyDefaults() {
	if c.StreamPrefix == "" {
		c.StreamPrefix = defaultStreamPrefix
	}
	if c.Group == "" {
		c.Group = defaultGroup
	}
}

// Redis is the Streams-backed ingestion queue.
type Redis struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

func NewRedis(cfg Config, logger *slog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	cfg.applyDefaults()
	return &Redis{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "queue"),
	}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Health reports whether the queue backend is reachable.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Client exposes the underlying connection for the notifier bridge.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Enqueue appends the event to its chain's stream. Unlike notification
// publishes this is not best-effort: the scanner only moves its
// watermark past blocks whose events are durably queued.
func (r *Redis) Enqueue(ctx context.Context, ev event.RawEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal raw event %s: %w", ev.Key(), err)
	}

	args := &redis.XAddArgs{
		Stream: StreamKey(r.cfg.StreamPrefix, ev.ChainID),
		Values: map[string]interface{}{
			fieldData:   payload,
			fieldChain:  int64(ev.ChainID),
			fieldEvent:  ev.Name.String(),
			fieldSource: ev.Source.String(),
		},
	}
	if r.cfg.MaxLen > 0 {
		args.MaxLen = r.cfg.MaxLen
		args.Approx = true
	}

	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", ev.Key(), err)
	}
	metrics.QueuePublishedTotal.WithLabelValues(ev.ChainID.String(), ev.Source.String()).Inc()
	return nil
}

// EnsureGroup creates the consumer group for a chain's stream, creating
// the stream as a side effect. An existing group is not an error.
func (r *Redis) EnsureGroup(ctx context.Context, chainID model.ChainID) error {
	stream := StreamKey(r.cfg.StreamPrefix, chainID)
	err := r.client.XGroupCreateMkStream(ctx, stream, r.cfg.Group, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create group %s on %s: %w", r.cfg.Group, stream, err)
	}
	return nil
}

// Depth returns the number of entries currently in a chain's stream.
func (r *Redis) Depth(ctx context.Context, chainID model.ChainID) (int64, error) {
	return r.client.XLen(ctx, StreamKey(r.cfg.StreamPrefix, chainID)).Result()
}

// StartDepthMetricsLoop samples stream depth into the queue gauge until
// ctx ends. Interval defaults to 15s.
func (r *Redis) StartDepthMetricsLoop(ctx context.Context, interval time.Duration, chains []model.ChainID) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, chainID := range chains {
					depth, err := r.Depth(ctx, chainID)
					if err != nil {
						continue
					}
					metrics.QueueStreamDepth.WithLabelValues(chainID.String()).Set(float64(depth))
				}
			}
		}
	}()
}
