// Package subscriber follows the chain head and feeds newly mined
// registry events into the same ingestion queue the scanner fills. The
// follower starts at the head observed on entry; everything older is the
// backfill scanner's territory. Delivery is at-least-once: a failed poll
// re-fetches its whole range next tick and the reducer collapses the
// duplicates.
package subscriber

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/queue"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/tracing"
)

type Config struct {
	PollEvery time.Duration // head poll cadence
	MaxBlocks int64         // range cap per poll; a lagging follower catches up over ticks
}

func (c Config) withDefaults() Config {
	if c.PollEvery <= 0 {
		c.PollEvery = 2 * time.Second
	}
	if c.MaxBlocks <= 0 {
		c.MaxBlocks = 1000
	}
	return c
}

// Subscriber is the live half of event discovery for one chain. The
// JSON-RPC transport is plain HTTP, so "subscription" means polling
// GetLatestBlock and ranging over the delta.
type Subscriber struct {
	adapter  chain.ChainAdapter
	producer queue.Producer
	cfg      Config
	logger   *slog.Logger
	tracer   trace.Tracer

	mu   sync.Mutex
	last int64 // highest block already handed to the queue
}

func New(adapter chain.ChainAdapter, producer queue.Producer, cfg Config, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		adapter:  adapter,
		producer: producer,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "subscriber", "chain_id", int64(adapter.ChainID())),
		tracer:   tracing.Tracer("subscriber"),
	}
}

// Run follows the head until ctx ends, starting at the head observed on
// entry. Poll failures are logged and retried on the next tick; only
// context cancellation stops the loop.
func (s *Subscriber) Run(ctx context.Context) error {
	head, err := s.adapter.GetLatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("resolve starting head: %w", err)
	}
	return s.RunFrom(ctx, head)
}

// RunFrom is Run with lastDelivered already decided; blocks up to and
// including it are treated as indexed. The catch-up scanner hands its
// watermark here so the two discovery paths meet without a gap.
func (s *Subscriber) RunFrom(ctx context.Context, lastDelivered int64) error {
	s.mu.Lock()
	s.last = lastDelivered
	s.mu.Unlock()
	s.logger.Info("live subscription starting",
		"last_delivered", lastDelivered, "poll_every", s.cfg.PollEvery)

	label := s.adapter.ChainID().String()
	ticker := time.NewTicker(s.cfg.PollEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				metrics.SubscriberErrors.WithLabelValues(label).Inc()
				s.logger.Warn("live poll failed", "error", err)
			}
		}
	}
}

// LastDelivered reports the highest block whose logs reached the queue.
func (s *Subscriber) LastDelivered() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Subscriber) poll(ctx context.Context) error {
	label := s.adapter.ChainID().String()
	metrics.SubscriberPollsTotal.WithLabelValues(label).Inc()

	head, err := s.adapter.GetLatestBlock(ctx)
	if err != nil {
		return fmt.Errorf("get head: %w", err)
	}
	metrics.SubscriberHeadBlock.WithLabelValues(label).Set(float64(head))

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if head <= last {
		return nil
	}

	from := last + 1
	to := head
	if to-from+1 > s.cfg.MaxBlocks {
		to = from + s.cfg.MaxBlocks - 1
	}

	ctx, span := s.tracer.Start(ctx, "subscriber.poll", trace.WithAttributes(
		attribute.Int64("chain_id", int64(s.adapter.ChainID())),
		attribute.Int64("from_block", from),
		attribute.Int64("to_block", to),
	))
	defer span.End()

	logs, err := s.adapter.GetLogs(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("get logs %d..%d: %w", from, to, err)
	}
	metrics.SubscriberLogsReceived.WithLabelValues(label).Add(float64(len(logs)))

	for _, lg := range logs {
		if lg.Removed {
			s.logger.Debug("skipping removed log", "tx", lg.TxHash, "log_index", lg.LogIndex)
			continue
		}
		ev, err := s.adapter.DecodeLog(ctx, lg)
		if err != nil {
			if retry.Classify(err).IsTransient() {
				span.RecordError(err)
				return fmt.Errorf("decode log %s:%d: %w", lg.TxHash, lg.LogIndex, err)
			}
			s.logger.Warn("skipping undecodable log",
				"tx", lg.TxHash, "log_index", lg.LogIndex, "error", err)
			continue
		}
		ev.Source = model.SourceLive
		if err := s.producer.Enqueue(ctx, *ev); err != nil {
			span.RecordError(err)
			return fmt.Errorf("enqueue %s: %w", ev.Key(), err)
		}
	}

	s.mu.Lock()
	s.last = to
	s.mu.Unlock()
	return nil
}
