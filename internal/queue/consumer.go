package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/tracing"
)

// ConsumerConfig controls one chain's consumer group membership.
type ConsumerConfig struct {
	// Name prefixes worker consumer names. Restarting with the same
	// name lets workers reclaim their own pending deliveries.
	Name string
	// Workers is the number of concurrent group members.
	Workers int
	// BatchSize caps entries per read.
	BatchSize int64
	// Block is how long one read waits for new entries.
	Block time.Duration
	// ClaimMinIdle re-delivers entries stuck in another consumer's
	// pending list once they have been idle this long. 0 disables the
	// claimer.
	ClaimMinIdle time.Duration
	// ClaimInterval is how often the claimer scans.
	ClaimInterval time.Duration
	// Retry bounds in-process redelivery for transient handler faults.
	Retry retry.Config
}

func (c *ConsumerConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "reducer"
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.Block <= 0 {
		c.Block = 5 * time.Second
	}
	if c.ClaimInterval <= 0 {
		c.ClaimInterval = time.Minute
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = retry.DefaultConfig()
	}
}

// Consumer drains one chain's stream as part of the reducer group.
type Consumer struct {
	q           *Redis
	chainID     model.ChainID
	handler     Handler
	deadLetters store.DeadLetterRepository
	cfg         ConsumerConfig
	logger      *slog.Logger
	tracer      trace.Tracer
}

func NewConsumer(q *Redis, chainID model.ChainID, handler Handler, deadLetters store.DeadLetterRepository, cfg ConsumerConfig, logger *slog.Logger) *Consumer {
	cfg.applyDefaults()
	return &Consumer{
		q:           q,
		chainID:     chainID,
		handler:     handler,
		deadLetters: deadLetters,
		cfg:         cfg,
		logger:      logger.With("component", "queue.consumer", "chain_id", int64(chainID)),
		tracer:      tracing.Tracer("queue"),
	}
}

// Run consumes until ctx is cancelled. Each worker first drains its own
// pending entries, then reads new deliveries; an optional claimer
// rescues entries stranded by dead consumers.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.q.EnsureGroup(ctx, c.chainID); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < c.cfg.Workers; i++ {
		name := fmt.Sprintf("%s-%d", c.cfg.Name, i)
		g.Go(func() error {
			return c.runWorker(ctx, name)
		})
	}
	if c.cfg.ClaimMinIdle > 0 {
		g.Go(func() error {
			return c.runClaimer(ctx)
		})
	}
	return g.Wait()
}

func (c *Consumer) runWorker(ctx context.Context, consumer string) error {
	stream := StreamKey(c.q.cfg.StreamPrefix, c.chainID)

	// Reads from "0" return this consumer's pending entries; acked
	// entries leave the list, so an empty batch means the backlog from
	// a previous run is drained and we can ask for new work.
	cursor := "0"
	readFailures := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := c.q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.q.cfg.Group,
			Consumer: consumer,
			Streams:  []string{stream, cursor},
			Count:    c.cfg.BatchSize,
			Block:    c.cfg.Block,
		}).Result()
		switch {
		case err == nil:
			readFailures = 0
		case errors.Is(err, redis.Nil):
			readFailures = 0
			continue
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			readFailures++
			delay := retry.DelayFor(c.cfg.Retry, readFailures)
			c.logger.Warn("stream read failed, backing off",
				"consumer", consumer, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}

		batch := flatten(res)
		if cursor == "0" && len(batch) == 0 {
			cursor = ">"
			continue
		}

		requeued := false
		for _, msg := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if c.processEntry(ctx, msg) {
				c.ack(ctx, stream, msg.ID)
			} else {
				requeued = true
			}
		}

		// An entry left pending while reading "0" would come straight
		// back; breathe before retrying it.
		if requeued && cursor == "0" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retry.DelayFor(c.cfg.Retry, 1)):
			}
		}
	}
}

// runClaimer periodically takes over entries that have sat in another
// consumer's pending list past ClaimMinIdle, so a crashed or removed
// worker cannot strand deliveries.
func (c *Consumer) runClaimer(ctx context.Context) error {
	stream := StreamKey(c.q.cfg.StreamPrefix, c.chainID)
	consumer := c.cfg.Name + "-claimer"

	ticker := time.NewTicker(c.cfg.ClaimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		start := "0-0"
		for {
			msgs, next, err := c.q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
				Stream:   stream,
				Group:    c.q.cfg.Group,
				Consumer: consumer,
				MinIdle:  c.cfg.ClaimMinIdle,
				Start:    start,
				Count:    c.cfg.BatchSize,
			}).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				c.logger.Warn("autoclaim failed", "error", err)
				break
			}

			for _, msg := range msgs {
				if err := ctx.Err(); err != nil {
					return err
				}
				if c.processEntry(ctx, msg) {
					c.ack(ctx, stream, msg.ID)
				}
			}

			if len(msgs) == 0 || next == "0-0" {
				break
			}
			start = next
		}
	}
}

// processEntry fully disposes of one delivery and reports whether it is
// finished. Applied and dead-lettered entries are finished and must be
// acknowledged; false leaves the entry pending for redelivery, which
// happens on shutdown or when the dead-letter write itself fails.
func (c *Consumer) processEntry(ctx context.Context, msg redis.XMessage) bool {
	start := time.Now()
	defer func() {
		metrics.QueueHandleLatency.WithLabelValues(c.chainID.String()).Observe(time.Since(start).Seconds())
	}()

	ctx, span := c.tracer.Start(ctx, "queue.consume", trace.WithAttributes(
		attribute.Int64("chain_id", int64(c.chainID)),
		attribute.String("entry_id", msg.ID),
	))
	defer span.End()

	ev, err := decodeEntry(msg.Values)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("undecodable queue entry", "entry_id", msg.ID, "error", err)
		return c.deadLetter(ctx, deadLetterFromEntry(c.chainID, msg.Values, err))
	}
	span.SetAttributes(attribute.String("event", ev.Name.String()))

	attempts, err := c.apply(ctx, ev)
	if err == nil {
		metrics.QueueConsumedTotal.WithLabelValues(c.chainID.String()).Inc()
		return true
	}
	span.RecordError(err)
	if ctx.Err() != nil {
		// Shutting down mid-delivery; the entry stays pending.
		return false
	}
	return c.deadLetter(ctx, deadLetterFromEvent(ev, rawData(msg.Values), attempts, err))
}

// apply invokes the handler, retrying transient faults up to the
// configured budget.
func (c *Consumer) apply(ctx context.Context, ev event.RawEvent) (int, error) {
	for attempt := 1; ; attempt++ {
		err := c.safeHandle(ctx, ev)
		if err == nil {
			return attempt, nil
		}

		decision := retry.Classify(err)
		if !decision.IsTransient() {
			return attempt, err
		}
		if attempt >= c.cfg.Retry.MaxAttempts {
			return attempt, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, err)
		}

		metrics.QueueRetriesTotal.WithLabelValues(c.chainID.String()).Inc()
		delay := retry.DelayFor(c.cfg.Retry, attempt)
		c.logger.Warn("transient delivery failure, backing off",
			"event", ev.Key(), "attempt", attempt, "delay", delay,
			"reason", decision.Reason, "error", err)

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// safeHandle shields the loop from handler panics. A panic is terminal:
// redelivering a deterministic panic would wedge the stream.
func (c *Consumer) safeHandle(ctx context.Context, ev event.RawEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = retry.Terminal(fmt.Errorf("handler panic: %v\n%s", r, debug.Stack()))
		}
	}()
	return c.handler(ctx, ev)
}

// deadLetter parks a finished-but-failed delivery. A failed insert
// leaves the stream entry pending so nothing is lost.
func (c *Consumer) deadLetter(ctx context.Context, dl *model.DeadLetter) bool {
	if err := c.deadLetters.Insert(ctx, dl); err != nil {
		c.logger.Error("dead letter insert failed, leaving delivery pending",
			"event", dl.EventName, "tx_hash", dl.TxHash, "log_index", dl.LogIndex, "error", err)
		return false
	}
	metrics.QueueDeadLettersTotal.WithLabelValues(dl.ChainID.String()).Inc()
	c.logger.Error("delivery dead-lettered",
		"event", dl.EventName, "tx_hash", dl.TxHash, "log_index", dl.LogIndex,
		"attempts", dl.Attempts, "failure", dl.Failure)
	return true
}

func (c *Consumer) ack(ctx context.Context, stream, id string) {
	if err := c.q.client.XAck(ctx, stream, c.q.cfg.Group, id).Err(); err != nil {
		c.logger.Warn("ack failed", "entry_id", id, "error", err)
	}
}

func flatten(streams []redis.XStream) []redis.XMessage {
	var msgs []redis.XMessage
	for _, s := range streams {
		msgs = append(msgs, s.Messages...)
	}
	return msgs
}
