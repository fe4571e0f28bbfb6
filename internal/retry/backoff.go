package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Do runs fn until it succeeds, returns a terminal error, or exhausts
// cfg.MaxAttempts. Only errors Classify marks transient are retried; the
// last error is returned unwrapped so callers can inspect it.
func Do(ctx context.Context, cfg Config, logger *slog.Logger, op string, fn func(context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		decision := Classify(lastErr)
		if !decision.IsTransient() {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := DelayFor(cfg, attempt)
		if logger != nil {
			logger.Warn("transient failure, backing off",
				"op", op,
				"attempt", attempt,
				"max_attempts", cfg.MaxAttempts,
				"delay", delay,
				"reason", decision.Reason,
				"error", lastErr,
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s: retries exhausted after %d attempts: %w", op, cfg.MaxAttempts, lastErr)
}

// DelayFor computes the backoff before the next try after the given
// 1-based attempt. Growth is geometric, capped at MaxDelay, with an
// optional ±15% jitter to keep concurrent consumers from thundering.
func DelayFor(cfg Config, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(cfg.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= cfg.Multiplier
		if delay >= float64(cfg.MaxDelay) {
			delay = float64(cfg.MaxDelay)
			break
		}
	}

	if cfg.Jitter {
		delay += delay * 0.3 * (rand.Float64() - 0.5)
	}

	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
