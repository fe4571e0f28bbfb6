// Package pipeline supervises one chain's discovery stages: an optional
// catch-up backfill on boot, then the live head follower. Reduction is
// decoupled behind the ingestion queue, so consumers are shared across
// chains and run elsewhere; a dead pipeline stops discovery for its
// chain only.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/scanner"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/subscriber"
)

type Config struct {
	// BackfillOnStart runs a catch-up scan from the persisted watermark to
	// head before the live follower begins, closing any restart gap.
	BackfillOnStart bool
	// RestartBackoff is the wait before a crashed follower is restarted.
	RestartBackoff time.Duration
	// ProgressCheckEvery is the watchdog cadence for promoting health back
	// to healthy while the follower keeps delivering blocks.
	ProgressCheckEvery time.Duration
}

func (c Config) withDefaults() Config {
	if c.RestartBackoff <= 0 {
		c.RestartBackoff = 5 * time.Second
	}
	if c.ProgressCheckEvery <= 0 {
		c.ProgressCheckEvery = 30 * time.Second
	}
	return c
}

type Pipeline struct {
	chainID model.ChainID
	scanner *scanner.Scanner
	sub     *subscriber.Subscriber
	cfg     Config
	health  *Health
	logger  *slog.Logger
}

func New(chainID model.ChainID, sc *scanner.Scanner, sub *subscriber.Subscriber, cfg Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		chainID: chainID,
		scanner: sc,
		sub:     sub,
		cfg:     cfg.withDefaults(),
		health:  NewHealth(chainID),
		logger:  logger.With("component", "pipeline", "chain_id", int64(chainID)),
	}
}

func (p *Pipeline) ChainID() model.ChainID { return p.chainID }

func (p *Pipeline) Health() *Health { return p.health }

// Scanner exposes the chain's backfill scanner for the admin surface.
func (p *Pipeline) Scanner() *scanner.Scanner { return p.scanner }

// Run performs the optional catch-up scan, hands its watermark to the
// live follower, and keeps the follower running until ctx ends.
func (p *Pipeline) Run(ctx context.Context) error {
	// startFrom < 0 means the follower starts at the head it observes.
	startFrom := int64(-1)
	if p.cfg.BackfillOnStart {
		startFrom = p.catchUp(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if p.health.Snapshot().Status == string(HealthStatusUnknown) {
		p.health.SetStatus(HealthStatusHealthy)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.superviseFollower(gCtx, startFrom)
	})
	g.Go(func() error {
		return p.watchProgress(gCtx)
	})
	return g.Wait()
}

// catchUp runs the boot backfill and returns the watermark the follower
// should continue from, or -1 when the follower must fall back to head.
// Historic trouble never blocks live indexing: failures degrade health
// and the follower starts anyway.
func (p *Pipeline) catchUp(ctx context.Context) int64 {
	res, err := p.scanner.Run(ctx, scanner.Range{})
	switch {
	case err == nil:
		p.health.RecordSuccess()
		p.logger.Info("catch-up backfill complete",
			"events", res.EventsProcessed, "blocks", res.BlocksScanned)
	case errors.Is(err, store.ErrAlreadyRunning):
		p.logger.Warn("another scanner owns the backfill lease, skipping catch-up")
	case ctx.Err() != nil:
		return -1
	default:
		p.health.RecordFailure(err)
		p.health.SetStatus(HealthStatusDegraded)
		p.logger.Error("catch-up backfill failed, live follower starts at head", "error", err)
		return -1
	}

	prog, err := p.scanner.Progress(ctx)
	if err != nil {
		p.logger.Warn("backfill progress unavailable after catch-up", "error", err)
		return -1
	}
	return prog.LatestIndexedBlock
}

// superviseFollower restarts the follower with backoff whenever it dies
// for any reason other than shutdown.
func (p *Pipeline) superviseFollower(ctx context.Context, startFrom int64) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.runFollower(ctx, startFrom)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.health.RecordFailure(err)
		p.logger.Error("live follower stopped, restarting",
			"error", err, "backoff", p.cfg.RestartBackoff)
		// Keep the delivered watermark across restarts so the gap between
		// incarnations stays closed.
		if last := p.sub.LastDelivered(); last > 0 {
			startFrom = last
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.RestartBackoff):
		}
	}
}

func (p *Pipeline) runFollower(ctx context.Context, startFrom int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v\n%s", r, debug.Stack())
		}
	}()
	if startFrom >= 0 {
		return p.sub.RunFrom(ctx, startFrom)
	}
	return p.sub.Run(ctx)
}

// watchProgress records a health success whenever the follower delivered
// new blocks since the previous check, pulling the pipeline back to
// healthy after transient trouble.
func (p *Pipeline) watchProgress(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.ProgressCheckEvery)
	defer ticker.Stop()
	last := p.sub.LastDelivered()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if cur := p.sub.LastDelivered(); cur > last {
				last = cur
				p.health.RecordSuccess()
			}
		}
	}
}
