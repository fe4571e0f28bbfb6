// Package scanner walks historical block ranges for a chain's registry
// contract and feeds every discovered event into the ingestion queue.
// The watermark advances only after a batch is fully enqueued, so an
// interrupted run resumes from the block after the last complete batch
// and the reducer absorbs any re-scanned duplicates.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/queue"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/tracing"
)

type Config struct {
	BatchBlocks int64         // blocks per batch
	BatchEvery  time.Duration // cooperative pacing between batches
	LeaseFor    time.Duration // run lease duration, renewed after every batch
}

func (c Config) withDefaults() Config {
	if c.BatchBlocks <= 0 {
		c.BatchBlocks = 1000
	}
	if c.BatchEvery <= 0 {
		c.BatchEvery = 200 * time.Millisecond
	}
	if c.LeaseFor <= 0 {
		c.LeaseFor = 2 * time.Minute
	}
	return c
}

// Result summarizes a run's completed batches.
type Result struct {
	EventsProcessed int64
	BlocksScanned   int64
}

// Range optionally overrides the scan bounds. A nil From continues from
// the persisted watermark + 1; a nil To stops at the head observed when
// the run starts.
type Range struct {
	From *int64
	To   *int64
}

// Progress is the operator view of a chain's backfill state.
type Progress struct {
	ChainID            model.ChainID
	IsBackfilling      bool
	IsPaused           bool
	CurrentBlock       int64
	LatestIndexedBlock int64
	RemainingBlocks    int64
}

// Scanner backfills one chain. Instances are independent; per-chain
// exclusivity is arbitrated by the run lease in backfill_progress, not
// in process memory, so it holds across replicas too.
type Scanner struct {
	adapter         chain.ChainAdapter
	producer        queue.Producer
	backfills       store.BackfillRepository
	deploymentBlock int64
	owner           string
	cfg             Config
	pacer           *rate.Limiter
	logger          *slog.Logger
	tracer          trace.Tracer
}

func New(adapter chain.ChainAdapter, producer queue.Producer, backfills store.BackfillRepository, deploymentBlock int64, cfg Config, logger *slog.Logger) *Scanner {
	cfg = cfg.withDefaults()
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "indexer"
	}
	return &Scanner{
		adapter:         adapter,
		producer:        producer,
		backfills:       backfills,
		deploymentBlock: deploymentBlock,
		owner:           fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		cfg:             cfg,
		pacer:           rate.NewLimiter(rate.Every(cfg.BatchEvery), 1),
		logger:          logger.With("component", "scanner", "chain_id", int64(adapter.ChainID())),
		tracer:          tracing.Tracer("scanner"),
	}
}

// Run claims the chain's backfill lease and scans the requested range in
// fixed-size batches. A second concurrent run for the same chain fails
// synchronously with store.ErrAlreadyRunning.
func (s *Scanner) Run(ctx context.Context, r Range) (Result, error) {
	chainID := s.adapter.ChainID()
	label := chainID.String()

	if err := s.backfills.Ensure(ctx, chainID, s.deploymentBlock); err != nil {
		return Result{}, err
	}
	if err := s.backfills.ClaimRun(ctx, chainID, s.owner, s.cfg.LeaseFor); err != nil {
		return Result{}, err
	}
	metrics.ScannerRunning.WithLabelValues(label).Set(1)
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.backfills.ReleaseRun(releaseCtx, chainID, s.owner); err != nil {
			s.logger.Warn("release backfill lease failed", "error", err)
		}
		metrics.ScannerRunning.WithLabelValues(label).Set(0)
	}()

	progress, err := s.backfills.Get(ctx, chainID)
	if err != nil {
		return Result{}, err
	}
	if progress == nil {
		return Result{}, fmt.Errorf("no backfill progress for chain %d", chainID)
	}

	from := progress.LatestIndexedBlock + 1
	if r.From != nil {
		from = *r.From
	}
	var to int64
	if r.To != nil {
		to = *r.To
	} else {
		head, err := s.adapter.GetLatestBlock(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("resolve head: %w", err)
		}
		to = head
	}
	if from > to {
		s.logger.Info("backfill already caught up", "from", from, "to", to)
		return Result{}, nil
	}

	s.logger.Info("backfill starting",
		"from", from, "to", to, "batch_blocks", s.cfg.BatchBlocks, "owner", s.owner)

	var res Result
	for start := from; start <= to; start += s.cfg.BatchBlocks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		paused, err := s.pausedNow(ctx, chainID)
		if err != nil {
			return res, err
		}
		if paused {
			// Advisory stop: the current watermark stands and in-flight
			// queue items drain normally.
			s.logger.Info("backfill paused, stopping before next batch", "next_block", start)
			return res, nil
		}
		if err := s.pacer.Wait(ctx); err != nil {
			return res, err
		}

		end := min(start+s.cfg.BatchBlocks-1, to)
		events, err := s.scanBatch(ctx, start, end)
		if err != nil {
			metrics.ScannerErrors.WithLabelValues(label).Inc()
			return res, fmt.Errorf("batch %d..%d: %w", start, end, err)
		}
		res.EventsProcessed += events
		res.BlocksScanned += end - start + 1

		if err := s.backfills.SetIndexed(ctx, chainID, end); err != nil {
			return res, fmt.Errorf("advance watermark to %d: %w", end, err)
		}
		if err := s.backfills.ExtendLease(ctx, chainID, s.owner, s.cfg.LeaseFor, end); err != nil {
			return res, fmt.Errorf("after block %d: %w", end, err)
		}
		metrics.ScannerBatchesProcessed.WithLabelValues(label).Inc()
		metrics.ScannerLatestIndexedBlock.WithLabelValues(label).Set(float64(end))
	}

	s.logger.Info("backfill finished",
		"events", res.EventsProcessed, "blocks", res.BlocksScanned)
	return res, nil
}

func (s *Scanner) scanBatch(ctx context.Context, from, to int64) (int64, error) {
	label := s.adapter.ChainID().String()
	start := time.Now()
	defer func() {
		metrics.ScannerBatchLatency.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	ctx, span := s.tracer.Start(ctx, "scanner.batch", trace.WithAttributes(
		attribute.Int64("chain_id", int64(s.adapter.ChainID())),
		attribute.Int64("from_block", from),
		attribute.Int64("to_block", to),
	))
	defer span.End()

	logs, err := s.adapter.GetLogs(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("get logs: %w", err)
	}
	metrics.ScannerLogsFetched.WithLabelValues(label).Add(float64(len(logs)))
	if len(logs) == 0 {
		return 0, nil
	}

	s.warmBlockTimes(ctx, logs)

	var enqueued int64
	for _, lg := range logs {
		if lg.Removed {
			s.logger.Debug("skipping removed log", "tx", lg.TxHash, "log_index", lg.LogIndex)
			continue
		}
		ev, err := s.adapter.DecodeLog(ctx, lg)
		if err != nil {
			if retry.Classify(err).IsTransient() {
				span.RecordError(err)
				return enqueued, fmt.Errorf("decode log %s:%d: %w", lg.TxHash, lg.LogIndex, err)
			}
			// Structurally undecodable logs cannot improve on a rescan.
			s.logger.Warn("skipping undecodable log",
				"tx", lg.TxHash, "log_index", lg.LogIndex, "error", err)
			continue
		}
		ev.Source = model.SourceBackfill
		if err := s.producer.Enqueue(ctx, *ev); err != nil {
			span.RecordError(err)
			return enqueued, fmt.Errorf("enqueue %s: %w", ev.Key(), err)
		}
		enqueued++
	}
	span.SetAttributes(attribute.Int64("events", enqueued))
	return enqueued, nil
}

// blockTimeWarmer is implemented by adapters that can batch-fetch block
// timestamps. Warming is a throughput optimization; on failure DecodeLog
// falls back to per-log lookups.
type blockTimeWarmer interface {
	WarmBlockTimes(ctx context.Context, blockNumbers []int64) error
}

func (s *Scanner) warmBlockTimes(ctx context.Context, logs []chain.Log) {
	w, ok := s.adapter.(blockTimeWarmer)
	if !ok {
		return
	}
	blocks := make([]int64, 0, len(logs))
	for _, lg := range logs {
		blocks = append(blocks, lg.BlockNumber)
	}
	if err := w.WarmBlockTimes(ctx, blocks); err != nil {
		s.logger.Warn("block time warmup failed", "error", err)
	}
}

func (s *Scanner) pausedNow(ctx context.Context, chainID model.ChainID) (bool, error) {
	p, err := s.backfills.Get(ctx, chainID)
	if err != nil {
		return false, err
	}
	paused := p != nil && p.IsPaused
	v := 0.0
	if paused {
		v = 1
	}
	metrics.ScannerPaused.WithLabelValues(chainID.String()).Set(v)
	return paused, nil
}

// Pause stops the scan before its next batch. In-flight queue items are
// unaffected. The flag persists until Resume clears it.
func (s *Scanner) Pause(ctx context.Context) error {
	if err := s.backfills.SetPaused(ctx, s.adapter.ChainID(), true); err != nil {
		return err
	}
	s.logger.Info("backfill pause requested")
	return nil
}

// Resume clears the pause flag and continues from the persisted
// watermark, re-scanning nothing.
func (s *Scanner) Resume(ctx context.Context) (Result, error) {
	if err := s.backfills.SetPaused(ctx, s.adapter.ChainID(), false); err != nil {
		return Result{}, err
	}
	return s.Run(ctx, Range{})
}

// Progress reports the persisted scan state next to the current head.
func (s *Scanner) Progress(ctx context.Context) (Progress, error) {
	chainID := s.adapter.ChainID()
	p, err := s.backfills.Get(ctx, chainID)
	if err != nil {
		return Progress{}, err
	}
	if p == nil {
		return Progress{}, fmt.Errorf("no backfill progress for chain %d", chainID)
	}
	head, err := s.adapter.GetLatestBlock(ctx)
	if err != nil {
		return Progress{}, fmt.Errorf("resolve head: %w", err)
	}
	return Progress{
		ChainID:            chainID,
		IsBackfilling:      p.IsRunning,
		IsPaused:           p.IsPaused,
		CurrentBlock:       p.CurrentBlock,
		LatestIndexedBlock: p.LatestIndexedBlock,
		RemainingBlocks:    max(0, head-p.LatestIndexedBlock),
	}, nil
}
