// Command indexer runs the full ingestion stack for every configured
// chain: the backfill scanner and live subscriber feeding the Redis
// queue, reducer consumers draining it into Postgres, periodic
// reconciliation, and the admin and ops HTTP servers.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/admin"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/alert"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain/evm"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/config"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/notifier"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/pipeline"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/queue"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/reconciliation"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/reducer"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/scanner"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store/postgres"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/subscriber"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const serviceName = "rebased-indexer"

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

const metricsSampleEvery = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	chainIDs := make([]model.ChainID, 0, len(cfg.Chains))
	for _, ch := range cfg.Chains {
		chainIDs = append(chainIDs, model.ChainID(ch.ChainID))
	}
	logger.Info("starting rebased-indexer", "version", version, "chains", chainIDs)

	shutdownTracing, err := tracing.Init(context.Background(), serviceName, version, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	db, err := postgres.New(postgres.Config{
		URL:                cfg.DB.URL,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetime:    cfg.DB.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.DB.ConnMaxIdleTime,
		StatementTimeoutMS: cfg.DB.StatementTimeoutMS,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.DB.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "dir", cfg.DB.MigrationsDir, "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	users := postgres.NewUserRepo(db)
	strategies := postgres.NewStrategyRepo(db)
	rebalances := postgres.NewRebalanceRepo(db)
	swaps := postgres.NewSwapRepo(db)
	systemEvents := postgres.NewSystemEventRepo(db)
	dailyStats := postgres.NewDailyStatsRepo(db)
	backfills := postgres.NewBackfillRepo(db)
	deadLetters := postgres.NewDeadLetterRepo(db)
	recons := postgres.NewReconciliationRepo(db)

	q, err := queue.NewRedis(queue.Config{
		URL:          cfg.Redis.URL,
		StreamPrefix: cfg.Redis.StreamPrefix,
		Group:        cfg.Redis.Group,
		MaxLen:       cfg.Redis.MaxLen,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer q.Close()

	for _, id := range chainIDs {
		if err := q.EnsureGroup(context.Background(), id); err != nil {
			logger.Error("failed to ensure consumer group", "chain_id", id, "error", err)
			os.Exit(1)
		}
	}

	notif := notifier.New(logger,
		notifier.WithBridge(notifier.NewRedisBridge(q.Client(), cfg.Redis.NotifyPrefix, logger)),
	)

	red := reducer.New(db, reducer.Repos{
		Users:        users,
		Strategies:   strategies,
		Rebalances:   rebalances,
		Swaps:        swaps,
		SystemEvents: systemEvents,
		DailyStats:   dailyStats,
	}, notif, logger)

	recon := reconciliation.NewService(recons, notif, logger)

	retryCfg := retry.DefaultConfig()
	if cfg.Queue.MaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Queue.MaxAttempts
	}

	pipelines := make([]*pipeline.Pipeline, 0, len(cfg.Chains))
	consumers := make([]*queue.Consumer, 0, len(cfg.Chains))
	adminOpts := []admin.ServerOption{
		admin.WithDeadLetters(deadLetters),
		admin.WithReconciler(recon),
	}
	for _, ch := range cfg.Chains {
		chainID := model.ChainID(ch.ChainID)

		adapter := evm.NewAdapter(evm.AdapterConfig{
			ChainID:         chainID,
			RPCURL:          ch.RPCURL,
			ContractAddress: ch.ContractAddress,
			RPCTimeout:      ch.RPCTimeout,
			RPS:             ch.RPCRateRPS,
			Burst:           ch.RPCRateBurst,
		}, logger)

		sc := scanner.New(adapter, q, backfills, ch.DeploymentBlock, scanner.Config{
			BatchBlocks: cfg.Scanner.BatchBlocks,
			BatchEvery:  cfg.Scanner.BatchEvery,
			LeaseFor:    cfg.Scanner.LeaseFor,
		}, logger)

		sub := subscriber.New(adapter, q, subscriber.Config{
			PollEvery: cfg.Subscriber.PollEvery,
			MaxBlocks: cfg.Subscriber.MaxBlocks,
		}, logger)

		p := pipeline.New(chainID, sc, sub, pipeline.Config{
			BackfillOnStart:    ch.BackfillOnStart,
			RestartBackoff:     cfg.Pipeline.RestartBackoff,
			ProgressCheckEvery: cfg.Pipeline.ProgressCheckEvery,
		}, logger)
		pipelines = append(pipelines, p)

		consumers = append(consumers, queue.NewConsumer(q, chainID, red.Apply, deadLetters, queue.ConsumerConfig{
			Workers:       cfg.Queue.Consumers,
			BatchSize:     cfg.Queue.BatchSize,
			Block:         cfg.Queue.Block,
			ClaimMinIdle:  cfg.Queue.ClaimMinIdle,
			ClaimInterval: cfg.Queue.ClaimInterval,
			Retry:         retryCfg,
		}, logger))

		recon.RegisterChain(chainID)
		adminOpts = append(adminOpts, admin.WithBackfill(chainID, p.Scanner()))
	}

	health := healthAggregator(pipelines)
	adminOpts = append(adminOpts, admin.WithHealthProvider(health))

	adminSrv := admin.NewServer(users, strategies, logger, adminOpts...)
	rl := admin.NewRateLimitMiddleware(logger)
	defer rl.Stop()
	adminHandler := admin.AuditMiddleware(logger, rl.Wrap(adminSrv.Handler()))

	if alerters := buildAlerters(cfg.Alert); len(alerters) > 0 {
		multi := alert.NewMultiAlerter(cfg.Alert.Cooldown, logger, alerters...)
		alert.Subscribe(notif, multi)
		logger.Info("alerting enabled", "channels", len(alerters))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	db.StartPoolMetricsLoop(gCtx, metricsSampleEvery)
	q.StartDepthMetricsLoop(gCtx, metricsSampleEvery, chainIDs)

	g.Go(func() error {
		return runOpsServer(gCtx, cfg.Server.OpsPort, health, logger)
	})
	g.Go(func() error {
		return runAdminServer(gCtx, cfg.Server.AdminPort, adminHandler, logger)
	})

	for _, p := range pipelines {
		g.Go(func() error {
			return p.Run(gCtx)
		})
	}
	for _, c := range consumers {
		g.Go(func() error {
			return c.Run(gCtx)
		})
	}

	if cfg.Reconcile.Interval > 0 {
		g.Go(func() error {
			return recon.RunPeriodic(gCtx, cfg.Reconcile.Interval)
		})
	}

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("indexer exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("indexer shut down gracefully")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildAlerters(cfg config.AlertConfig) []alert.Alerter {
	var alerters []alert.Alerter
	if cfg.SlackWebhookURL != "" {
		alerters = append(alerters, alert.NewSlackAlerter(cfg.SlackWebhookURL))
	}
	if cfg.WebhookURL != "" {
		alerters = append(alerters, alert.NewWebhookAlerter(cfg.WebhookURL))
	}
	return alerters
}

// healthAggregator adapts the pipeline set to the admin health surface
// and the ops readiness check.
type healthAggregator []*pipeline.Pipeline

func (h healthAggregator) HealthSnapshots() any {
	snaps := make([]pipeline.HealthSnapshot, 0, len(h))
	for _, p := range h {
		snaps = append(snaps, p.Health().Snapshot())
	}
	return snaps
}

// serving is false only when a pipeline has crossed the unhealthy
// threshold. UNKNOWN (still warming up) and DEGRADED keep answering 200
// so a slow backfill does not bounce the process.
func (h healthAggregator) serving() bool {
	for _, p := range h {
		if p.Health().Snapshot().Status == string(pipeline.HealthStatusUnhealthy) {
			return false
		}
	}
	return true
}

func opsHandler(health healthAggregator, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		if !health.serving() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(health.HealthSnapshots()); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func runOpsServer(ctx context.Context, port int, health healthAggregator, logger *slog.Logger) error {
	return serveHTTP(ctx, "ops", port, opsHandler(health, logger), logger)
}

func runAdminServer(ctx context.Context, port int, handler http.Handler, logger *slog.Logger) error {
	return serveHTTP(ctx, "admin", port, handler, logger)
}

func serveHTTP(ctx context.Context, name string, port int, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("http server shutdown error", "server", name, "error", err)
		}
	}()

	logger.Info("http server started", "server", name, "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
