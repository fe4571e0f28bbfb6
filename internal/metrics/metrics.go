package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion stage counters and histograms, partitioned by chain id.

var (
	// Backfill scanner
	ScannerBatchesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "batches_processed_total",
		Help:      "Total block batches scanned during backfill",
	}, []string{"chain"})

	ScannerLogsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "logs_fetched_total",
		Help:      "Total event logs fetched by the backfill scanner",
	}, []string{"chain"})

	ScannerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "errors_total",
		Help:      "Total scanner errors (after retry exhaustion)",
	}, []string{"chain"})

	ScannerBatchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "batch_duration_seconds",
		Help:      "Backfill batch processing duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"chain"})

	ScannerLatestIndexedBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "latest_indexed_block",
		Help:      "Highest block fully scanned and enqueued per chain",
	}, []string{"chain"})

	ScannerRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "running",
		Help:      "Whether a backfill run is active per chain (0/1)",
	}, []string{"chain"})

	ScannerPaused = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "scanner",
		Name:      "paused",
		Help:      "Whether the active backfill run is paused per chain (0/1)",
	}, []string{"chain"})

	// Live subscriber
	SubscriberPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "subscriber",
		Name:      "polls_total",
		Help:      "Total head polls issued by the live subscriber",
	}, []string{"chain"})

	SubscriberLogsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "subscriber",
		Name:      "logs_received_total",
		Help:      "Total event logs received from the live subscription",
	}, []string{"chain"})

	SubscriberErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "subscriber",
		Name:      "errors_total",
		Help:      "Total subscriber errors (after retry exhaustion)",
	}, []string{"chain"})

	SubscriberHeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "subscriber",
		Name:      "head_block",
		Help:      "Latest chain head observed by the subscriber",
	}, []string{"chain"})

	// Ingestion queue
	QueuePublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "published_total",
		Help:      "Total events published to the ingestion queue",
	}, []string{"chain", "source"})

	QueueConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "consumed_total",
		Help:      "Total events acknowledged by the queue consumer",
	}, []string{"chain"})

	QueueRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "retries_total",
		Help:      "Total transient delivery retries",
	}, []string{"chain"})

	QueueDeadLettersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "dead_letters_total",
		Help:      "Total events parked in the dead letter store",
	}, []string{"chain"})

	QueueHandleLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "handle_duration_seconds",
		Help:      "End-to-end handling duration per delivery",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"chain"})

	QueueStreamDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "queue",
		Name:      "stream_depth",
		Help:      "Current number of entries in the ingestion stream",
	}, []string{"chain"})

	// Event reducer
	ReducerEventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reducer",
		Name:      "events_applied_total",
		Help:      "Total events applied to canonical state",
	}, []string{"chain", "event"})

	ReducerEventsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reducer",
		Name:      "events_duplicate_total",
		Help:      "Total events skipped as already-applied duplicates",
	}, []string{"chain", "event"})

	ReducerEventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reducer",
		Name:      "events_dropped_total",
		Help:      "Total events dropped without state change",
	}, []string{"chain", "reason"})

	ReducerInvariantViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reducer",
		Name:      "invariant_violations_total",
		Help:      "Total conflicting writes resolved by first-seen-wins",
	}, []string{"chain", "event"})

	ReducerApplyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "reducer",
		Name:      "apply_duration_seconds",
		Help:      "Reducer apply duration (DB transaction)",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"chain"})

	// Change notifier
	NotifierPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "notifier",
		Name:      "published_total",
		Help:      "Total change notifications published",
	}, []string{"channel"})

	NotifierHandlerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "notifier",
		Name:      "handler_failures_total",
		Help:      "Total subscriber handler panics or errors swallowed",
	}, []string{"channel"})

	NotifierSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "notifier",
		Name:      "subscribers",
		Help:      "Current number of registered subscribers per channel",
	}, []string{"channel"})

	// Chain RPC
	RPCRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "Total JSON-RPC requests issued",
	}, []string{"chain", "method"})

	RPCErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "errors_total",
		Help:      "Total JSON-RPC request failures",
	}, []string{"chain", "method"})

	RPCRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "JSON-RPC request duration",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"chain", "method"})

	RPCRateLimitWaits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "rate_limit_waits_total",
		Help:      "Total times RPC calls waited for rate limiter",
	}, []string{"chain"})

	RPCBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "rpc",
		Name:      "breaker_state",
		Help:      "Circuit breaker state per chain (0=closed, 1=open, 2=half-open)",
	}, []string{"chain"})

	// Block time cache
	BlockTimeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "cache",
		Name:      "block_time_hits_total",
		Help:      "Total block timestamp cache hits",
	}, []string{"chain"})

	BlockTimeCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "cache",
		Name:      "block_time_misses_total",
		Help:      "Total block timestamp cache misses",
	}, []string{"chain"})

	// Database pool (one shared pool, no per-chain split)
	DBPoolOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_open",
		Help:      "Current number of open PostgreSQL connections in the pool",
	})

	DBPoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_in_use",
		Help:      "Current number of in-use PostgreSQL connections in the pool",
	})

	DBPoolIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_idle",
		Help:      "Current number of idle PostgreSQL connections in the pool",
	})

	DBPoolWaitCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_wait_count",
		Help:      "Cumulative count of waits for PostgreSQL connections from pool",
	})

	DBPoolWaitDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "indexer",
		Subsystem: "postgres",
		Name:      "db_pool_wait_duration_seconds",
		Help:      "Latest PostgreSQL pool wait duration in seconds",
	})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "alert_type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	}, []string{"channel", "alert_type"})

	// Reconciliation
	ReconciliationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reconciliation",
		Name:      "runs_total",
		Help:      "Total reconciliation runs executed",
	}, []string{"chain"})

	ReconciliationMismatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "indexer",
		Subsystem: "reconciliation",
		Name:      "mismatches_total",
		Help:      "Total aggregate mismatches detected during reconciliation",
	}, []string{"chain", "entity"})
)
