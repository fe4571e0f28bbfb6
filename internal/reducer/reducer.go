// Package reducer applies raw events to canonical state. Every event is
// reduced inside a single database transaction, and every handler is
// idempotent, so at-least-once delivery and concurrent backfill/live
// duplicates collapse to one state change. On commit the reducer
// publishes change notifications for the rows it touched.
package reducer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/notifier"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/tracing"
)

// Repos bundles the canonical-state repositories the reducer writes.
type Repos struct {
	Users        store.UserRepository
	Strategies   store.StrategyRepository
	Rebalances   store.RebalanceRepository
	Swaps        store.SwapRepository
	SystemEvents store.SystemEventRepository
	DailyStats   store.DailyStatsRepository
}

type Reducer struct {
	db       store.TxBeginner
	repos    Repos
	notifier *notifier.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(db store.TxBeginner, repos Repos, n *notifier.Notifier, logger *slog.Logger) *Reducer {
	return &Reducer{
		db:       db,
		repos:    repos,
		notifier: n,
		logger:   logger.With("component", "reducer"),
		tracer:   tracing.Tracer("reducer"),
	}
}

// note is a change notification queued during reduction and published
// only after the transaction commits.
type note struct {
	channel string
	fields  map[string]any
}

// outcome describes what a handler did with the event.
type outcome struct {
	applied   bool   // state changed for the first time
	duplicate bool   // replay of an already-applied event
	dropped   string // reason the event was discarded, empty otherwise
	conflict  bool   // replayed create carried a different payload
	notes     []note
}

func applied(notes ...note) outcome {
	return outcome{applied: true, notes: notes}
}

func duplicate() outcome {
	return outcome{duplicate: true}
}

func dropped(reason string) outcome {
	return outcome{dropped: reason}
}

// Apply reduces one raw event. It is the queue's Handler: a nil return
// finishes the delivery, a transient error is retried by the queue, and
// a terminal error dead-letters the item. Dropped events (ordering
// violations) return nil because retrying cannot repair missing causal
// data.
func (r *Reducer) Apply(ctx context.Context, ev event.RawEvent) error {
	start := time.Now()
	defer func() {
		metrics.ReducerApplyLatency.WithLabelValues(ev.ChainID.String()).Observe(time.Since(start).Seconds())
	}()

	ctx, span := r.tracer.Start(ctx, "reducer.apply", trace.WithAttributes(
		attribute.Int64("chain_id", int64(ev.ChainID)),
		attribute.String("event", ev.Name.String()),
		attribute.String("tx_hash", ev.TxHash),
		attribute.Int64("log_index", ev.LogIndex),
	))
	defer span.End()

	payload, err := event.DecodePayload(ev.Name, ev.Data)
	if err != nil {
		span.RecordError(err)
		return retry.Terminal(fmt.Errorf("event %s: %w", ev.Key(), err))
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return retry.Transient(fmt.Errorf("begin tx: %w", err))
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			r.logger.Warn("rollback failed", "event", ev.Key(), "error", rbErr)
		}
	}()

	out, err := r.dispatch(ctx, tx, ev, payload)
	if err != nil {
		span.RecordError(err)
		err = fmt.Errorf("reduce %s %s: %w", ev.Name, ev.Key(), err)
		if retry.Marked(err) {
			// A handler already decided (bad numeric fields are terminal).
			return err
		}
		// Unmarked errors are store faults: retryable infrastructure trouble.
		return retry.Transient(err)
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return retry.Transient(fmt.Errorf("commit %s: %w", ev.Key(), err))
	}
	committed = true

	r.record(ev, out)
	for _, n := range out.notes {
		r.notifier.Publish(ctx, n.channel, ev.Source.String(), n.fields)
	}
	return nil
}

func (r *Reducer) dispatch(ctx context.Context, tx *sql.Tx, ev event.RawEvent, payload event.Payload) (outcome, error) {
	switch data := payload.(type) {
	case event.StrategyCreatedData:
		return r.applyStrategyCreated(ctx, tx, ev, data)
	case event.StrategyUpdatedData:
		return r.applyStrategyUpdated(ctx, tx, ev, data)
	case event.StrategyPausedData:
		return r.applyStrategyPauseState(ctx, tx, ev, data.StrategyID, data.User, true)
	case event.StrategyResumedData:
		return r.applyStrategyPauseState(ctx, tx, ev, data.StrategyID, data.User, false)
	case event.StrategyDeletedData:
		return r.applyStrategyDeleted(ctx, tx, ev, data)
	case event.RebalanceExecutedData:
		return r.applyRebalanceExecuted(ctx, tx, ev, data)
	case event.RebalanceFailedData:
		return r.applyRebalanceFailed(ctx, tx, ev, data)
	case event.SwapExecutedData:
		return r.applySwapExecuted(ctx, tx, ev, data)
	case event.DexApprovalChangedData:
		return r.applySystemEvent(ctx, tx, ev, model.SystemEventDexApproval, map[string]any{
			"dex": data.Dex, "approved": data.Approved,
		})
	case event.EmergencyPausedData:
		return r.applySystemEvent(ctx, tx, ev, model.SystemEventEmergencyPause, map[string]any{
			"triggered_by": data.TriggeredBy,
		})
	case event.EmergencyUnpausedData:
		return r.applySystemEvent(ctx, tx, ev, model.SystemEventEmergencyUnpause, map[string]any{
			"triggered_by": data.TriggeredBy,
		})
	case event.ExecutorRotatedData:
		return r.applySystemEvent(ctx, tx, ev, model.SystemEventExecutorRotated, map[string]any{
			"old_executor": data.OldExecutor, "new_executor": data.NewExecutor,
		})
	default:
		// DecodePayload already rejected unknown names; this is a
		// missing dispatch arm, not bad input.
		return outcome{}, fmt.Errorf("no handler for event %q", ev.Name)
	}
}

// record translates the handler outcome into counters and logs.
func (r *Reducer) record(ev event.RawEvent, out outcome) {
	chain := ev.ChainID.String()
	name := ev.Name.String()

	switch {
	case out.applied:
		metrics.ReducerEventsApplied.WithLabelValues(chain, name).Inc()
	case out.duplicate:
		metrics.ReducerEventsDuplicate.WithLabelValues(chain, name).Inc()
	case out.dropped != "":
		metrics.ReducerEventsDropped.WithLabelValues(chain, out.dropped).Inc()
	}
	if out.conflict {
		metrics.ReducerInvariantViolations.WithLabelValues(chain, name).Inc()
	}
}
