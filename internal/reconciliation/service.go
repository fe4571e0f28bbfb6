// Package reconciliation audits the incrementally maintained strategy
// aggregates against values re-derived from the rebalances and swaps
// ground tables. The audit is read-only: mismatches are reported and
// alerted, never auto-corrected, so a diverging reducer is caught
// without the audit itself becoming a second writer.
package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/notifier"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

// driftToleranceBps absorbs the float error the incremental mean
// accumulates against a fresh AVG() over the same rows.
const driftToleranceBps = 0.01

// Mismatch is one aggregate field whose stored value diverged from the
// value re-derived from the ground tables.
type Mismatch struct {
	Strategy string `json:"strategy"`
	Field    string `json:"field"`
	Stored   string `json:"stored"`
	Derived  string `json:"derived"`
}

// RunResult aggregates one audit run over a chain.
type RunResult struct {
	ChainID    model.ChainID `json:"chain_id"`
	Strategies int           `json:"strategies"`
	Matched    int           `json:"matched"`
	Mismatched int           `json:"mismatched"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Service runs the aggregate audit on demand and on a timer.
type Service struct {
	recons store.ReconciliationRepository
	notif  *notifier.Notifier
	logger *slog.Logger

	mu     sync.RWMutex
	chains []model.ChainID
}

func NewService(recons store.ReconciliationRepository, notif *notifier.Notifier, logger *slog.Logger) *Service {
	return &Service{
		recons: recons,
		notif:  notif,
		logger: logger.With("component", "reconciliation"),
	}
}

// RegisterChain adds a chain to the periodic audit rotation.
func (s *Service) RegisterChain(chainID model.ChainID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chains {
		if c == chainID {
			return
		}
	}
	s.chains = append(s.chains, chainID)
}

// HasChain reports whether the chain is registered for auditing.
func (s *Service) HasChain(chainID model.ChainID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chains {
		if c == chainID {
			return true
		}
	}
	return false
}

func (s *Service) registeredChains() []model.ChainID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChainID, len(s.chains))
	copy(out, s.chains)
	return out
}

// Reconcile audits every strategy on the chain and reports the result.
// A run with mismatches publishes a system:alert notification; the run
// itself still succeeds so callers always get the full report.
func (s *Service) Reconcile(ctx context.Context, chainID model.ChainID) (*RunResult, error) {
	result := &RunResult{ChainID: chainID, StartedAt: time.Now().UTC()}

	rows, err := s.recons.AggregateRows(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("aggregate rows for chain %d: %w", chainID, err)
	}

	for _, row := range rows {
		result.Strategies++
		found := auditRow(row)
		if len(found) == 0 {
			result.Matched++
			continue
		}
		result.Mismatched++
		result.Mismatches = append(result.Mismatches, found...)
		for _, m := range found {
			metrics.ReconciliationMismatchesTotal.WithLabelValues(chainID.String(), m.Field).Inc()
		}
	}
	result.FinishedAt = time.Now().UTC()

	metrics.ReconciliationRunsTotal.WithLabelValues(chainID.String()).Inc()

	if result.Mismatched > 0 {
		s.logger.Warn("aggregate audit found mismatches",
			"chain_id", int64(chainID),
			"strategies", result.Strategies,
			"mismatched", result.Mismatched)
		s.notif.Publish(ctx, notifier.ChannelSystemAlert, notifier.SourceSystem, map[string]any{
			"kind":       "reconciliation-mismatch",
			"chain_id":   int64(chainID),
			"strategies": result.Strategies,
			"mismatched": result.Mismatched,
		})
	} else {
		s.logger.Info("aggregate audit clean",
			"chain_id", int64(chainID), "strategies", result.Strategies)
	}

	return result, nil
}

// auditRow compares one strategy's stored aggregates against the
// re-derived values. Counts compare exactly, volume compares as big
// integers, the drift mean within driftToleranceBps.
func auditRow(row store.AggregateRow) []Mismatch {
	var out []Mismatch
	key := row.Key.String()

	if row.StoredRebalances != row.DerivedRebalances {
		out = append(out, Mismatch{
			Strategy: key,
			Field:    "rebalances",
			Stored:   strconv.FormatInt(row.StoredRebalances, 10),
			Derived:  strconv.FormatInt(row.DerivedRebalances, 10),
		})
	}
	if row.StoredSwaps != row.DerivedSwaps {
		out = append(out, Mismatch{
			Strategy: key,
			Field:    "swaps",
			Stored:   strconv.FormatInt(row.StoredSwaps, 10),
			Derived:  strconv.FormatInt(row.DerivedSwaps, 10),
		})
	}

	stored, okStored := new(big.Int).SetString(orZero(row.StoredVolume), 10)
	derived, okDerived := new(big.Int).SetString(orZero(row.DerivedVolume), 10)
	switch {
	case okStored && okDerived:
		if stored.Cmp(derived) != 0 {
			out = append(out, Mismatch{
				Strategy: key,
				Field:    "volume",
				Stored:   stored.String(),
				Derived:  derived.String(),
			})
		}
	default:
		// Unparseable wide decimals fall back to string comparison.
		if row.StoredVolume != row.DerivedVolume {
			out = append(out, Mismatch{
				Strategy: key,
				Field:    "volume",
				Stored:   row.StoredVolume,
				Derived:  row.DerivedVolume,
			})
		}
	}

	// No drift samples means AVG() had no rows; the count fields already
	// flag that divergence, so skip the meaningless 0-vs-0 comparison.
	if row.DerivedDriftSamples > 0 &&
		math.Abs(row.StoredAvgDriftBps-row.DerivedAvgDriftBps) > driftToleranceBps {
		out = append(out, Mismatch{
			Strategy: key,
			Field:    "avg_drift_bps",
			Stored:   strconv.FormatFloat(row.StoredAvgDriftBps, 'f', -1, 64),
			Derived:  strconv.FormatFloat(row.DerivedAvgDriftBps, 'f', -1, 64),
		})
	}

	return out
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// RunPeriodic audits every registered chain at the given interval until
// the context ends.
func (s *Service) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	s.logger.Info("periodic aggregate audit started", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("periodic aggregate audit stopping")
			return ctx.Err()
		case <-ticker.C:
			for _, chainID := range s.registeredChains() {
				if _, err := s.Reconcile(ctx, chainID); err != nil {
					s.logger.Warn("periodic aggregate audit failed",
						"chain_id", int64(chainID), "error", err)
				}
			}
		}
	}
}
