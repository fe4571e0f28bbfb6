package postgres

import (
	"context"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

// ReconciliationRepo re-derives strategy aggregates from the rebalances and
// swaps ground tables so the audit can compare them against the
// incrementally maintained columns.
type ReconciliationRepo struct {
	db *DB
}

func NewReconciliationRepo(db *DB) *ReconciliationRepo {
	return &ReconciliationRepo{db: db}
}

func (r *ReconciliationRepo) AggregateRows(ctx context.Context, chainID model.ChainID) ([]store.AggregateRow, error) {
	ctx, cancel := withTimeout(ctx, LongQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT s.chain_id, s.user_address, s.strategy_id,
			   s.total_rebalances, s.total_swaps, s.total_volume::text, s.avg_drift_bps,
			   COALESCE(rb.cnt, 0)       AS derived_rebalances,
			   COALESCE(rb.avg_drift, 0) AS derived_avg_drift,
			   COALESCE(sw.cnt, 0)       AS derived_swaps,
			   COALESCE(sw.vol, 0)::text AS derived_volume
		FROM strategies s
		LEFT JOIN (
			SELECT chain_id, user_address, strategy_id,
				   COUNT(*) AS cnt, AVG(drift_bps) AS avg_drift
			FROM rebalances
			WHERE status = 'SUCCESS'
			GROUP BY chain_id, user_address, strategy_id
		) rb ON rb.chain_id = s.chain_id
			AND rb.user_address = s.user_address
			AND rb.strategy_id = s.strategy_id
		LEFT JOIN (
			SELECT chain_id, user_address, strategy_id,
				   COUNT(*) AS cnt, SUM(amount_in) AS vol
			FROM swaps
			GROUP BY chain_id, user_address, strategy_id
		) sw ON sw.chain_id = s.chain_id
			AND sw.user_address = s.user_address
			AND sw.strategy_id = s.strategy_id
		WHERE s.chain_id = $1
		ORDER BY s.user_address, s.strategy_id
	`, chainID)
	if err != nil {
		return nil, fmt.Errorf("query aggregate rows: %w", err)
	}
	defer rows.Close()

	var out []store.AggregateRow
	for rows.Next() {
		var ar store.AggregateRow
		if err := rows.Scan(
			&ar.Key.ChainID, &ar.Key.UserAddress, &ar.Key.StrategyID,
			&ar.StoredRebalances, &ar.StoredSwaps, &ar.StoredVolume, &ar.StoredAvgDriftBps,
			&ar.DerivedRebalances, &ar.DerivedAvgDriftBps,
			&ar.DerivedSwaps, &ar.DerivedVolume,
		); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		ar.DerivedDriftSamples = ar.DerivedRebalances
		out = append(out, ar)
	}
	return out, rows.Err()
}
