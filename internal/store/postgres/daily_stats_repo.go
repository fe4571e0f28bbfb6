package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

type DailyStatsRepo struct {
	db *DB
}

func NewDailyStatsRepo(db *DB) *DailyStatsRepo {
	return &DailyStatsRepo{db: db}
}

// ApplyRebalanceTx folds a successful rebalance into the chain's day row.
// The daily drift mean keeps its own sample count so it stays correct even
// though rebalance_count and drift_samples happen to advance together.
func (r *DailyStatsRepo) ApplyRebalanceTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string, driftBps int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stats (chain_id, day, rebalance_count, gas_used, avg_drift_bps, drift_samples)
		VALUES ($1, $2, 1, $3::numeric, $4, 1)
		ON CONFLICT (chain_id, day) DO UPDATE SET
			rebalance_count = daily_stats.rebalance_count + 1,
			gas_used = daily_stats.gas_used + $3::numeric,
			avg_drift_bps = (daily_stats.avg_drift_bps * daily_stats.drift_samples + $4) / (daily_stats.drift_samples + 1),
			drift_samples = daily_stats.drift_samples + 1,
			updated_at = now()
	`, chainID, day, gasUsed, driftBps)
	if err != nil {
		return fmt.Errorf("apply daily rebalance: %w", err)
	}
	return nil
}

// ApplyFailedRebalanceTx counts the failure and its burned gas; failed
// executions carry no drift sample.
func (r *DailyStatsRepo) ApplyFailedRebalanceTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stats (chain_id, day, failed_rebalance_count, gas_used)
		VALUES ($1, $2, 1, $3::numeric)
		ON CONFLICT (chain_id, day) DO UPDATE SET
			failed_rebalance_count = daily_stats.failed_rebalance_count + 1,
			gas_used = daily_stats.gas_used + $3::numeric,
			updated_at = now()
	`, chainID, day, gasUsed)
	if err != nil {
		return fmt.Errorf("apply daily failed rebalance: %w", err)
	}
	return nil
}

func (r *DailyStatsRepo) ApplySwapTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, volume string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO daily_stats (chain_id, day, swap_count, volume)
		VALUES ($1, $2, 1, $3::numeric)
		ON CONFLICT (chain_id, day) DO UPDATE SET
			swap_count = daily_stats.swap_count + 1,
			volume = daily_stats.volume + $3::numeric,
			updated_at = now()
	`, chainID, day, volume)
	if err != nil {
		return fmt.Errorf("apply daily swap: %w", err)
	}
	return nil
}

func (r *DailyStatsRepo) Get(ctx context.Context, chainID model.ChainID, day time.Time) (*model.DailyStats, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var ds model.DailyStats
	err := r.db.QueryRowContext(ctx, `
		SELECT chain_id, day, rebalance_count, failed_rebalance_count, swap_count,
			   volume::text, gas_used::text, avg_drift_bps, drift_samples, updated_at
		FROM daily_stats
		WHERE chain_id = $1 AND day = $2
	`, chainID, day).Scan(
		&ds.ChainID, &ds.Day, &ds.RebalanceCount, &ds.FailedRebalanceCount,
		&ds.SwapCount, &ds.Volume, &ds.GasUsed, &ds.AvgDriftBps,
		&ds.DriftSamples, &ds.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats: %w", err)
	}
	return &ds, nil
}

func (r *DailyStatsRepo) Range(ctx context.Context, chainID model.ChainID, from, to time.Time) ([]model.DailyStats, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT chain_id, day, rebalance_count, failed_rebalance_count, swap_count,
			   volume::text, gas_used::text, avg_drift_bps, drift_samples, updated_at
		FROM daily_stats
		WHERE chain_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day
	`, chainID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []model.DailyStats
	for rows.Next() {
		var ds model.DailyStats
		if err := rows.Scan(
			&ds.ChainID, &ds.Day, &ds.RebalanceCount, &ds.FailedRebalanceCount,
			&ds.SwapCount, &ds.Volume, &ds.GasUsed, &ds.AvgDriftBps,
			&ds.DriftSamples, &ds.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		stats = append(stats, ds)
	}
	return stats, rows.Err()
}
