package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

type StrategyRepo struct {
	db *DB
}

func NewStrategyRepo(db *DB) *StrategyRepo {
	return &StrategyRepo{db: db}
}

const strategyColumns = `chain_id, user_address, strategy_id, tokens, weights_bps,
	rebalance_interval_seconds, is_active, is_paused,
	total_rebalances, total_swaps, total_volume::text, avg_drift_bps,
	created_at_block, created_at, updated_at, deleted_at`

func scanStrategy(row interface{ Scan(dest ...any) error }) (*model.Strategy, error) {
	var s model.Strategy
	err := row.Scan(
		&s.ChainID, &s.UserAddress, &s.StrategyID,
		pq.Array(&s.Tokens), pq.Array(&s.WeightsBps),
		&s.RebalanceIntervalSecond, &s.IsActive, &s.IsPaused,
		&s.TotalRebalances, &s.TotalSwaps, &s.TotalVolume, &s.AvgDriftBps,
		&s.CreatedAtBlock, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a strategy, reporting whether this call created the row.
// A replayed create is a no-op and the first-seen payload stays in place.
func (r *StrategyRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Strategy) (store.UpsertResult, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO strategies (chain_id, user_address, strategy_id, tokens, weights_bps,
			rebalance_interval_seconds, is_active, is_paused, created_at_block)
		VALUES ($1, $2, $3, $4, $5, $6, true, false, $7)
		ON CONFLICT (chain_id, user_address, strategy_id) DO NOTHING
	`, s.ChainID, s.UserAddress, s.StrategyID,
		pq.Array(s.Tokens), pq.Array(s.WeightsBps),
		s.RebalanceIntervalSecond, s.CreatedAtBlock,
	)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create strategy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create strategy rows affected: %w", err)
	}
	return store.UpsertResult{Inserted: n > 0}, nil
}

// UpdateConfigTx replaces the strategy's allocation config. Deleted
// strategies are terminal and never updated; the false return tells the
// caller the update found no live row.
func (r *StrategyRepo) UpdateConfigTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, tokens []string, weightsBps []int64, intervalSeconds int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE strategies SET
			tokens = $4,
			weights_bps = $5,
			rebalance_interval_seconds = $6,
			updated_at = now()
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3 AND deleted_at IS NULL
	`, key.ChainID, key.UserAddress, key.StrategyID,
		pq.Array(tokens), pq.Array(weightsBps), intervalSeconds,
	)
	if err != nil {
		return false, fmt.Errorf("update strategy config: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update strategy config rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *StrategyRepo) SetPausedTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, paused bool) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE strategies SET
			is_paused = $4,
			updated_at = now()
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3 AND deleted_at IS NULL
	`, key.ChainID, key.UserAddress, key.StrategyID, paused)
	if err != nil {
		return false, fmt.Errorf("set strategy paused: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set strategy paused rows affected: %w", err)
	}
	return n > 0, nil
}

// SoftDeleteTx marks the strategy terminally inactive. The deleted_at guard
// makes replays no-ops, so the caller can gate its counter side effects on
// the returned bool.
func (r *StrategyRepo) SoftDeleteTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, at time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE strategies SET
			is_active = false,
			is_paused = false,
			deleted_at = $4,
			updated_at = now()
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3 AND deleted_at IS NULL
	`, key.ChainID, key.UserAddress, key.StrategyID, at)
	if err != nil {
		return false, fmt.Errorf("soft delete strategy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete strategy rows affected: %w", err)
	}
	return n > 0, nil
}

// ApplyRebalanceTx folds one drift sample into the running mean in a single
// statement. Postgres evaluates every SET expression against the pre-update
// row under the row lock, so the mean and its sample count move together
// with no lost-update window.
//
// Late samples for an already-deleted strategy still count: the execution
// happened on chain before the deletion, only its delivery was late.
func (r *StrategyRepo) ApplyRebalanceTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, driftBps int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE strategies SET
			avg_drift_bps = (avg_drift_bps * total_rebalances + $4) / (total_rebalances + 1),
			total_rebalances = total_rebalances + 1,
			updated_at = now()
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3
	`, key.ChainID, key.UserAddress, key.StrategyID, driftBps)
	if err != nil {
		return false, fmt.Errorf("apply strategy rebalance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply strategy rebalance rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *StrategyRepo) ApplySwapTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, volume string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE strategies SET
			total_swaps = total_swaps + 1,
			total_volume = total_volume + $4::numeric,
			updated_at = now()
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3
	`, key.ChainID, key.UserAddress, key.StrategyID, volume)
	if err != nil {
		return false, fmt.Errorf("apply strategy swap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply strategy swap rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *StrategyRepo) Get(ctx context.Context, key model.StrategyKey) (*model.Strategy, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+strategyColumns+`
		FROM strategies
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3
	`, key.ChainID, key.UserAddress, key.StrategyID)

	s, err := scanStrategy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get strategy: %w", err)
	}
	return s, nil
}

// GetTx reads the strategy inside the caller's transaction, used by the
// reducer to inspect the first-seen row when a replayed create carries a
// different payload.
func (r *StrategyRepo) GetTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey) (*model.Strategy, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+strategyColumns+`
		FROM strategies
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3
	`, key.ChainID, key.UserAddress, key.StrategyID)

	s, err := scanStrategy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get strategy in tx: %w", err)
	}
	return s, nil
}

func (r *StrategyRepo) List(ctx context.Context, filter store.StrategyFilter, limit, offset int) ([]model.Strategy, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	query := `
		SELECT ` + strategyColumns + `
		FROM strategies
		WHERE 1=1`
	var args []any
	if filter.ChainID != nil {
		args = append(args, *filter.ChainID)
		query += " AND chain_id = $" + strconv.Itoa(len(args))
	}
	if filter.UserAddress != nil {
		args = append(args, *filter.UserAddress)
		query += " AND user_address = $" + strconv.Itoa(len(args))
	}
	if filter.OnlyActive {
		query += " AND is_active = true"
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query strategies: %w", err)
	}
	defer rows.Close()

	var strategies []model.Strategy
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		strategies = append(strategies, *s)
	}
	return strategies, rows.Err()
}
