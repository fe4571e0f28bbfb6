package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

const rebalanceColumns = `chain_id, tx_hash, log_index, user_address, strategy_id,
	drift_bps, drift_pct, gas_used::text, gas_price::text, status, failure_reason,
	executor, swap_count, swap_volume::text, block_number, block_time, created_at, updated_at`

type RebalanceRepo struct {
	db *DB
}

func NewRebalanceRepo(db *DB) *RebalanceRepo {
	return &RebalanceRepo{db: db}
}

// CreateTx inserts a rebalance exactly once per (chain_id, tx_hash,
// log_index). The row is created with empty swap roll-ups; only
// AttachSwapTx touches it afterwards.
func (r *RebalanceRepo) CreateTx(ctx context.Context, tx *sql.Tx, rb *model.Rebalance) (store.UpsertResult, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO rebalances (chain_id, tx_hash, log_index, user_address, strategy_id,
			drift_bps, drift_pct, gas_used, gas_price, status, failure_reason, executor,
			block_number, block_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9::numeric, $10, $11, $12, $13, $14)
		ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING
	`, rb.ChainID, rb.TxHash, rb.LogIndex, rb.UserAddress, rb.StrategyID,
		rb.DriftBps, rb.DriftPct, rb.GasUsed, rb.GasPrice, rb.Status,
		rb.FailureReason, rb.Executor, rb.BlockNumber, rb.BlockTime,
	)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create rebalance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create rebalance rows affected: %w", err)
	}
	return store.UpsertResult{Inserted: n > 0}, nil
}

// FindParentTx resolves a swap's parent: the rebalance in the same
// transaction with the highest log index strictly below the swap's own.
// Returns nil when the transaction holds no earlier rebalance.
func (r *RebalanceRepo) FindParentTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, txHash string, swapLogIndex int64) (*model.Rebalance, error) {
	var rb model.Rebalance
	err := tx.QueryRowContext(ctx, `
		SELECT `+rebalanceColumns+`
		FROM rebalances
		WHERE chain_id = $1 AND tx_hash = $2 AND log_index < $3
		ORDER BY log_index DESC
		LIMIT 1
	`, chainID, txHash, swapLogIndex).Scan(
		&rb.ChainID, &rb.TxHash, &rb.LogIndex, &rb.UserAddress, &rb.StrategyID,
		&rb.DriftBps, &rb.DriftPct, &rb.GasUsed, &rb.GasPrice, &rb.Status,
		&rb.FailureReason, &rb.Executor, &rb.SwapCount, &rb.SwapVolume,
		&rb.BlockNumber, &rb.BlockTime, &rb.CreatedAt, &rb.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find parent rebalance: %w", err)
	}
	return &rb, nil
}

func (r *RebalanceRepo) AttachSwapTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, txHash string, logIndex int64, volume string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE rebalances SET
			swap_count = swap_count + 1,
			swap_volume = swap_volume + $4::numeric,
			updated_at = now()
		WHERE chain_id = $1 AND tx_hash = $2 AND log_index = $3
	`, chainID, txHash, logIndex, volume)
	if err != nil {
		return fmt.Errorf("attach swap to rebalance: %w", err)
	}
	return nil
}

func (r *RebalanceRepo) Get(ctx context.Context, chainID model.ChainID, txHash string, logIndex int64) (*model.Rebalance, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var rb model.Rebalance
	err := r.db.QueryRowContext(ctx, `
		SELECT `+rebalanceColumns+`
		FROM rebalances
		WHERE chain_id = $1 AND tx_hash = $2 AND log_index = $3
	`, chainID, txHash, logIndex).Scan(
		&rb.ChainID, &rb.TxHash, &rb.LogIndex, &rb.UserAddress, &rb.StrategyID,
		&rb.DriftBps, &rb.DriftPct, &rb.GasUsed, &rb.GasPrice, &rb.Status,
		&rb.FailureReason, &rb.Executor, &rb.SwapCount, &rb.SwapVolume,
		&rb.BlockNumber, &rb.BlockTime, &rb.CreatedAt, &rb.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rebalance: %w", err)
	}
	return &rb, nil
}

func (r *RebalanceRepo) ListByStrategy(ctx context.Context, key model.StrategyKey, limit, offset int) ([]model.Rebalance, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+rebalanceColumns+`
		FROM rebalances
		WHERE chain_id = $1 AND user_address = $2 AND strategy_id = $3
		ORDER BY block_number DESC, log_index DESC
		LIMIT $4 OFFSET $5
	`, key.ChainID, key.UserAddress, key.StrategyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query rebalances: %w", err)
	}
	defer rows.Close()

	var rebalances []model.Rebalance
	for rows.Next() {
		var rb model.Rebalance
		if err := rows.Scan(
			&rb.ChainID, &rb.TxHash, &rb.LogIndex, &rb.UserAddress, &rb.StrategyID,
			&rb.DriftBps, &rb.DriftPct, &rb.GasUsed, &rb.GasPrice, &rb.Status,
			&rb.FailureReason, &rb.Executor, &rb.SwapCount, &rb.SwapVolume,
			&rb.BlockNumber, &rb.BlockTime, &rb.CreatedAt, &rb.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rebalance: %w", err)
		}
		rebalances = append(rebalances, rb)
	}
	return rebalances, rows.Err()
}
