package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

type SwapRepo struct {
	db *DB
}

func NewSwapRepo(db *DB) *SwapRepo {
	return &SwapRepo{db: db}
}

func (r *SwapRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Swap) (store.UpsertResult, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO swaps (chain_id, tx_hash, log_index, swap_index, user_address, strategy_id,
			rebalance_tx_hash, rebalance_log_index, token_in, token_out,
			amount_in, amount_out, price_impact_bps, block_number, block_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::numeric, $12::numeric, $13, $14, $15)
		ON CONFLICT (chain_id, tx_hash, log_index, swap_index) DO NOTHING
	`, s.ChainID, s.TxHash, s.LogIndex, s.SwapIndex, s.UserAddress, s.StrategyID,
		s.RebalanceTxHash, s.RebalanceLogIndex, s.TokenIn, s.TokenOut,
		s.AmountIn, s.AmountOut, s.PriceImpactBps, s.BlockNumber, s.BlockTime,
	)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create swap: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create swap rows affected: %w", err)
	}
	return store.UpsertResult{Inserted: n > 0}, nil
}

func (r *SwapRepo) ListByRebalance(ctx context.Context, chainID model.ChainID, rebalanceTxHash string, rebalanceLogIndex int64) ([]model.Swap, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT chain_id, tx_hash, log_index, swap_index, user_address, strategy_id,
			   rebalance_tx_hash, rebalance_log_index, token_in, token_out,
			   amount_in::text, amount_out::text, price_impact_bps,
			   block_number, block_time, created_at
		FROM swaps
		WHERE chain_id = $1 AND rebalance_tx_hash = $2 AND rebalance_log_index = $3
		ORDER BY log_index, swap_index
	`, chainID, rebalanceTxHash, rebalanceLogIndex)
	if err != nil {
		return nil, fmt.Errorf("query swaps: %w", err)
	}
	defer rows.Close()

	var swaps []model.Swap
	for rows.Next() {
		var s model.Swap
		if err := rows.Scan(
			&s.ChainID, &s.TxHash, &s.LogIndex, &s.SwapIndex, &s.UserAddress, &s.StrategyID,
			&s.RebalanceTxHash, &s.RebalanceLogIndex, &s.TokenIn, &s.TokenOut,
			&s.AmountIn, &s.AmountOut, &s.PriceImpactBps,
			&s.BlockNumber, &s.BlockTime, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}
