package model

import (
	"fmt"
	"time"
)

// Strategy is keyed by (chain_id, user_address, strategy_id); the tuple is
// stable for the strategy's lifetime. Deletion is a terminal soft-delete:
// once DeletedAt is set no later event reactivates the row. Pausing is the
// reversible sibling state toggled by the pause/resume event pair.
type Strategy struct {
	ChainID                 ChainID    `db:"chain_id"`
	UserAddress             string     `db:"user_address"`
	StrategyID              int64      `db:"strategy_id"`
	Tokens                  []string   `db:"tokens"`
	WeightsBps              []int64    `db:"weights_bps"` // basis points, sums to 10_000 at creation
	RebalanceIntervalSecond int64      `db:"rebalance_interval_seconds"`
	IsActive                bool       `db:"is_active"`
	IsPaused                bool       `db:"is_paused"`
	TotalRebalances         int64      `db:"total_rebalances"`
	TotalSwaps              int64      `db:"total_swaps"`
	TotalVolume             string     `db:"total_volume"` // NUMERIC(78,0) as string
	AvgDriftBps             float64    `db:"avg_drift_bps"`
	CreatedAtBlock          int64      `db:"created_at_block"`
	CreatedAt               time.Time  `db:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at"`
	DeletedAt               *time.Time `db:"deleted_at"`
}

// StrategyKey is the composite identity of a strategy across all chains.
type StrategyKey struct {
	ChainID     ChainID
	UserAddress string
	StrategyID  int64
}

func (k StrategyKey) String() string {
	return fmt.Sprintf("%d:%s:%d", k.ChainID, k.UserAddress, k.StrategyID)
}

func (s *Strategy) Key() StrategyKey {
	return StrategyKey{ChainID: s.ChainID, UserAddress: s.UserAddress, StrategyID: s.StrategyID}
}
