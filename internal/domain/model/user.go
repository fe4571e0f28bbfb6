package model

import "time"

// User is keyed by the chain-independent wallet address (lowercased hex).
// Counters are derived from strategy and rebalance events and never drop
// below zero.
type User struct {
	Address         string    `db:"address"`
	StrategyCount   int64     `db:"strategy_count"`
	TotalRebalances int64     `db:"total_rebalances"`
	TotalGasSpent   string    `db:"total_gas_spent"` // NUMERIC(78,0) as string
	FirstSeenAt     time.Time `db:"first_seen_at"`
	LastActiveAt    time.Time `db:"last_active_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
