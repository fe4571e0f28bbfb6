package model

import "time"

// Rebalance is keyed by (chain_id, tx_hash, log_index) and created exactly
// once per executed or failed rebalance event. After creation only Swap
// arrivals touch the row, incrementing the swap roll-up fields.
type Rebalance struct {
	ChainID       ChainID         `db:"chain_id"`
	TxHash        string          `db:"tx_hash"`
	LogIndex      int64           `db:"log_index"`
	UserAddress   string          `db:"user_address"`
	StrategyID    int64           `db:"strategy_id"`
	DriftBps      int64           `db:"drift_bps"`
	DriftPct      float64         `db:"drift_pct"`
	GasUsed       string          `db:"gas_used"`  // NUMERIC(78,0) as string
	GasPrice      string          `db:"gas_price"` // NUMERIC(78,0) as string
	Status        RebalanceStatus `db:"status"`
	FailureReason *string         `db:"failure_reason"`
	Executor      string          `db:"executor"`
	SwapCount     int64           `db:"swap_count"`
	SwapVolume    string          `db:"swap_volume"` // NUMERIC(78,0) as string
	BlockNumber   int64           `db:"block_number"`
	BlockTime     time.Time       `db:"block_time"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
