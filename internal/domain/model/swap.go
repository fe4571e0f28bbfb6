package model

import "time"

// Swap is keyed by (chain_id, tx_hash, log_index, swap_index) and is
// immutable once created. The parent rebalance reference is resolved at
// reduction time: the rebalance sharing the transaction hash with the
// highest log index below the swap's own.
type Swap struct {
	ChainID           ChainID   `db:"chain_id"`
	TxHash            string    `db:"tx_hash"`
	LogIndex          int64     `db:"log_index"`
	SwapIndex         int       `db:"swap_index"`
	UserAddress       string    `db:"user_address"`
	StrategyID        int64     `db:"strategy_id"`
	RebalanceTxHash   string    `db:"rebalance_tx_hash"`
	RebalanceLogIndex int64     `db:"rebalance_log_index"`
	TokenIn           string    `db:"token_in"`
	TokenOut          string    `db:"token_out"`
	AmountIn          string    `db:"amount_in"`  // NUMERIC(78,0) as string
	AmountOut         string    `db:"amount_out"` // NUMERIC(78,0) as string
	PriceImpactBps    *int64    `db:"price_impact_bps"`
	BlockNumber       int64     `db:"block_number"`
	BlockTime         time.Time `db:"block_time"`
	CreatedAt         time.Time `db:"created_at"`
}
