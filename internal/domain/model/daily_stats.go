package model

import "time"

// DailyStats aggregates per-chain activity for one UTC calendar day,
// keyed by (chain_id, day). Rows are only ever upserted additively.
type DailyStats struct {
	ChainID              ChainID   `db:"chain_id"`
	Day                  time.Time `db:"day"` // midnight UTC
	RebalanceCount       int64     `db:"rebalance_count"`
	FailedRebalanceCount int64     `db:"failed_rebalance_count"`
	SwapCount            int64     `db:"swap_count"`
	Volume               string    `db:"volume"`   // NUMERIC(78,0) as string
	GasUsed              string    `db:"gas_used"` // NUMERIC(78,0) as string
	AvgDriftBps          float64   `db:"avg_drift_bps"`
	DriftSamples         int64     `db:"drift_samples"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// UTCDay truncates t to its UTC calendar date. Both ingestion paths derive
// the daily aggregation key through this single function so an event lands
// on the same day row no matter which path delivered it.
func UTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
