package model

import (
	"encoding/json"
	"time"
)

// SystemEvent records platform-level contract events (approvals, emergency
// pause state, executor rotation), keyed by (chain_id, tx_hash, log_index).
// Immutable.
type SystemEvent struct {
	ChainID     ChainID         `db:"chain_id"`
	TxHash      string          `db:"tx_hash"`
	LogIndex    int64           `db:"log_index"`
	Kind        SystemEventKind `db:"kind"`
	Payload     json.RawMessage `db:"payload"`
	BlockNumber int64           `db:"block_number"`
	BlockTime   time.Time       `db:"block_time"`
	CreatedAt   time.Time       `db:"created_at"`
}
