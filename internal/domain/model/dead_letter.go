package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeadLetter is the terminal record for a queue item that exhausted its
// retry budget. The pipeline keeps running; operators inspect these rows.
type DeadLetter struct {
	ID        uuid.UUID       `db:"id"`
	ChainID   ChainID         `db:"chain_id"`
	EventName string          `db:"event_name"`
	TxHash    string          `db:"tx_hash"`
	LogIndex  int64           `db:"log_index"`
	Payload   json.RawMessage `db:"payload"`
	Failure   string          `db:"failure"`
	Attempts  int             `db:"attempts"`
	CreatedAt time.Time       `db:"created_at"`
}
