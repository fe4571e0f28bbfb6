package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

// Name identifies one contract event kind. The set is closed; anything
// outside it is rejected at the queue boundary.
type Name string

const (
	StrategyCreated    Name = "strategy-created"
	StrategyUpdated    Name = "strategy-updated"
	StrategyPaused     Name = "strategy-paused"
	StrategyResumed    Name = "strategy-resumed"
	StrategyDeleted    Name = "strategy-deleted"
	RebalanceExecuted  Name = "rebalance-executed"
	RebalanceFailed    Name = "rebalance-failed"
	SwapExecuted       Name = "swap-executed"
	DexApprovalChanged Name = "dex-approval-changed"
	EmergencyPaused    Name = "emergency-paused"
	EmergencyUnpaused  Name = "emergency-unpaused"
	ExecutorRotated    Name = "executor-rotated"
)

func (n Name) String() string {
	return string(n)
}

// Known reports whether n belongs to the closed event set.
func (n Name) Known() bool {
	switch n {
	case StrategyCreated, StrategyUpdated, StrategyPaused, StrategyResumed,
		StrategyDeleted, RebalanceExecuted, RebalanceFailed, SwapExecuted,
		DexApprovalChanged, EmergencyPaused, EmergencyUnpaused, ExecutorRotated:
		return true
	}
	return false
}

// Names lists every known event name in dispatch order.
func Names() []Name {
	return []Name{
		StrategyCreated, StrategyUpdated, StrategyPaused, StrategyResumed,
		StrategyDeleted, RebalanceExecuted, RebalanceFailed, SwapExecuted,
		DexApprovalChanged, EmergencyPaused, EmergencyUnpaused, ExecutorRotated,
	}
}

// RawEvent is the single representation both discovery paths produce and
// the queue carries. BlockTime is enriched at discovery (logs do not carry
// timestamps); Data holds the kind-specific payload, decoded exactly once
// by the consumer via DecodePayload.
type RawEvent struct {
	ChainID     model.ChainID      `json:"chain_id"`
	Name        Name               `json:"event_name"`
	BlockNumber int64              `json:"block_number"`
	BlockTime   time.Time          `json:"block_time"`
	TxHash      string             `json:"transaction_hash"`
	LogIndex    int64              `json:"log_index"`
	Source      model.IngestSource `json:"source"`
	Data        json.RawMessage    `json:"data"`
}

// Key returns the event's identity for logging and dead-letter records.
func (e RawEvent) Key() string {
	return fmt.Sprintf("%d:%s:%d", e.ChainID, e.TxHash, e.LogIndex)
}
