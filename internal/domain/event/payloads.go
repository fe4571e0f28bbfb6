package event

import (
	"encoding/json"
	"fmt"
)

// Payload is the closed set of typed event payloads. Each variant carries
// exactly the fields its contract event emits; handlers never see
// untyped JSON.
type Payload interface {
	isPayload()
}

type StrategyCreatedData struct {
	StrategyID      int64    `json:"strategy_id"`
	User            string   `json:"user"`
	Tokens          []string `json:"tokens"`
	WeightsBps      []int64  `json:"weights_bps"`
	IntervalSeconds int64    `json:"interval_seconds"`
}

type StrategyUpdatedData struct {
	StrategyID      int64    `json:"strategy_id"`
	User            string   `json:"user"`
	Tokens          []string `json:"tokens"`
	WeightsBps      []int64  `json:"weights_bps"`
	IntervalSeconds int64    `json:"interval_seconds"`
}

type StrategyPausedData struct {
	StrategyID int64  `json:"strategy_id"`
	User       string `json:"user"`
}

type StrategyResumedData struct {
	StrategyID int64  `json:"strategy_id"`
	User       string `json:"user"`
}

type StrategyDeletedData struct {
	StrategyID int64  `json:"strategy_id"`
	User       string `json:"user"`
}

type RebalanceExecutedData struct {
	StrategyID int64  `json:"strategy_id"`
	User       string `json:"user"`
	DriftBps   int64  `json:"drift_bps"`
	GasUsed    string `json:"gas_used"`
	GasPrice   string `json:"gas_price"`
	Executor   string `json:"executor"`
}

type RebalanceFailedData struct {
	StrategyID int64  `json:"strategy_id"`
	User       string `json:"user"`
	Reason     string `json:"reason"`
	GasUsed    string `json:"gas_used"`
	GasPrice   string `json:"gas_price"`
}

type SwapExecutedData struct {
	StrategyID     int64  `json:"strategy_id"`
	User           string `json:"user"`
	SwapIndex      int    `json:"swap_index"`
	TokenIn        string `json:"token_in"`
	TokenOut       string `json:"token_out"`
	AmountIn       string `json:"amount_in"`
	AmountOut      string `json:"amount_out"`
	PriceImpactBps *int64 `json:"price_impact_bps,omitempty"`
}

type DexApprovalChangedData struct {
	Dex      string `json:"dex"`
	Approved bool   `json:"approved"`
}

type EmergencyPausedData struct {
	TriggeredBy string `json:"triggered_by"`
}

type EmergencyUnpausedData struct {
	TriggeredBy string `json:"triggered_by"`
}

type ExecutorRotatedData struct {
	OldExecutor string `json:"old_executor"`
	NewExecutor string `json:"new_executor"`
}

func (StrategyCreatedData) isPayload()    {}
func (StrategyUpdatedData) isPayload()    {}
func (StrategyPausedData) isPayload()     {}
func (StrategyResumedData) isPayload()    {}
func (StrategyDeletedData) isPayload()    {}
func (RebalanceExecutedData) isPayload()  {}
func (RebalanceFailedData) isPayload()    {}
func (SwapExecutedData) isPayload()       {}
func (DexApprovalChangedData) isPayload() {}
func (EmergencyPausedData) isPayload()    {}
func (EmergencyUnpausedData) isPayload()  {}
func (ExecutorRotatedData) isPayload()    {}

// DecodePayload resolves a raw data blob into its typed variant. An
// unknown name is a terminal decode failure, not a retryable one.
func DecodePayload(name Name, data json.RawMessage) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch name {
	case StrategyCreated:
		p, err = decodeAs[StrategyCreatedData](data)
	case StrategyUpdated:
		p, err = decodeAs[StrategyUpdatedData](data)
	case StrategyPaused:
		p, err = decodeAs[StrategyPausedData](data)
	case StrategyResumed:
		p, err = decodeAs[StrategyResumedData](data)
	case StrategyDeleted:
		p, err = decodeAs[StrategyDeletedData](data)
	case RebalanceExecuted:
		p, err = decodeAs[RebalanceExecutedData](data)
	case RebalanceFailed:
		p, err = decodeAs[RebalanceFailedData](data)
	case SwapExecuted:
		p, err = decodeAs[SwapExecutedData](data)
	case DexApprovalChanged:
		p, err = decodeAs[DexApprovalChangedData](data)
	case EmergencyPaused:
		p, err = decodeAs[EmergencyPausedData](data)
	case EmergencyUnpaused:
		p, err = decodeAs[EmergencyUnpausedData](data)
	case ExecutorRotated:
		p, err = decodeAs[ExecutorRotatedData](data)
	default:
		return nil, fmt.Errorf("unknown event name %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", name, err)
	}
	return p, nil
}

func decodeAs[T Payload](data json.RawMessage) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalData is the inverse of DecodePayload, used by the discovery
// paths when building the queue representation.
func MarshalData(p Payload) (json.RawMessage, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return b, nil
}
