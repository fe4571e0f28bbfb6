package model

import "strconv"

// ChainID is the EVM chain identifier. It is part of every entity key so
// that independently deployed chains sharing this schema never collide.
type ChainID int64

const (
	ChainMonadTestnet ChainID = 10143
	ChainBaseSepolia  ChainID = 84532
)

func (c ChainID) String() string {
	return strconv.FormatInt(int64(c), 10)
}

type RebalanceStatus string

const (
	RebalanceStatusSuccess RebalanceStatus = "SUCCESS"
	RebalanceStatusFailed  RebalanceStatus = "FAILED"
)

type SystemEventKind string

const (
	SystemEventDexApproval      SystemEventKind = "DEX_APPROVAL"
	SystemEventEmergencyPause   SystemEventKind = "EMERGENCY_PAUSE"
	SystemEventEmergencyUnpause SystemEventKind = "EMERGENCY_UNPAUSE"
	SystemEventExecutorRotated  SystemEventKind = "EXECUTOR_ROTATED"
)

// IngestSource records which discovery path delivered an event. Both paths
// feed the same reducer; the source is carried for observability only.
type IngestSource string

const (
	SourceBackfill IngestSource = "backfill"
	SourceLive     IngestSource = "live"
)

func (s IngestSource) String() string {
	return string(s)
}
