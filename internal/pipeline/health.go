package pipeline

import (
	"sync"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

// HealthStatus is the coarse state of one chain's discovery stages.
type HealthStatus string

const (
	HealthStatusUnknown   HealthStatus = "UNKNOWN"
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"

	// DefaultUnhealthyThreshold is the number of consecutive stage
	// failures before a pipeline is considered unhealthy.
	DefaultUnhealthyThreshold = 5
)

// Health tracks one pipeline's state for the ops endpoint. Degraded
// means live following works but the catch-up scan failed; unhealthy
// means the follower keeps dying.
type Health struct {
	mu                  sync.RWMutex
	chainID             model.ChainID
	status              HealthStatus
	consecutiveFailures int
	lastSuccessAt       *time.Time
	lastFailureAt       *time.Time
	lastError           string
	unhealthyThreshold  int
}

func NewHealth(chainID model.ChainID) *Health {
	return &Health{
		chainID:            chainID,
		status:             HealthStatusUnknown,
		unhealthyThreshold: DefaultUnhealthyThreshold,
	}
}

// SetStatus overrides the status directly.
func (h *Health) SetStatus(status HealthStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
}

// RecordSuccess marks a completed stage cycle and resets the failure run.
func (h *Health) RecordSuccess() {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	h.consecutiveFailures = 0
	h.lastSuccessAt = &now
	h.lastError = ""
	h.status = HealthStatusHealthy
}

// RecordFailure counts a stage failure. Returns true when this failure
// crossed the unhealthy threshold.
func (h *Health) RecordFailure(err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := time.Now()
	h.consecutiveFailures++
	h.lastFailureAt = &now
	if err != nil {
		h.lastError = err.Error()
	}
	if h.consecutiveFailures >= h.unhealthyThreshold && h.status != HealthStatusUnhealthy {
		h.status = HealthStatusUnhealthy
		return true
	}
	return false
}

// Healthy reports whether the pipeline is in a serving state.
func (h *Health) Healthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status == HealthStatusHealthy || h.status == HealthStatusDegraded
}

// Snapshot returns a point-in-time view of the health state (JSON-safe).
func (h *Health) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthSnapshot{
		ChainID:             int64(h.chainID),
		Status:              string(h.status),
		ConsecutiveFailures: h.consecutiveFailures,
		LastSuccessAt:       h.lastSuccessAt,
		LastFailureAt:       h.lastFailureAt,
		LastError:           h.lastError,
	}
}

// HealthSnapshot is the wire form served by the ops endpoint.
type HealthSnapshot struct {
	ChainID             int64      `json:"chain_id"`
	Status              string     `json:"status"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time `json:"last_failure_at,omitempty"`
	LastError           string     `json:"last_error,omitempty"`
}
