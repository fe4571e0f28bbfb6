package circuitbreaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frozenClock(b *Breaker) (advance func(time.Duration)) {
	now := time.Now()
	b.nowFn = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestNew_Defaults(t *testing.T) {
	b := New(Config{})
	assert.Equal(t, StateClosed, b.GetState())
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 2, b.successThreshold)
	assert.Equal(t, 1, b.maxProbes)
	assert.Equal(t, 30*time.Second, b.openTimeout)
}

func TestNew_CustomConfig(t *testing.T) {
	b := New(Config{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		MaxProbes:        2,
		OpenTimeout:      10 * time.Second,
	})
	assert.Equal(t, 3, b.failureThreshold)
	assert.Equal(t, 1, b.successThreshold)
	assert.Equal(t, 2, b.maxProbes)
	assert.Equal(t, 10*time.Second, b.openTimeout)
}

func TestBreaker_ClosedAllowsRequests(t *testing.T) {
	b := New(Config{FailureThreshold: 3})
	require.NoError(t, b.Allow())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, OpenTimeout: time.Hour})

	b.RecordFailure()
	b.RecordFailure()
	require.NoError(t, b.Allow(), "should still be closed below threshold")

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.GetState())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(Config{FailureThreshold: 3, OpenTimeout: time.Hour})

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	// Only 2 failures since last success, should still be closed
	require.NoError(t, b.Allow())
	assert.Equal(t, StateClosed, b.GetState())
}

func TestBreaker_TransitionsToHalfOpenAfterTimeout(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: time.Minute})
	advance := frozenClock(b)

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.GetState())

	advance(2 * time.Minute)

	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.state)
}

func TestBreaker_HalfOpenLimitsProbes(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Minute})
	advance := frozenClock(b)

	b.RecordFailure()
	advance(2 * time.Minute)

	require.NoError(t, b.Allow(), "first probe admitted")
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "second concurrent probe rejected")

	b.RecordSuccess()
	require.NoError(t, b.Allow(), "slot freed after probe outcome recorded")
}

func TestBreaker_HalfOpenClosesAfterSuccessThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Minute})
	advance := frozenClock(b)

	b.RecordFailure()
	advance(2 * time.Minute)
	require.NoError(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, StateHalfOpen, b.GetState(), "not yet at success threshold")

	require.NoError(t, b.Allow())
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.GetState(), "should close after success threshold")
}

func TestBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: time.Minute})
	advance := frozenClock(b)

	b.RecordFailure()
	advance(2 * time.Minute)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.GetState(), "should reopen on failure in half-open")
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "reopen restarts the timeout")
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	var transitions []struct{ from, to State }
	b := New(Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		OpenTimeout:      time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, struct{ from, to State }{from, to})
		},
	})
	advance := frozenClock(b)

	// closed -> open
	b.RecordFailure()
	b.RecordFailure()
	require.Len(t, transitions, 1)
	assert.Equal(t, StateClosed, transitions[0].from)
	assert.Equal(t, StateOpen, transitions[0].to)

	// open -> half-open
	advance(2 * time.Minute)
	_ = b.Allow()
	require.Len(t, transitions, 2)
	assert.Equal(t, StateOpen, transitions[1].from)
	assert.Equal(t, StateHalfOpen, transitions[1].to)

	// half-open -> closed
	b.RecordSuccess()
	require.Len(t, transitions, 3)
	assert.Equal(t, StateHalfOpen, transitions[2].from)
	assert.Equal(t, StateClosed, transitions[2].to)
}

func TestBreaker_GetStateTransitionsOpenToHalfOpen(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: time.Minute})
	advance := frozenClock(b)

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.state) // direct field, not GetState

	advance(2 * time.Minute)

	assert.Equal(t, StateHalfOpen, b.GetState())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestBreaker_OpenDoesNotAllowBeforeTimeout(t *testing.T) {
	b := New(Config{FailureThreshold: 1, OpenTimeout: time.Hour})

	b.RecordFailure()
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_ConcurrentRecordSuccessFailure(t *testing.T) {
	// Verifies there are no race conditions when RecordSuccess,
	// RecordFailure, Allow, and GetState run concurrently.
	// Run with: go test -race ./internal/circuitbreaker/
	b := New(Config{
		FailureThreshold: 10,
		SuccessThreshold: 5,
		OpenTimeout:      time.Millisecond,
	})

	const goroutines = 20
	const iterations = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				switch id % 4 {
				case 0:
					b.RecordSuccess()
				case 1:
					b.RecordFailure()
				case 2:
					_ = b.Allow()
				case 3:
					_ = b.GetState()
				}
			}
		}(i)
	}
	wg.Wait()

	state := b.GetState()
	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, state)
}
