package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain/evm"
)

func TestClassify_ExplicitMarkers(t *testing.T) {
	transient := Classify(Transient(errors.New("rpc timed out")))
	assert.Equal(t, ClassTransient, transient.Class)
	assert.Equal(t, "explicit_transient", transient.Reason)

	terminal := Classify(Terminal(errors.New("invalid params")))
	assert.Equal(t, ClassTerminal, terminal.Class)
	assert.Equal(t, "explicit_terminal", terminal.Reason)
}

func TestClassify_RepresentativeRuntimeErrors(t *testing.T) {
	testCases := []struct {
		name          string
		err           error
		expectedClass Class
	}{
		{
			name:          "grpc unavailable transient",
			err:           status.Error(codes.Unavailable, "otlp collector unavailable"),
			expectedClass: ClassTransient,
		},
		{
			name:          "context deadline transient",
			err:           context.DeadlineExceeded,
			expectedClass: ClassTransient,
		},
		{
			name:          "context canceled terminal",
			err:           context.Canceled,
			expectedClass: ClassTerminal,
		},
		{
			name:          "rpc internal error transient",
			err:           &evm.RPCError{Code: -32603, Message: "internal error"},
			expectedClass: ClassTransient,
		},
		{
			name:          "rpc limit exceeded transient",
			err:           &evm.RPCError{Code: -32005, Message: "limit exceeded"},
			expectedClass: ClassTransient,
		},
		{
			name:          "rpc server range transient",
			err:           &evm.RPCError{Code: -32042, Message: "header not found"},
			expectedClass: ClassTransient,
		},
		{
			name:          "rpc invalid params terminal",
			err:           &evm.RPCError{Code: -32602, Message: "invalid params"},
			expectedClass: ClassTerminal,
		},
		{
			name:          "wrapped rpc error still classified",
			err:           errors.Join(errors.New("eth_getLogs"), &evm.RPCError{Code: -32005, Message: "limit exceeded"}),
			expectedClass: ClassTransient,
		},
		{
			name:          "unknown event name terminal",
			err:           errors.New("decode log: unknown event name for topic 0xdeadbeef"),
			expectedClass: ClassTerminal,
		},
		{
			name:          "postgres deadlock transient",
			err:           errors.New("pq: deadlock detected"),
			expectedClass: ClassTransient,
		},
		{
			name:          "connection refused transient",
			err:           errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"),
			expectedClass: ClassTransient,
		},
		{
			name:          "http 429 transient",
			err:           errors.New("rpc call failed: http status 429"),
			expectedClass: ClassTransient,
		},
		{
			name:          "execution reverted terminal",
			err:           errors.New("execution reverted: STF"),
			expectedClass: ClassTerminal,
		},
		{
			name:          "unknown defaults terminal",
			err:           errors.New("unexpected failure"),
			expectedClass: ClassTerminal,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			decision := Classify(tc.err)
			assert.Equal(t, tc.expectedClass, decision.Class)
		})
	}
}

func TestClassify_TerminalTokensWinOverTransientTokens(t *testing.T) {
	// "invalid params" must dominate even when the message also carries a
	// transient-looking token.
	decision := Classify(errors.New("invalid params while retrying after timeout"))
	assert.Equal(t, ClassTerminal, decision.Class)
}

func TestDo_StopsOnTerminalError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultConfig(), nil, "op", func(context.Context) error {
		calls++
		return Terminal(errors.New("bad payload"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	cfg := Config{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}

	calls := 0
	err := Do(context.Background(), cfg, nil, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	cfg := Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}

	calls := 0
	err := Do(context.Background(), cfg, nil, "op", func(context.Context) error {
		calls++
		return Transient(errors.New("still flaky"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "retries exhausted")
}

func TestDo_HonorsContextCancellationDuringBackoff(t *testing.T) {
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
		MaxDelay:     time.Hour,
		Multiplier:   2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, nil, "op", func(context.Context) error {
		return Transient(errors.New("flaky"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDelayFor_GrowsAndCaps(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 100*time.Millisecond, DelayFor(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, DelayFor(cfg, 2))
	assert.Equal(t, 400*time.Millisecond, DelayFor(cfg, 3))
	assert.Equal(t, time.Second, DelayFor(cfg, 10))
}

func TestDelayFor_JitterStaysWithinBounds(t *testing.T) {
	cfg := Config{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}

	for i := 0; i < 100; i++ {
		delay := DelayFor(cfg, 2)
		assert.GreaterOrEqual(t, delay, 170*time.Millisecond)
		assert.LessOrEqual(t, delay, 230*time.Millisecond)
	}
}
