package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/queue"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAdapter struct {
	mu         sync.Mutex
	head       int64
	logs       []chain.Log
	ranges     [][2]int64
	getLogsErr error // consumed once
	decodeErr  map[string]error
}

func newFakeAdapter(head int64) *fakeAdapter {
	return &fakeAdapter{head: head, decodeErr: map[string]error{}}
}

func (f *fakeAdapter) setHead(head int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.head = head
}

func (f *fakeAdapter) addLog(block int64, txHash string, logIndex int64, removed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, chain.Log{
		Address:     "0xregistry",
		BlockNumber: block,
		TxHash:      txHash,
		LogIndex:    logIndex,
		Removed:     removed,
	})
}

func (f *fakeAdapter) scannedRanges() [][2]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]int64, len(f.ranges))
	copy(out, f.ranges)
	return out
}

func (f *fakeAdapter) ChainID() model.ChainID {
	return model.ChainBaseSepolia
}

func (f *fakeAdapter) GetLatestBlock(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeAdapter) GetLogs(ctx context.Context, fromBlock, toBlock int64) ([]chain.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getLogsErr != nil {
		err := f.getLogsErr
		f.getLogsErr = nil
		return nil, err
	}
	f.ranges = append(f.ranges, [2]int64{fromBlock, toBlock})
	var out []chain.Log
	for _, lg := range f.logs {
		if lg.BlockNumber >= fromBlock && lg.BlockNumber <= toBlock {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (f *fakeAdapter) GetBlockTime(ctx context.Context, blockNumber int64) (time.Time, error) {
	return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC).Add(time.Duration(blockNumber) * time.Second), nil
}

func (f *fakeAdapter) GetTransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	return nil, nil
}

func (f *fakeAdapter) DecodeLog(ctx context.Context, lg chain.Log) (*event.RawEvent, error) {
	f.mu.Lock()
	err, faulted := f.decodeErr[fmt.Sprintf("%s:%d", lg.TxHash, lg.LogIndex)]
	f.mu.Unlock()
	if faulted {
		return nil, err
	}
	return &event.RawEvent{
		ChainID:     model.ChainBaseSepolia,
		Name:        event.RebalanceExecuted,
		BlockNumber: lg.BlockNumber,
		TxHash:      lg.TxHash,
		LogIndex:    lg.LogIndex,
		Data:        json.RawMessage(`{}`),
	}, nil
}

func newTestSubscriber(ad *fakeAdapter, q *queue.Memory) *Subscriber {
	return New(ad, q, Config{PollEvery: time.Millisecond, MaxBlocks: 1000}, testLogger())
}

func drainEvents(t *testing.T, q *queue.Memory) []event.RawEvent {
	t.Helper()
	var out []event.RawEvent
	err := q.Drain(context.Background(), func(ctx context.Context, ev event.RawEvent) error {
		out = append(out, ev)
		return nil
	})
	require.NoError(t, err)
	return out
}

func TestRun_FollowsHeadFromStartup(t *testing.T) {
	ad := newFakeAdapter(100)
	ad.addLog(50, "0xold", 0, false) // mined before startup, scanner territory
	ad.addLog(101, "0xnew1", 0, false)
	ad.addLog(102, "0xnew2", 1, false)
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// Let the subscriber observe the startup head before the chain advances.
	require.Eventually(t, func() bool { return s.LastDelivered() == 100 }, time.Second, time.Millisecond)
	ad.setHead(102)
	require.Eventually(t, func() bool { return q.Len() == 2 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	events := drainEvents(t, q)
	require.Len(t, events, 2)
	assert.Equal(t, "0xnew1", events[0].TxHash)
	assert.Equal(t, "0xnew2", events[1].TxHash)
	for _, ev := range events {
		assert.Equal(t, model.SourceLive, ev.Source)
	}
	for _, r := range ad.scannedRanges() {
		assert.GreaterOrEqual(t, r[0], int64(101), "blocks at or below the starting head are never fetched")
	}
}

func TestRunFrom_PicksUpFromHandedWatermark(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(101, "0xgap", 0, false) // above the handoff, below current head
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunFrom(ctx, 100) }()

	require.Eventually(t, func() bool { return q.Len() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xgap", events[0].TxHash)
	assert.Equal(t, model.SourceLive, events[0].Source)
}

func TestPoll_NoNewBlocksFetchesNothing(t *testing.T) {
	ad := newFakeAdapter(100)
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 100

	require.NoError(t, s.poll(context.Background()))
	assert.Empty(t, ad.scannedRanges())
	assert.Equal(t, int64(100), s.LastDelivered())
}

func TestPoll_CapsRangeAndCatchesUpAcrossPolls(t *testing.T) {
	ad := newFakeAdapter(5000)
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 0

	require.NoError(t, s.poll(context.Background()))
	assert.Equal(t, int64(1000), s.LastDelivered())

	require.NoError(t, s.poll(context.Background()))
	assert.Equal(t, int64(2000), s.LastDelivered())
	assert.Equal(t, [][2]int64{{1, 1000}, {1001, 2000}}, ad.scannedRanges())
}

func TestPoll_FailedRangeIsRepolled(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(105, "0xaaa", 0, false)
	ad.mu.Lock()
	ad.getLogsErr = errors.New("rpc timeout")
	ad.mu.Unlock()
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 100

	require.Error(t, s.poll(context.Background()))
	assert.Equal(t, int64(100), s.LastDelivered(), "failed poll holds the watermark")

	require.NoError(t, s.poll(context.Background()))
	assert.Equal(t, int64(110), s.LastDelivered())
	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xaaa", events[0].TxHash)
}

func TestPoll_UndecodableLogIsSkipped(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(105, "0xbad", 0, false)
	ad.addLog(106, "0xgood", 1, false)
	ad.decodeErr["0xbad:0"] = errors.New("unknown event name for topic 0xdead")
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 100

	require.NoError(t, s.poll(context.Background()))
	assert.Equal(t, int64(110), s.LastDelivered())
	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xgood", events[0].TxHash)
}

func TestPoll_TransientDecodeFaultHoldsWatermark(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(105, "0xaaa", 0, false)
	ad.decodeErr["0xaaa:0"] = retry.Transient(errors.New("receipt for 0xaaa not yet available"))
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 100

	require.Error(t, s.poll(context.Background()))
	assert.Equal(t, int64(100), s.LastDelivered())
	assert.Equal(t, 0, q.Len())

	// Once the receipt lands the same range replays cleanly.
	ad.mu.Lock()
	delete(ad.decodeErr, "0xaaa:0")
	ad.mu.Unlock()
	require.NoError(t, s.poll(context.Background()))
	assert.Equal(t, int64(110), s.LastDelivered())
	assert.Equal(t, 1, q.Len())
}

func TestPoll_RemovedLogIsSkipped(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(105, "0xreorged", 0, true)
	ad.addLog(106, "0xkept", 1, false)
	q := queue.NewMemory(16)
	s := newTestSubscriber(ad, q)
	s.last = 100

	require.NoError(t, s.poll(context.Background()))
	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xkept", events[0].TxHash)
}

func TestPoll_EnqueueFailureHoldsWatermark(t *testing.T) {
	ad := newFakeAdapter(110)
	ad.addLog(105, "0xaaa", 0, false)
	ad.addLog(106, "0xbbb", 1, false)
	q := queue.NewMemory(1)
	s := newTestSubscriber(ad, q)
	s.last = 100

	err := s.poll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, queue.ErrMemoryQueueFull)
	assert.Equal(t, int64(100), s.LastDelivered())
}
