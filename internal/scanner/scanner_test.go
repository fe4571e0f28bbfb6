package scanner

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
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

const testChain = model.ChainMonadTestnet

var testGenesis = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func i64(v int64) *int64 {
	return &v
}

type fakeAdapter struct {
	chainID model.ChainID
	head    int64

	mu         sync.Mutex
	logs       []chain.Log
	ranges     [][2]int64
	getLogsErr map[int64]error // keyed by fromBlock, consumed once
	decodeErr  map[string]error
	warmed     [][]int64
}

func newFakeAdapter(head int64) *fakeAdapter {
	return &fakeAdapter{
		chainID:    testChain,
		head:       head,
		getLogsErr: map[int64]error{},
		decodeErr:  map[string]error{},
	}
}

func (f *fakeAdapter) addLog(block int64, txHash string, logIndex int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, chain.Log{
		Address:     "0xregistry",
		Topics:      []string{"0xtopic"},
		BlockNumber: block,
		TxHash:      txHash,
		LogIndex:    logIndex,
	})
}

func (f *fakeAdapter) failGetLogsAt(fromBlock int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getLogsErr[fromBlock] = err
}

func (f *fakeAdapter) failDecode(txHash string, logIndex int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decodeErr[fmt.Sprintf("%s:%d", txHash, logIndex)] = err
}

func (f *fakeAdapter) scannedRanges() [][2]int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]int64, len(f.ranges))
	copy(out, f.ranges)
	return out
}

func (f *fakeAdapter) ChainID() model.ChainID {
	return f.chainID
}

func (f *fakeAdapter) GetLatestBlock(ctx context.Context) (int64, error) {
	return f.head, nil
}

func (f *fakeAdapter) GetLogs(ctx context.Context, fromBlock, toBlock int64) ([]chain.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.getLogsErr[fromBlock]; ok {
		delete(f.getLogsErr, fromBlock)
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
	return testGenesis.Add(time.Duration(blockNumber) * time.Second), nil
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
		ChainID:     f.chainID,
		Name:        event.StrategyCreated,
		BlockNumber: lg.BlockNumber,
		BlockTime:   testGenesis.Add(time.Duration(lg.BlockNumber) * time.Second),
		TxHash:      lg.TxHash,
		LogIndex:    lg.LogIndex,
		Data:        json.RawMessage(`{"strategy_id":1}`),
	}, nil
}

func (f *fakeAdapter) WarmBlockTimes(ctx context.Context, blockNumbers []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warmed = append(f.warmed, blockNumbers)
	return nil
}

type fakeBackfills struct {
	mu           sync.Mutex
	rows         map[model.ChainID]*model.BackfillProgress
	onSetIndexed func(block int64)
}

func newFakeBackfills() *fakeBackfills {
	return &fakeBackfills{rows: map[model.ChainID]*model.BackfillProgress{}}
}

func (f *fakeBackfills) Ensure(ctx context.Context, chainID model.ChainID, deploymentBlock int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[chainID]; ok {
		return nil
	}
	f.rows[chainID] = &model.BackfillProgress{
		ChainID:            chainID,
		DeploymentBlock:    deploymentBlock,
		LatestIndexedBlock: deploymentBlock - 1,
	}
	return nil
}

func (f *fakeBackfills) Get(ctx context.Context, chainID model.ChainID) (*model.BackfillProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[chainID]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeBackfills) ClaimRun(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[chainID]
	if !ok {
		return fmt.Errorf("no progress row for chain %d", chainID)
	}
	if row.IsRunning && row.LeaseExpiresAt != nil && row.LeaseExpiresAt.After(time.Now()) {
		return store.ErrAlreadyRunning
	}
	expires := time.Now().Add(leaseFor)
	row.IsRunning = true
	row.LeaseOwner = &owner
	row.LeaseExpiresAt = &expires
	return nil
}

func (f *fakeBackfills) ReleaseRun(ctx context.Context, chainID model.ChainID, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[chainID]
	if !ok || row.LeaseOwner == nil || *row.LeaseOwner != owner {
		return nil
	}
	row.IsRunning = false
	row.LeaseOwner = nil
	row.LeaseExpiresAt = nil
	return nil
}

func (f *fakeBackfills) ExtendLease(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration, currentBlock int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[chainID]
	if !ok || !row.IsRunning || row.LeaseOwner == nil || *row.LeaseOwner != owner {
		return store.ErrLeaseLost
	}
	expires := time.Now().Add(leaseFor)
	row.LeaseExpiresAt = &expires
	row.CurrentBlock = currentBlock
	return nil
}

func (f *fakeBackfills) SetIndexed(ctx context.Context, chainID model.ChainID, latestIndexedBlock int64) error {
	f.mu.Lock()
	row, ok := f.rows[chainID]
	if ok && latestIndexedBlock > row.LatestIndexedBlock {
		row.LatestIndexedBlock = latestIndexedBlock
	}
	hook := f.onSetIndexed
	f.mu.Unlock()
	if hook != nil {
		hook(latestIndexedBlock)
	}
	return nil
}

func (f *fakeBackfills) SetPaused(ctx context.Context, chainID model.ChainID, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[chainID]
	if !ok {
		return fmt.Errorf("no progress row for chain %d", chainID)
	}
	row.IsPaused = paused
	return nil
}

func (f *fakeBackfills) watermark(t *testing.T) int64 {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[testChain]
	require.True(t, ok, "progress row missing")
	return row.LatestIndexedBlock
}

func newTestScanner(t *testing.T, ad *fakeAdapter, fb *fakeBackfills, q *queue.Memory, deployment int64) *Scanner {
	t.Helper()
	cfg := Config{
		BatchBlocks: 1000,
		BatchEvery:  time.Millisecond,
		LeaseFor:    time.Minute,
	}
	return New(ad, q, fb, deployment, cfg, testLogger())
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

func TestRun_ScansInBatchesAndEnqueues(t *testing.T) {
	ad := newFakeAdapter(2999)
	ad.addLog(5, "0xaaa", 0)
	ad.addLog(1500, "0xbbb", 3)
	fb := newFakeBackfills()
	q := queue.NewMemory(64)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.EventsProcessed)
	assert.Equal(t, int64(3000), res.BlocksScanned)

	assert.Equal(t, [][2]int64{{0, 999}, {1000, 1999}, {2000, 2999}}, ad.scannedRanges())
	assert.Equal(t, int64(2999), fb.watermark(t))

	events := drainEvents(t, q)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, model.SourceBackfill, ev.Source)
		assert.Equal(t, testChain, ev.ChainID)
	}
	assert.Equal(t, "0xaaa", events[0].TxHash)
	assert.Equal(t, "0xbbb", events[1].TxHash)

	// The lease is released once the run finishes.
	row, err := fb.Get(context.Background(), testChain)
	require.NoError(t, err)
	assert.False(t, row.IsRunning)
}

func TestRun_StartsAtDeploymentBlock(t *testing.T) {
	ad := newFakeAdapter(1099)
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 100)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
	assert.Equal(t, [][2]int64{{100, 1099}}, ad.scannedRanges())
}

func TestRun_ExplicitRangeOverridesDefaults(t *testing.T) {
	ad := newFakeAdapter(9999)
	ad.addLog(700, "0xccc", 1)
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{From: i64(500), To: i64(1499)})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
	assert.Equal(t, [][2]int64{{500, 1499}}, ad.scannedRanges())
	assert.Equal(t, int64(1499), fb.watermark(t))
}

func TestRun_AlreadyCaughtUp(t *testing.T) {
	ad := newFakeAdapter(499)
	fb := newFakeBackfills()
	require.NoError(t, fb.Ensure(context.Background(), testChain, 0))
	require.NoError(t, fb.SetIndexed(context.Background(), testChain, 499))
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, ad.scannedRanges())
}

func TestRun_SecondConcurrentRunRejected(t *testing.T) {
	ad := newFakeAdapter(999)
	fb := newFakeBackfills()
	require.NoError(t, fb.Ensure(context.Background(), testChain, 0))
	require.NoError(t, fb.ClaimRun(context.Background(), testChain, "other-scanner", time.Minute))
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	_, err := s.Run(context.Background(), Range{})
	require.ErrorIs(t, err, store.ErrAlreadyRunning)
	assert.Empty(t, ad.scannedRanges())
	assert.Equal(t, 0, q.Len())
}

func TestRun_TakesOverExpiredLease(t *testing.T) {
	ad := newFakeAdapter(999)
	fb := newFakeBackfills()
	require.NoError(t, fb.Ensure(context.Background(), testChain, 0))
	require.NoError(t, fb.ClaimRun(context.Background(), testChain, "crashed-scanner", -time.Minute))
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
}

func TestRun_ResumesAfterFailureWithoutRescanning(t *testing.T) {
	ad := newFakeAdapter(1999)
	ad.addLog(50, "0xaaa", 0)
	ad.addLog(1050, "0xbbb", 0)
	ad.failGetLogsAt(1000, errors.New("rpc timeout"))
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.Error(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
	assert.Equal(t, int64(999), fb.watermark(t), "watermark holds at the last complete batch")

	// The next run continues from the watermark; the first batch is not
	// scanned again.
	res, err = s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
	assert.Equal(t, [][2]int64{{0, 999}, {1000, 1999}}, ad.scannedRanges())
	assert.Equal(t, int64(1999), fb.watermark(t))

	events := drainEvents(t, q)
	require.Len(t, events, 2)
	assert.Equal(t, "0xaaa", events[0].TxHash)
	assert.Equal(t, "0xbbb", events[1].TxHash)
}

func TestRun_PauseStopsBeforeNextBatch(t *testing.T) {
	ad := newFakeAdapter(2999)
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	fb.onSetIndexed = func(block int64) {
		if block == 999 {
			require.NoError(t, s.Pause(context.Background()))
		}
	}

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.BlocksScanned)
	assert.Equal(t, [][2]int64{{0, 999}}, ad.scannedRanges())
	assert.Equal(t, int64(999), fb.watermark(t))

	fb.onSetIndexed = nil
	res, err = s.Resume(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2000), res.BlocksScanned)
	assert.Equal(t, int64(2999), fb.watermark(t))
}

func TestRun_UndecodableLogIsSkipped(t *testing.T) {
	ad := newFakeAdapter(99)
	ad.addLog(10, "0xaaa", 0)
	ad.addLog(20, "0xbbb", 1)
	ad.failDecode("0xaaa", 0, errors.New("unknown event name for topic 0xdead"))
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.EventsProcessed)

	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xbbb", events[0].TxHash)
	assert.Equal(t, int64(99), fb.watermark(t))
}

func TestRun_TransientDecodeFaultAbortsRun(t *testing.T) {
	ad := newFakeAdapter(99)
	ad.addLog(10, "0xaaa", 0)
	ad.failDecode("0xaaa", 0, retry.Transient(errors.New("receipt for 0xaaa not yet available")))
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	_, err := s.Run(context.Background(), Range{})
	require.Error(t, err)
	assert.Equal(t, int64(-1), fb.watermark(t), "failed batch never advances the watermark")
	assert.Equal(t, 0, q.Len())
}

func TestRun_EnqueueFailureAbortsRun(t *testing.T) {
	ad := newFakeAdapter(99)
	ad.addLog(10, "0xaaa", 0)
	ad.addLog(20, "0xbbb", 1)
	fb := newFakeBackfills()
	q := queue.NewMemory(1)
	s := newTestScanner(t, ad, fb, q, 0)

	_, err := s.Run(context.Background(), Range{})
	require.Error(t, err)
	assert.ErrorIs(t, err, queue.ErrMemoryQueueFull)
	assert.Equal(t, int64(-1), fb.watermark(t))
}

func TestRun_SkipsRemovedLogs(t *testing.T) {
	ad := newFakeAdapter(99)
	ad.addLog(10, "0xaaa", 0)
	ad.mu.Lock()
	ad.logs = append(ad.logs, chain.Log{BlockNumber: 15, TxHash: "0xreorged", LogIndex: 2, Removed: true})
	ad.mu.Unlock()
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	res, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.EventsProcessed)

	events := drainEvents(t, q)
	require.Len(t, events, 1)
	assert.Equal(t, "0xaaa", events[0].TxHash)
}

func TestRun_WarmsBlockTimesPerBatch(t *testing.T) {
	ad := newFakeAdapter(99)
	ad.addLog(10, "0xaaa", 0)
	ad.addLog(20, "0xbbb", 1)
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	_, err := s.Run(context.Background(), Range{})
	require.NoError(t, err)

	ad.mu.Lock()
	defer ad.mu.Unlock()
	require.Len(t, ad.warmed, 1)
	assert.Equal(t, []int64{10, 20}, ad.warmed[0])
}

func TestRun_CancellationStopsBetweenBatches(t *testing.T) {
	ad := newFakeAdapter(4999)
	fb := newFakeBackfills()
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	ctx, cancel := context.WithCancel(context.Background())
	fb.onSetIndexed = func(block int64) {
		if block == 1999 {
			cancel()
		}
	}

	res, err := s.Run(ctx, Range{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(2000), res.BlocksScanned)
	assert.Equal(t, int64(1999), fb.watermark(t))

	// The lease is still released so a later run can claim it.
	_, err = s.Run(context.Background(), Range{})
	require.NoError(t, err)
	assert.Equal(t, int64(4999), fb.watermark(t))
}

func TestProgress_ReportsRemainingBlocks(t *testing.T) {
	ad := newFakeAdapter(2999)
	fb := newFakeBackfills()
	require.NoError(t, fb.Ensure(context.Background(), testChain, 0))
	require.NoError(t, fb.SetIndexed(context.Background(), testChain, 999))
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	p, err := s.Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testChain, p.ChainID)
	assert.False(t, p.IsBackfilling)
	assert.False(t, p.IsPaused)
	assert.Equal(t, int64(999), p.LatestIndexedBlock)
	assert.Equal(t, int64(2000), p.RemainingBlocks)
}

func TestProgress_CaughtUpReportsZeroRemaining(t *testing.T) {
	ad := newFakeAdapter(999)
	fb := newFakeBackfills()
	require.NoError(t, fb.Ensure(context.Background(), testChain, 0))
	require.NoError(t, fb.SetIndexed(context.Background(), testChain, 999))
	q := queue.NewMemory(16)
	s := newTestScanner(t, ad, fb, q, 0)

	p, err := s.Progress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.RemainingBlocks)
}
