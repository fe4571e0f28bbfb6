package reducer

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

// nopDriver backs a database/sql pool with do-nothing connections so the
// reducer can run its transaction protocol against in-memory repositories.
type nopDriver struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

type nopConn struct{}

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (nopConn) Close() error                        { return nil }
func (nopConn) Begin() (driver.Tx, error)           { return nopTx{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

var registerNopDriver sync.Once

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	registerNopDriver.Do(func() { sql.Register("reducer-nop", nopDriver{}) })
	db, err := sql.Open("reducer-nop", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// failBeginner refuses to open transactions.
type failBeginner struct{ err error }

func (f failBeginner) BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error) {
	return nil, f.err
}

type eventKey struct {
	chainID  model.ChainID
	txHash   string
	logIndex int64
}

type swapKey struct {
	eventKey
	swapIndex int
}

type dailyKey struct {
	chainID model.ChainID
	day     time.Time
}

// memState holds in-memory tables mirroring the repository SQL contracts,
// which the postgres integration suite pins against a real database.
type memState struct {
	mu         sync.Mutex
	users      map[string]*model.User
	strategies map[model.StrategyKey]*model.Strategy
	rebalances map[eventKey]*model.Rebalance
	swaps      map[swapKey]*model.Swap
	system     map[eventKey]*model.SystemEvent
	daily      map[dailyKey]*model.DailyStats

	failNext error // returned by the next repository call, then cleared
}

func newMemState() *memState {
	return &memState{
		users:      make(map[string]*model.User),
		strategies: make(map[model.StrategyKey]*model.Strategy),
		rebalances: make(map[eventKey]*model.Rebalance),
		swaps:      make(map[swapKey]*model.Swap),
		system:     make(map[eventKey]*model.SystemEvent),
		daily:      make(map[dailyKey]*model.DailyStats),
	}
}

func (m *memState) repos() Repos {
	return Repos{
		Users:        memUsers{m},
		Strategies:   memStrategies{m},
		Rebalances:   memRebalances{m},
		Swaps:        memSwaps{m},
		SystemEvents: memSystemEvents{m},
		DailyStats:   memDaily{m},
	}
}

func (m *memState) takeFault() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func addNumeric(a, b string) (string, error) {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return "", fmt.Errorf("malformed numeric %q", a)
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return "", fmt.Errorf("malformed numeric %q", b)
	}
	return new(big.Int).Add(x, y).String(), nil
}

type memUsers struct{ *memState }

func (m memUsers) EnsureTx(_ context.Context, _ *sql.Tx, address string, activeAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	u, ok := m.users[address]
	if !ok {
		m.users[address] = &model.User{
			Address:       address,
			TotalGasSpent: "0",
			FirstSeenAt:   activeAt,
			LastActiveAt:  activeAt,
		}
		return nil
	}
	if activeAt.Before(u.FirstSeenAt) {
		u.FirstSeenAt = activeAt
	}
	if activeAt.After(u.LastActiveAt) {
		u.LastActiveAt = activeAt
	}
	return nil
}

func (m memUsers) AddStrategyDeltaTx(_ context.Context, _ *sql.Tx, address string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	if u, ok := m.users[address]; ok {
		u.StrategyCount = max(0, u.StrategyCount+delta)
	}
	return nil
}

func (m memUsers) RecordRebalanceTx(_ context.Context, _ *sql.Tx, address string, gasSpent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	u, ok := m.users[address]
	if !ok {
		return nil
	}
	total, err := addNumeric(u.TotalGasSpent, gasSpent)
	if err != nil {
		return err
	}
	u.TotalRebalances++
	u.TotalGasSpent = total
	return nil
}

func (m memUsers) AddGasSpentTx(_ context.Context, _ *sql.Tx, address string, gasSpent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	u, ok := m.users[address]
	if !ok {
		return nil
	}
	total, err := addNumeric(u.TotalGasSpent, gasSpent)
	if err != nil {
		return err
	}
	u.TotalGasSpent = total
	return nil
}

func (m memUsers) Get(_ context.Context, address string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[address]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m memUsers) List(_ context.Context, limit, offset int) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

type memStrategies struct{ *memState }

func (m memStrategies) CreateTx(_ context.Context, _ *sql.Tx, s *model.Strategy) (store.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return store.UpsertResult{}, err
	}
	key := s.Key()
	if _, ok := m.strategies[key]; ok {
		return store.UpsertResult{Inserted: false}, nil
	}
	cp := *s
	cp.IsActive = true
	cp.IsPaused = false
	cp.TotalRebalances = 0
	cp.TotalSwaps = 0
	cp.TotalVolume = "0"
	cp.AvgDriftBps = 0
	cp.DeletedAt = nil
	m.strategies[key] = &cp
	return store.UpsertResult{Inserted: true}, nil
}

func (m memStrategies) GetTx(_ context.Context, _ *sql.Tx, key model.StrategyKey) (*model.Strategy, error) {
	return m.get(key)
}

func (m memStrategies) Get(_ context.Context, key model.StrategyKey) (*model.Strategy, error) {
	return m.get(key)
}

func (m memStrategies) get(key model.StrategyKey) (*model.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.strategies[key]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m memStrategies) UpdateConfigTx(_ context.Context, _ *sql.Tx, key model.StrategyKey, tokens []string, weightsBps []int64, intervalSeconds int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return false, err
	}
	s, ok := m.strategies[key]
	if !ok || s.DeletedAt != nil {
		return false, nil
	}
	s.Tokens = tokens
	s.WeightsBps = weightsBps
	s.RebalanceIntervalSecond = intervalSeconds
	return true, nil
}

func (m memStrategies) SetPausedTx(_ context.Context, _ *sql.Tx, key model.StrategyKey, paused bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return false, err
	}
	s, ok := m.strategies[key]
	if !ok || s.DeletedAt != nil {
		return false, nil
	}
	s.IsPaused = paused
	return true, nil
}

func (m memStrategies) SoftDeleteTx(_ context.Context, _ *sql.Tx, key model.StrategyKey, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return false, err
	}
	s, ok := m.strategies[key]
	if !ok || s.DeletedAt != nil {
		return false, nil
	}
	s.IsActive = false
	s.IsPaused = false
	deletedAt := at
	s.DeletedAt = &deletedAt
	return true, nil
}

func (m memStrategies) ApplyRebalanceTx(_ context.Context, _ *sql.Tx, key model.StrategyKey, driftBps int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return false, err
	}
	s, ok := m.strategies[key]
	if !ok {
		return false, nil
	}
	n := float64(s.TotalRebalances)
	s.AvgDriftBps = (s.AvgDriftBps*n + float64(driftBps)) / (n + 1)
	s.TotalRebalances++
	return true, nil
}

func (m memStrategies) ApplySwapTx(_ context.Context, _ *sql.Tx, key model.StrategyKey, volume string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return false, err
	}
	s, ok := m.strategies[key]
	if !ok {
		return false, nil
	}
	total, err := addNumeric(s.TotalVolume, volume)
	if err != nil {
		return false, err
	}
	s.TotalSwaps++
	s.TotalVolume = total
	return true, nil
}

func (m memStrategies) List(_ context.Context, filter store.StrategyFilter, limit, offset int) ([]model.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Strategy
	for _, s := range m.strategies {
		if filter.ChainID != nil && s.ChainID != *filter.ChainID {
			continue
		}
		if filter.UserAddress != nil && s.UserAddress != *filter.UserAddress {
			continue
		}
		if filter.OnlyActive && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

type memRebalances struct{ *memState }

func (m memRebalances) CreateTx(_ context.Context, _ *sql.Tx, rb *model.Rebalance) (store.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return store.UpsertResult{}, err
	}
	key := eventKey{rb.ChainID, rb.TxHash, rb.LogIndex}
	if _, ok := m.rebalances[key]; ok {
		return store.UpsertResult{Inserted: false}, nil
	}
	cp := *rb
	cp.SwapCount = 0
	cp.SwapVolume = "0"
	m.rebalances[key] = &cp
	return store.UpsertResult{Inserted: true}, nil
}

func (m memRebalances) FindParentTx(_ context.Context, _ *sql.Tx, chainID model.ChainID, txHash string, swapLogIndex int64) (*model.Rebalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var parent *model.Rebalance
	for _, rb := range m.rebalances {
		if rb.ChainID != chainID || rb.TxHash != txHash || rb.LogIndex >= swapLogIndex {
			continue
		}
		if parent == nil || rb.LogIndex > parent.LogIndex {
			parent = rb
		}
	}
	if parent == nil {
		return nil, nil
	}
	cp := *parent
	return &cp, nil
}

func (m memRebalances) AttachSwapTx(_ context.Context, _ *sql.Tx, chainID model.ChainID, txHash string, logIndex int64, volume string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	rb, ok := m.rebalances[eventKey{chainID, txHash, logIndex}]
	if !ok {
		return nil
	}
	total, err := addNumeric(rb.SwapVolume, volume)
	if err != nil {
		return err
	}
	rb.SwapCount++
	rb.SwapVolume = total
	return nil
}

func (m memRebalances) Get(_ context.Context, chainID model.ChainID, txHash string, logIndex int64) (*model.Rebalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rb, ok := m.rebalances[eventKey{chainID, txHash, logIndex}]
	if !ok {
		return nil, nil
	}
	cp := *rb
	return &cp, nil
}

func (m memRebalances) ListByStrategy(_ context.Context, key model.StrategyKey, limit, offset int) ([]model.Rebalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Rebalance
	for _, rb := range m.rebalances {
		if rb.ChainID == key.ChainID && rb.UserAddress == key.UserAddress && rb.StrategyID == key.StrategyID {
			out = append(out, *rb)
		}
	}
	return out, nil
}

type memSwaps struct{ *memState }

func (m memSwaps) CreateTx(_ context.Context, _ *sql.Tx, s *model.Swap) (store.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return store.UpsertResult{}, err
	}
	key := swapKey{eventKey{s.ChainID, s.TxHash, s.LogIndex}, s.SwapIndex}
	if _, ok := m.swaps[key]; ok {
		return store.UpsertResult{Inserted: false}, nil
	}
	cp := *s
	m.swaps[key] = &cp
	return store.UpsertResult{Inserted: true}, nil
}

func (m memSwaps) ListByRebalance(_ context.Context, chainID model.ChainID, rebalanceTxHash string, rebalanceLogIndex int64) ([]model.Swap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Swap
	for _, s := range m.swaps {
		if s.ChainID == chainID && s.RebalanceTxHash == rebalanceTxHash && s.RebalanceLogIndex == rebalanceLogIndex {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memSystemEvents struct{ *memState }

func (m memSystemEvents) CreateTx(_ context.Context, _ *sql.Tx, e *model.SystemEvent) (store.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return store.UpsertResult{}, err
	}
	key := eventKey{e.ChainID, e.TxHash, e.LogIndex}
	if _, ok := m.system[key]; ok {
		return store.UpsertResult{Inserted: false}, nil
	}
	cp := *e
	m.system[key] = &cp
	return store.UpsertResult{Inserted: true}, nil
}

func (m memSystemEvents) ListRecent(_ context.Context, chainID model.ChainID, limit int) ([]model.SystemEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SystemEvent
	for _, e := range m.system {
		if e.ChainID == chainID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type memDaily struct{ *memState }

func (m memDaily) ApplyRebalanceTx(_ context.Context, _ *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string, driftBps int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	ds := m.dayRow(chainID, day)
	total, err := addNumeric(ds.GasUsed, gasUsed)
	if err != nil {
		return err
	}
	n := float64(ds.DriftSamples)
	ds.AvgDriftBps = (ds.AvgDriftBps*n + float64(driftBps)) / (n + 1)
	ds.DriftSamples++
	ds.RebalanceCount++
	ds.GasUsed = total
	return nil
}

func (m memDaily) ApplyFailedRebalanceTx(_ context.Context, _ *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	ds := m.dayRow(chainID, day)
	total, err := addNumeric(ds.GasUsed, gasUsed)
	if err != nil {
		return err
	}
	ds.FailedRebalanceCount++
	ds.GasUsed = total
	return nil
}

func (m memDaily) ApplySwapTx(_ context.Context, _ *sql.Tx, chainID model.ChainID, day time.Time, volume string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFault(); err != nil {
		return err
	}
	ds := m.dayRow(chainID, day)
	total, err := addNumeric(ds.Volume, volume)
	if err != nil {
		return err
	}
	ds.SwapCount++
	ds.Volume = total
	return nil
}

// dayRow returns the existing day row or seeds a zeroed one, the upsert
// half of the ON CONFLICT statements. Callers hold the lock.
func (m memDaily) dayRow(chainID model.ChainID, day time.Time) *model.DailyStats {
	key := dailyKey{chainID, day}
	ds, ok := m.daily[key]
	if !ok {
		ds = &model.DailyStats{ChainID: chainID, Day: day, Volume: "0", GasUsed: "0"}
		m.daily[key] = ds
	}
	return ds
}

func (m memDaily) Get(_ context.Context, chainID model.ChainID, day time.Time) (*model.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ds, ok := m.daily[dailyKey{chainID, day}]
	if !ok {
		return nil, nil
	}
	cp := *ds
	return &cp, nil
}

func (m memDaily) Range(_ context.Context, chainID model.ChainID, from, to time.Time) ([]model.DailyStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DailyStats
	for _, ds := range m.daily {
		if ds.ChainID == chainID && !ds.Day.Before(from) && !ds.Day.After(to) {
			out = append(out, *ds)
		}
	}
	return out, nil
}
