package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

// ErrAlreadyRunning is returned by BackfillRepository.ClaimRun when another
// holder owns the chain's run lease.
var ErrAlreadyRunning = errors.New("backfill already running for chain")

// ErrLeaseLost is returned by lease-scoped updates when the caller no longer
// owns the chain's run lease.
var ErrLeaseLost = errors.New("backfill lease lost")

//go:generate mockgen -source=repository.go -destination=mocks/store_mock.go -package=mocks

// TxBeginner abstracts the ability to begin a database transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// UpsertResult describes the outcome of an idempotent create.
type UpsertResult struct {
	Inserted bool // First insertion of this key; false on replay.
}

// UserRepository provides access to user account rows.
//
// EnsureTx widens the first/last activity bounds and must be the first
// statement of any user-scoped reduction so concurrent handlers for the
// same user serialize on the row lock.
type UserRepository interface {
	EnsureTx(ctx context.Context, tx *sql.Tx, address string, activeAt time.Time) error
	AddStrategyDeltaTx(ctx context.Context, tx *sql.Tx, address string, delta int64) error
	RecordRebalanceTx(ctx context.Context, tx *sql.Tx, address string, gasSpent string) error
	AddGasSpentTx(ctx context.Context, tx *sql.Tx, address string, gasSpent string) error
	Get(ctx context.Context, address string) (*model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
}

// StrategyFilter narrows List results. Nil fields are not applied.
type StrategyFilter struct {
	ChainID     *model.ChainID
	UserAddress *string
	OnlyActive  bool
}

// StrategyRepository provides access to strategy rows.
type StrategyRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Strategy) (UpsertResult, error)
	GetTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey) (*model.Strategy, error)
	UpdateConfigTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, tokens []string, weightsBps []int64, intervalSeconds int64) (bool, error)
	SetPausedTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, paused bool) (bool, error)
	SoftDeleteTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, at time.Time) (bool, error)
	ApplyRebalanceTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, driftBps int64) (bool, error)
	ApplySwapTx(ctx context.Context, tx *sql.Tx, key model.StrategyKey, volume string) (bool, error)
	Get(ctx context.Context, key model.StrategyKey) (*model.Strategy, error)
	List(ctx context.Context, filter StrategyFilter, limit, offset int) ([]model.Strategy, error)
}

// RebalanceRepository provides access to rebalance execution rows.
type RebalanceRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, r *model.Rebalance) (UpsertResult, error)
	// FindParentTx resolves the attachment target for a swap: the rebalance
	// sharing the transaction hash with the highest log index strictly below
	// swapLogIndex. Returns nil when no such rebalance exists.
	FindParentTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, txHash string, swapLogIndex int64) (*model.Rebalance, error)
	AttachSwapTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, txHash string, logIndex int64, volume string) error
	Get(ctx context.Context, chainID model.ChainID, txHash string, logIndex int64) (*model.Rebalance, error)
	ListByStrategy(ctx context.Context, key model.StrategyKey, limit, offset int) ([]model.Rebalance, error)
}

// SwapRepository provides access to swap rows.
type SwapRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Swap) (UpsertResult, error)
	ListByRebalance(ctx context.Context, chainID model.ChainID, rebalanceTxHash string, rebalanceLogIndex int64) ([]model.Swap, error)
}

// SystemEventRepository provides access to platform-level event rows.
type SystemEventRepository interface {
	CreateTx(ctx context.Context, tx *sql.Tx, e *model.SystemEvent) (UpsertResult, error)
	ListRecent(ctx context.Context, chainID model.ChainID, limit int) ([]model.SystemEvent, error)
}

// DailyStatsRepository provides additive upserts into per-chain daily
// aggregate rows. The day key is the UTC calendar date of the event's block
// timestamp; callers derive it through model.UTCDay.
type DailyStatsRepository interface {
	ApplyRebalanceTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string, driftBps int64) error
	ApplyFailedRebalanceTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, gasUsed string) error
	ApplySwapTx(ctx context.Context, tx *sql.Tx, chainID model.ChainID, day time.Time, volume string) error
	Get(ctx context.Context, chainID model.ChainID, day time.Time) (*model.DailyStats, error)
	Range(ctx context.Context, chainID model.ChainID, from, to time.Time) ([]model.DailyStats, error)
}

// BackfillRepository persists scan progress and arbitrates the per-chain
// run lease.
type BackfillRepository interface {
	// Ensure seeds the progress row for a chain. latest_indexed_block starts
	// at deploymentBlock-1 so the first scan begins at the deployment block.
	Ensure(ctx context.Context, chainID model.ChainID, deploymentBlock int64) error
	Get(ctx context.Context, chainID model.ChainID) (*model.BackfillProgress, error)
	// ClaimRun atomically acquires the run lease. A claim against a live
	// lease returns ErrAlreadyRunning; an expired lease may be taken over.
	ClaimRun(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration) error
	ReleaseRun(ctx context.Context, chainID model.ChainID, owner string) error
	// ExtendLease refreshes the lease and records the block the scan is
	// currently working through. Returns ErrLeaseLost if owner no longer
	// holds the lease.
	ExtendLease(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration, currentBlock int64) error
	// SetIndexed advances the persisted watermark. The stored value never
	// moves backwards.
	SetIndexed(ctx context.Context, chainID model.ChainID, latestIndexedBlock int64) error
	SetPaused(ctx context.Context, chainID model.ChainID, paused bool) error
}

// DeadLetterRepository is the terminal holding area for queue items that
// exhausted their retry budget.
type DeadLetterRepository interface {
	Insert(ctx context.Context, dl *model.DeadLetter) error
	List(ctx context.Context, chainID model.ChainID, limit int) ([]model.DeadLetter, error)
	Count(ctx context.Context, chainID model.ChainID) (int64, error)
}

// AggregateRow is one strategy's stored aggregates next to values re-derived
// from the rebalances and swaps ground tables, read by the reconciliation
// audit.
type AggregateRow struct {
	Key                 model.StrategyKey
	StoredRebalances    int64
	DerivedRebalances   int64
	StoredSwaps         int64
	DerivedSwaps        int64
	StoredVolume        string
	DerivedVolume       string
	StoredAvgDriftBps   float64
	DerivedAvgDriftBps  float64
	DerivedDriftSamples int64
}

// ReconciliationRepository re-derives strategy aggregates from ground tables.
type ReconciliationRepository interface {
	AggregateRows(ctx context.Context, chainID model.ChainID) ([]AggregateRow, error)
}
