package chain

import (
	"context"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

//go:generate mockgen -source=adapter.go -destination=mocks/chain_mock.go -package=mocks

// ChainAdapter abstracts chain-specific log access and decoding so the
// scanner, subscriber, and reconciliation loops stay chain-agnostic.
type ChainAdapter interface {
	// ChainID returns the numeric chain identifier (e.g. 10143, 84532).
	ChainID() model.ChainID

	// GetLatestBlock returns the chain head block number.
	GetLatestBlock(ctx context.Context) (int64, error)

	// GetLogs fetches registry contract logs for the inclusive block range.
	// Logs are returned ordered by (blockNumber, logIndex).
	GetLogs(ctx context.Context, fromBlock, toBlock int64) ([]Log, error)

	// GetBlockTime returns the timestamp of the given block.
	GetBlockTime(ctx context.Context, blockNumber int64) (time.Time, error)

	// GetTransactionReceipt fetches the receipt for a transaction hash.
	// Returns nil when the transaction is unknown to the node.
	GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// DecodeLog turns a raw contract log into a normalized event, enriching
	// it with the block timestamp and, where the event requires it, receipt
	// gas data. Logs from unknown topics return an error.
	DecodeLog(ctx context.Context, lg Log) (*event.RawEvent, error)
}

// Log is a chain-neutral contract log.
type Log struct {
	Address     string
	Topics      []string
	Data        string
	BlockNumber int64
	TxHash      string
	LogIndex    int64
	Removed     bool
}

// Receipt carries the transaction receipt fields the ingest path consumes.
// Gas values are decimal strings; wei amounts overflow int64.
type Receipt struct {
	TxHash            string
	BlockNumber       int64
	Success           bool
	GasUsed           string
	EffectiveGasPrice string
}
