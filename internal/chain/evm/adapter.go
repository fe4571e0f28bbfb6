package evm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/cache"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain/ratelimit"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/circuitbreaker"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/identity"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/metrics"
)

type AdapterConfig struct {
	ChainID         model.ChainID
	RPCURL          string
	ContractAddress string
	RPCTimeout      time.Duration
	RPS             float64
	Burst           int
	Breaker         circuitbreaker.Config

	BlockTimeCacheSize int
	ReceiptCacheSize   int
	CacheTTL           time.Duration
}

// Adapter implements chain.ChainAdapter against an EVM JSON-RPC node. One
// adapter serves a single (chain, registry contract) pair; the scanner and
// subscriber share it, so the block time cache is sharded.
type Adapter struct {
	chainID    model.ChainID
	chainLabel string
	client     *Client
	contract   string
	topics     []string
	blockTimes *cache.ShardedLRU[int64, time.Time]
	receipts   *cache.LRU[string, chain.Receipt]
	logger     *slog.Logger
}

var _ chain.ChainAdapter = (*Adapter)(nil)

func NewAdapter(cfg AdapterConfig, logger *slog.Logger) *Adapter {
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 20
	}
	if cfg.BlockTimeCacheSize <= 0 {
		cfg.BlockTimeCacheSize = 4096
	}
	if cfg.ReceiptCacheSize <= 0 {
		cfg.ReceiptCacheSize = 2048
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}

	chainLabel := cfg.ChainID.String()
	log := logger.With("component", "evm_adapter", "chain_id", int64(cfg.ChainID))

	breakerCfg := cfg.Breaker
	prevOnChange := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		metrics.RPCBreakerState.WithLabelValues(chainLabel).Set(breakerStateValue(to))
		log.Warn("rpc circuit breaker state change", "from", from.String(), "to", to.String())
		if prevOnChange != nil {
			prevOnChange(from, to)
		}
	}
	metrics.RPCBreakerState.WithLabelValues(chainLabel).Set(breakerStateValue(circuitbreaker.StateClosed))

	client := NewClient(ClientConfig{
		ChainID: cfg.ChainID,
		RPCURL:  cfg.RPCURL,
		Timeout: cfg.RPCTimeout,
		Limiter: ratelimit.NewLimiter(cfg.RPS, cfg.Burst, cfg.ChainID),
		Breaker: circuitbreaker.New(breakerCfg),
	}, log)

	return &Adapter{
		chainID:    cfg.ChainID,
		chainLabel: chainLabel,
		client:     client,
		contract:   identity.NormalizeAddress(cfg.ContractAddress),
		topics:     AllTopics(),
		blockTimes: cache.NewShardedLRU[int64, time.Time](cfg.BlockTimeCacheSize, cfg.CacheTTL, func(n int64) string {
			return strconv.FormatInt(n, 10)
		}),
		receipts: cache.NewLRU[string, chain.Receipt](cfg.ReceiptCacheSize, cfg.CacheTTL),
		logger:   log,
	}
}

func breakerStateValue(s circuitbreaker.State) float64 {
	switch s {
	case circuitbreaker.StateOpen:
		return 1
	case circuitbreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func (a *Adapter) ChainID() model.ChainID {
	return a.chainID
}

func (a *Adapter) GetLatestBlock(ctx context.Context) (int64, error) {
	return a.client.GetBlockNumber(ctx)
}

func (a *Adapter) GetLogs(ctx context.Context, fromBlock, toBlock int64) ([]chain.Log, error) {
	if fromBlock > toBlock {
		return nil, fmt.Errorf("invalid block range %d..%d", fromBlock, toBlock)
	}

	filter := LogFilter{
		FromBlock: formatHexInt64(fromBlock),
		ToBlock:   formatHexInt64(toBlock),
		Address:   a.contract,
		Topics:    [][]string{a.topics},
	}

	wireLogs, err := a.client.GetLogs(ctx, filter)
	if err != nil {
		return nil, err
	}

	logs := make([]chain.Log, 0, len(wireLogs))
	for _, wl := range wireLogs {
		blockNumber, err := ParseHexInt64(wl.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("log block number: %w", err)
		}
		logIndex, err := ParseHexInt64(wl.LogIndex)
		if err != nil {
			return nil, fmt.Errorf("log index: %w", err)
		}
		logs = append(logs, chain.Log{
			Address:     identity.NormalizeAddress(wl.Address),
			Topics:      lowerAll(wl.Topics),
			Data:        wl.Data,
			BlockNumber: blockNumber,
			TxHash:      identity.NormalizeHash(wl.TransactionHash),
			LogIndex:    logIndex,
			Removed:     wl.Removed,
		})
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].LogIndex < logs[j].LogIndex
	})

	return logs, nil
}

func (a *Adapter) GetBlockTime(ctx context.Context, blockNumber int64) (time.Time, error) {
	if ts, ok := a.blockTimes.Get(blockNumber); ok {
		metrics.BlockTimeCacheHits.WithLabelValues(a.chainLabel).Inc()
		return ts, nil
	}
	metrics.BlockTimeCacheMisses.WithLabelValues(a.chainLabel).Inc()

	block, err := a.client.GetBlockByNumber(ctx, blockNumber)
	if err != nil {
		return time.Time{}, err
	}
	if block == nil {
		return time.Time{}, fmt.Errorf("block %d not yet available", blockNumber)
	}

	ts, err := parseBlockTime(block)
	if err != nil {
		return time.Time{}, fmt.Errorf("block %d: %w", blockNumber, err)
	}

	a.blockTimes.Put(blockNumber, ts)
	return ts, nil
}

// WarmBlockTimes batch-fetches timestamps for the given blocks into the
// cache. The scanner calls this once per batch so per-log DecodeLog calls
// stay off the network.
func (a *Adapter) WarmBlockTimes(ctx context.Context, blockNumbers []int64) error {
	missing := make([]int64, 0, len(blockNumbers))
	seen := make(map[int64]struct{}, len(blockNumbers))
	for _, n := range blockNumbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := a.blockTimes.Get(n); ok {
			metrics.BlockTimeCacheHits.WithLabelValues(a.chainLabel).Inc()
			continue
		}
		missing = append(missing, n)
	}
	if len(missing) == 0 {
		return nil
	}
	metrics.BlockTimeCacheMisses.WithLabelValues(a.chainLabel).Add(float64(len(missing)))

	blocks, err := a.client.GetBlocksByNumber(ctx, missing)
	if err != nil {
		return err
	}
	for i, block := range blocks {
		if block == nil {
			return fmt.Errorf("block %d not yet available", missing[i])
		}
		ts, err := parseBlockTime(block)
		if err != nil {
			return fmt.Errorf("block %d: %w", missing[i], err)
		}
		a.blockTimes.Put(missing[i], ts)
	}
	return nil
}

func (a *Adapter) GetTransactionReceipt(ctx context.Context, txHash string) (*chain.Receipt, error) {
	hash := identity.NormalizeHash(txHash)
	if r, ok := a.receipts.Get(hash); ok {
		return &r, nil
	}

	wire, err := a.client.GetTransactionReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if wire == nil {
		return nil, nil
	}

	blockNumber, err := ParseHexInt64(wire.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("receipt block number: %w", err)
	}
	gasUsed, err := ParseHexBig(wire.GasUsed)
	if err != nil {
		return nil, fmt.Errorf("receipt gas used: %w", err)
	}
	gasPrice, err := ParseHexBig(wire.EffectiveGasPrice)
	if err != nil {
		return nil, fmt.Errorf("receipt gas price: %w", err)
	}

	receipt := chain.Receipt{
		TxHash:            hash,
		BlockNumber:       blockNumber,
		Success:           wire.Status == "0x1",
		GasUsed:           gasUsed,
		EffectiveGasPrice: gasPrice,
	}
	a.receipts.Put(hash, receipt)
	return &receipt, nil
}

// DecodeLog decodes a registry log into a RawEvent. Rebalance events are
// enriched with receipt gas data; every event gets its block timestamp.
// The caller assigns Source.
func (a *Adapter) DecodeLog(ctx context.Context, lg chain.Log) (*event.RawEvent, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log %s:%d has no topics", lg.TxHash, lg.LogIndex)
	}

	topic0 := strings.ToLower(lg.Topics[0])
	name, ok := eventNameForTopic(topic0)
	if !ok {
		return nil, fmt.Errorf("decode log: unknown event name for topic %s", topic0)
	}

	payload, err := decodeEventPayload(name, lg)
	if err != nil {
		return nil, fmt.Errorf("decode %s log %s:%d: %w", name, lg.TxHash, lg.LogIndex, err)
	}

	switch p := payload.(type) {
	case event.RebalanceExecutedData:
		gasUsed, gasPrice, err := a.receiptGas(ctx, lg.TxHash)
		if err != nil {
			return nil, err
		}
		p.GasUsed, p.GasPrice = gasUsed, gasPrice
		payload = p
	case event.RebalanceFailedData:
		gasUsed, gasPrice, err := a.receiptGas(ctx, lg.TxHash)
		if err != nil {
			return nil, err
		}
		p.GasUsed, p.GasPrice = gasUsed, gasPrice
		payload = p
	}

	blockTime, err := a.GetBlockTime(ctx, lg.BlockNumber)
	if err != nil {
		return nil, err
	}

	data, err := event.MarshalData(payload)
	if err != nil {
		return nil, err
	}

	return &event.RawEvent{
		ChainID:     a.chainID,
		Name:        name,
		BlockNumber: lg.BlockNumber,
		BlockTime:   blockTime,
		TxHash:      lg.TxHash,
		LogIndex:    lg.LogIndex,
		Data:        data,
	}, nil
}

func (a *Adapter) receiptGas(ctx context.Context, txHash string) (gasUsed, gasPrice string, err error) {
	receipt, err := a.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return "", "", err
	}
	if receipt == nil {
		return "", "", fmt.Errorf("receipt for %s not yet available", txHash)
	}
	return receipt.GasUsed, receipt.EffectiveGasPrice, nil
}

func parseBlockTime(block *Block) (time.Time, error) {
	ts, err := ParseHexInt64(block.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp: %w", err)
	}
	return time.Unix(ts, 0).UTC(), nil
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
