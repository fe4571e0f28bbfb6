package evm

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
)

// Solidity event signatures of the strategy registry contract. Topic
// hashes are derived at init so the log filter and the decoder can never
// drift from this list.
var eventSignatures = map[event.Name]string{
	event.StrategyCreated:    "StrategyCreated(address,uint256,address[],uint256[],uint256)",
	event.StrategyUpdated:    "StrategyUpdated(address,uint256,address[],uint256[],uint256)",
	event.StrategyPaused:     "StrategyPaused(address,uint256)",
	event.StrategyResumed:    "StrategyResumed(address,uint256)",
	event.StrategyDeleted:    "StrategyDeleted(address,uint256)",
	event.RebalanceExecuted:  "RebalanceExecuted(address,uint256,uint256,address)",
	event.RebalanceFailed:    "RebalanceFailed(address,uint256,string)",
	event.SwapExecuted:       "SwapExecuted(address,uint256,uint256,address,address,uint256,uint256,int256)",
	event.DexApprovalChanged: "DexApprovalChanged(address,bool)",
	event.EmergencyPaused:    "EmergencyPaused(address)",
	event.EmergencyUnpaused:  "EmergencyUnpaused(address)",
	event.ExecutorRotated:    "ExecutorRotated(address,address)",
}

var (
	topicByName = map[event.Name]string{}
	nameByTopic = map[string]event.Name{}
)

func init() {
	for name, sig := range eventSignatures {
		topic := keccakTopic(sig)
		topicByName[name] = topic
		nameByTopic[topic] = name
	}
}

func keccakTopic(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// TopicFor returns the topic0 hash for a registry event.
func TopicFor(name event.Name) string {
	return topicByName[name]
}

// AllTopics returns every registry topic0, for the eth_getLogs filter.
func AllTopics() []string {
	topics := make([]string, 0, len(event.Names()))
	for _, name := range event.Names() {
		topics = append(topics, topicByName[name])
	}
	return topics
}

func eventNameForTopic(topic string) (event.Name, bool) {
	name, ok := nameByTopic[topic]
	return name, ok
}

// decodeEventPayload decodes a registry log's topics and data into the
// event's typed payload. Gas fields on rebalance payloads are left empty
// here; the adapter fills them from the receipt.
func decodeEventPayload(name event.Name, lg chain.Log) (event.Payload, error) {
	switch name {
	case event.StrategyCreated:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, d abiData) (event.Payload, error) {
			tokens, weights, interval, err := decodeStrategyConfig(d)
			if err != nil {
				return nil, err
			}
			return event.StrategyCreatedData{
				StrategyID:      base.strategyID,
				User:            base.user,
				Tokens:          tokens,
				WeightsBps:      weights,
				IntervalSeconds: interval,
			}, nil
		})
	case event.StrategyUpdated:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, d abiData) (event.Payload, error) {
			tokens, weights, interval, err := decodeStrategyConfig(d)
			if err != nil {
				return nil, err
			}
			return event.StrategyUpdatedData{
				StrategyID:      base.strategyID,
				User:            base.user,
				Tokens:          tokens,
				WeightsBps:      weights,
				IntervalSeconds: interval,
			}, nil
		})
	case event.StrategyPaused:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, _ abiData) (event.Payload, error) {
			return event.StrategyPausedData{StrategyID: base.strategyID, User: base.user}, nil
		})
	case event.StrategyResumed:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, _ abiData) (event.Payload, error) {
			return event.StrategyResumedData{StrategyID: base.strategyID, User: base.user}, nil
		})
	case event.StrategyDeleted:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, _ abiData) (event.Payload, error) {
			return event.StrategyDeletedData{StrategyID: base.strategyID, User: base.user}, nil
		})
	case event.RebalanceExecuted:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, d abiData) (event.Payload, error) {
			driftBps, err := d.uint64Word(0)
			if err != nil {
				return nil, err
			}
			executor, err := d.addressWord(1)
			if err != nil {
				return nil, err
			}
			return event.RebalanceExecutedData{
				StrategyID: base.strategyID,
				User:       base.user,
				DriftBps:   driftBps,
				Executor:   executor,
			}, nil
		})
	case event.RebalanceFailed:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, d abiData) (event.Payload, error) {
			reason, err := d.stringWord(0)
			if err != nil {
				return nil, err
			}
			return event.RebalanceFailedData{
				StrategyID: base.strategyID,
				User:       base.user,
				Reason:     reason,
			}, nil
		})
	case event.SwapExecuted:
		return decodeStrategyLifecycle(lg, func(base strategyTopics, d abiData) (event.Payload, error) {
			swapIndex, err := d.uint64Word(0)
			if err != nil {
				return nil, err
			}
			tokenIn, err := d.addressWord(1)
			if err != nil {
				return nil, err
			}
			tokenOut, err := d.addressWord(2)
			if err != nil {
				return nil, err
			}
			amountIn, err := d.bigWord(3)
			if err != nil {
				return nil, err
			}
			amountOut, err := d.bigWord(4)
			if err != nil {
				return nil, err
			}
			priceImpact, err := d.signedWord(5)
			if err != nil {
				return nil, err
			}
			return event.SwapExecutedData{
				StrategyID:     base.strategyID,
				User:           base.user,
				SwapIndex:      int(swapIndex),
				TokenIn:        tokenIn,
				TokenOut:       tokenOut,
				AmountIn:       amountIn,
				AmountOut:      amountOut,
				PriceImpactBps: &priceImpact,
			}, nil
		})
	case event.DexApprovalChanged:
		dex, err := requireAddressTopic(lg, 1)
		if err != nil {
			return nil, err
		}
		d, err := newABIData(lg.Data)
		if err != nil {
			return nil, err
		}
		approved, err := d.boolWord(0)
		if err != nil {
			return nil, err
		}
		return event.DexApprovalChangedData{Dex: dex, Approved: approved}, nil
	case event.EmergencyPaused:
		by, err := requireAddressTopic(lg, 1)
		if err != nil {
			return nil, err
		}
		return event.EmergencyPausedData{TriggeredBy: by}, nil
	case event.EmergencyUnpaused:
		by, err := requireAddressTopic(lg, 1)
		if err != nil {
			return nil, err
		}
		return event.EmergencyUnpausedData{TriggeredBy: by}, nil
	case event.ExecutorRotated:
		oldExec, err := requireAddressTopic(lg, 1)
		if err != nil {
			return nil, err
		}
		newExec, err := requireAddressTopic(lg, 2)
		if err != nil {
			return nil, err
		}
		return event.ExecutorRotatedData{OldExecutor: oldExec, NewExecutor: newExec}, nil
	default:
		return nil, fmt.Errorf("no decoder for event %q", name)
	}
}

// strategyTopics is the (user, strategyId) pair every strategy-scoped
// event indexes in topics 1 and 2.
type strategyTopics struct {
	user       string
	strategyID int64
}

func decodeStrategyLifecycle(lg chain.Log, build func(strategyTopics, abiData) (event.Payload, error)) (event.Payload, error) {
	user, err := requireAddressTopic(lg, 1)
	if err != nil {
		return nil, err
	}
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("log has %d topics, want 3", len(lg.Topics))
	}
	strategyID, err := int64FromTopic(lg.Topics[2])
	if err != nil {
		return nil, fmt.Errorf("strategy id topic: %w", err)
	}
	d, err := newABIData(lg.Data)
	if err != nil {
		return nil, err
	}
	return build(strategyTopics{user: user, strategyID: strategyID}, d)
}

// decodeStrategyConfig reads the (tokens, weightsBps, interval) tail
// shared by StrategyCreated and StrategyUpdated.
func decodeStrategyConfig(d abiData) (tokens []string, weights []int64, interval int64, err error) {
	tokens, err = d.addressArray(0)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("tokens: %w", err)
	}
	weights, err = d.uint64Array(1)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("weights: %w", err)
	}
	interval, err = d.uint64Word(2)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("interval: %w", err)
	}
	if len(tokens) != len(weights) {
		return nil, nil, 0, fmt.Errorf("tokens/weights length mismatch (%d vs %d)", len(tokens), len(weights))
	}
	return tokens, weights, interval, nil
}

func requireAddressTopic(lg chain.Log, i int) (string, error) {
	if len(lg.Topics) <= i {
		return "", fmt.Errorf("log has %d topics, want at least %d", len(lg.Topics), i+1)
	}
	addr, err := addressFromTopic(lg.Topics[i])
	if err != nil {
		return "", fmt.Errorf("topic %d: %w", i, err)
	}
	return addr, nil
}
