package evm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/chain"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
)

const (
	testUser     = "0xab5801a7d398351b8be11c439e05c5b3259aec9b"
	testExecutor = "0x3333333333333333333333333333333333333333"
	testTokenA   = "0x1111111111111111111111111111111111111111"
	testTokenB   = "0x2222222222222222222222222222222222222222"
)

func userTopic() string { return "0x" + hexAddrWord(testUser) }

func idTopic(id string) string { return "0x" + hexWord(id) }

func TestKeccakTopic_KnownVector(t *testing.T) {
	// The ERC-20 Transfer hash is the standard reference vector.
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		keccakTopic("Transfer(address,address,uint256)"))
}

func TestTopicRegistry_CoversAllEventsDistinctly(t *testing.T) {
	topics := AllTopics()
	require.Len(t, topics, len(event.Names()))

	seen := map[string]bool{}
	for _, topic := range topics {
		require.Len(t, topic, 66)
		assert.True(t, strings.HasPrefix(topic, "0x"))
		assert.False(t, seen[topic], "duplicate topic %s", topic)
		seen[topic] = true
	}

	for _, name := range event.Names() {
		resolved, ok := eventNameForTopic(TopicFor(name))
		require.True(t, ok)
		assert.Equal(t, name, resolved)
	}
}

func TestDecodeEventPayload_StrategyCreated(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.StrategyCreated), userTopic(), idTopic("7")},
		Data: "0x" +
			hexWord("60") +
			hexWord("c0") +
			hexWord("e10") +
			hexWord("2") + hexAddrWord(testTokenA) + hexAddrWord(testTokenB) +
			hexWord("2") + hexWord("1770") + hexWord("fa0"),
	}

	payload, err := decodeEventPayload(event.StrategyCreated, lg)
	require.NoError(t, err)

	data, ok := payload.(event.StrategyCreatedData)
	require.True(t, ok)
	assert.Equal(t, int64(7), data.StrategyID)
	assert.Equal(t, testUser, data.User)
	assert.Equal(t, []string{testTokenA, testTokenB}, data.Tokens)
	assert.Equal(t, []int64{6000, 4000}, data.WeightsBps)
	assert.Equal(t, int64(3600), data.IntervalSeconds)
}

func TestDecodeEventPayload_StrategyPaused(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.StrategyPaused), userTopic(), idTopic("3")},
		Data:   "0x",
	}

	payload, err := decodeEventPayload(event.StrategyPaused, lg)
	require.NoError(t, err)

	data, ok := payload.(event.StrategyPausedData)
	require.True(t, ok)
	assert.Equal(t, int64(3), data.StrategyID)
	assert.Equal(t, testUser, data.User)
}

func TestDecodeEventPayload_RebalanceExecuted(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.RebalanceExecuted), userTopic(), idTopic("7")},
		Data:   "0x" + hexWord("89") + hexAddrWord(testExecutor), // drift 137 bps
	}

	payload, err := decodeEventPayload(event.RebalanceExecuted, lg)
	require.NoError(t, err)

	data, ok := payload.(event.RebalanceExecutedData)
	require.True(t, ok)
	assert.Equal(t, int64(137), data.DriftBps)
	assert.Equal(t, testExecutor, data.Executor)
	assert.Empty(t, data.GasUsed, "gas is enriched from the receipt, not the log")
}

func TestDecodeEventPayload_RebalanceFailed(t *testing.T) {
	reason := "736c697070616765206578636565646564" // "slippage exceeded"
	lg := chain.Log{
		Topics: []string{TopicFor(event.RebalanceFailed), userTopic(), idTopic("7")},
		Data: "0x" + hexWord("20") + hexWord("11") +
			reason + strings.Repeat("0", wordHexLen-len(reason)),
	}

	payload, err := decodeEventPayload(event.RebalanceFailed, lg)
	require.NoError(t, err)

	data, ok := payload.(event.RebalanceFailedData)
	require.True(t, ok)
	assert.Equal(t, "slippage exceeded", data.Reason)
}

func TestDecodeEventPayload_SwapExecuted(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.SwapExecuted), userTopic(), idTopic("7")},
		Data: "0x" +
			hexWord("0") + // swap index
			hexAddrWord(testTokenA) +
			hexAddrWord(testTokenB) +
			hexWord("f4240") + // 1_000_000 in
			hexWord("f2eb8") + // 995_000 out
			strings.Repeat("f", 62) + "e7", // impact -25 bps
	}

	payload, err := decodeEventPayload(event.SwapExecuted, lg)
	require.NoError(t, err)

	data, ok := payload.(event.SwapExecutedData)
	require.True(t, ok)
	assert.Equal(t, 0, data.SwapIndex)
	assert.Equal(t, testTokenA, data.TokenIn)
	assert.Equal(t, testTokenB, data.TokenOut)
	assert.Equal(t, "1000000", data.AmountIn)
	assert.Equal(t, "995000", data.AmountOut)
	require.NotNil(t, data.PriceImpactBps)
	assert.Equal(t, int64(-25), *data.PriceImpactBps)
}

func TestDecodeEventPayload_DexApprovalChanged(t *testing.T) {
	dex := "0x4444444444444444444444444444444444444444"
	lg := chain.Log{
		Topics: []string{TopicFor(event.DexApprovalChanged), "0x" + hexAddrWord(dex)},
		Data:   "0x" + hexWord("1"),
	}

	payload, err := decodeEventPayload(event.DexApprovalChanged, lg)
	require.NoError(t, err)

	data, ok := payload.(event.DexApprovalChangedData)
	require.True(t, ok)
	assert.Equal(t, dex, data.Dex)
	assert.True(t, data.Approved)
}

func TestDecodeEventPayload_ExecutorRotated(t *testing.T) {
	oldExec := "0x5555555555555555555555555555555555555555"
	lg := chain.Log{
		Topics: []string{
			TopicFor(event.ExecutorRotated),
			"0x" + hexAddrWord(oldExec),
			"0x" + hexAddrWord(testExecutor),
		},
		Data: "0x",
	}

	payload, err := decodeEventPayload(event.ExecutorRotated, lg)
	require.NoError(t, err)

	data, ok := payload.(event.ExecutorRotatedData)
	require.True(t, ok)
	assert.Equal(t, oldExec, data.OldExecutor)
	assert.Equal(t, testExecutor, data.NewExecutor)
}

func TestDecodeEventPayload_MissingTopicsFail(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.StrategyCreated), userTopic()},
		Data:   "0x",
	}

	_, err := decodeEventPayload(event.StrategyCreated, lg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topics")
}

func TestDecodeEventPayload_WeightLengthMismatchFails(t *testing.T) {
	lg := chain.Log{
		Topics: []string{TopicFor(event.StrategyCreated), userTopic(), idTopic("7")},
		Data: "0x" +
			hexWord("60") +
			hexWord("c0") +
			hexWord("e10") +
			hexWord("2") + hexAddrWord(testTokenA) + hexAddrWord(testTokenB) +
			hexWord("1") + hexWord("2710"),
	}

	_, err := decodeEventPayload(event.StrategyCreated, lg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")
}
