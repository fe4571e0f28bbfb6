package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayload_AllNamesResolve(t *testing.T) {
	// Every declared name must decode an empty object into its variant;
	// an event name without a decode arm would silently dead-letter.
	for _, name := range Names() {
		t.Run(name.String(), func(t *testing.T) {
			p, err := DecodePayload(name, json.RawMessage(`{}`))
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestDecodePayload_UnknownName(t *testing.T) {
	_, err := DecodePayload(Name("strategy-exploded"), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event name")
}

func TestDecodePayload_MalformedData(t *testing.T) {
	_, err := DecodePayload(RebalanceExecuted, json.RawMessage(`{"drift_bps":`))
	require.Error(t, err)
}

func TestDecodePayload_TypedFields(t *testing.T) {
	data := json.RawMessage(`{
		"strategy_id": 3,
		"user": "0xaaaa",
		"drift_bps": 250,
		"gas_used": "21000",
		"gas_price": "1500000000",
		"executor": "0xbbbb"
	}`)

	p, err := DecodePayload(RebalanceExecuted, data)
	require.NoError(t, err)

	exec, ok := p.(RebalanceExecutedData)
	require.True(t, ok, "expected RebalanceExecutedData, got %T", p)
	assert.Equal(t, int64(3), exec.StrategyID)
	assert.Equal(t, int64(250), exec.DriftBps)
	assert.Equal(t, "21000", exec.GasUsed)
	assert.Equal(t, "0xbbbb", exec.Executor)
}

func TestDecodePayload_SwapOptionalPriceImpact(t *testing.T) {
	p, err := DecodePayload(SwapExecuted, json.RawMessage(`{"swap_index":1,"token_in":"0x1","token_out":"0x2","amount_in":"10","amount_out":"9"}`))
	require.NoError(t, err)

	swap := p.(SwapExecutedData)
	assert.Nil(t, swap.PriceImpactBps)

	p, err = DecodePayload(SwapExecuted, json.RawMessage(`{"price_impact_bps":42}`))
	require.NoError(t, err)
	swap = p.(SwapExecutedData)
	require.NotNil(t, swap.PriceImpactBps)
	assert.Equal(t, int64(42), *swap.PriceImpactBps)
}

func TestRawEventKey(t *testing.T) {
	e := RawEvent{ChainID: 10143, TxHash: "0xdead", LogIndex: 7}
	assert.Equal(t, "10143:0xdead:7", e.Key())
}

func TestMarshalDecodeRoundTrip(t *testing.T) {
	in := StrategyCreatedData{
		StrategyID:      11,
		User:            "0xcafe",
		Tokens:          []string{"0x1", "0x2"},
		WeightsBps:      []int64{6000, 4000},
		IntervalSeconds: 3600,
	}

	raw, err := MarshalData(in)
	require.NoError(t, err)

	out, err := DecodePayload(StrategyCreated, raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
