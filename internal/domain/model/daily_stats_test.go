package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUTCDay(t *testing.T) {
	kst := time.FixedZone("KST", 9*3600)

	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			"midday utc",
			time.Date(2025, 3, 14, 12, 30, 45, 0, time.UTC),
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-utc zone crossing the date line",
			time.Date(2025, 3, 15, 3, 0, 0, 0, kst), // 2025-03-14T18:00Z
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"exactly midnight",
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"one nanosecond before midnight",
			time.Date(2025, 3, 14, 23, 59, 59, 999999999, time.UTC),
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, UTCDay(tt.input).Equal(tt.want), "got %s", UTCDay(tt.input))
		})
	}
}

func TestStrategyKeyString(t *testing.T) {
	k := StrategyKey{ChainID: ChainMonadTestnet, UserAddress: "0xabc", StrategyID: 7}
	assert.Equal(t, "10143:0xabc:7", k.String())
}
