package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierPrices_Total(t *testing.T) {
	total, err := DefaultTierPrices.Total(TierCounts{VIP: 2, VVIP: 1, Celebrity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2*300+500+1000), total)

	total, err = DefaultTierPrices.Total(TierCounts{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTierPrices_TotalRejectsOverflow(t *testing.T) {
	tests := []struct {
		name   string
		prices TierPrices
		qty    TierCounts
	}{
		{"single tier wraps", TierPrices{VIP: math.MaxInt64/2 + 1}, TierCounts{VIP: 2}},
		{"sum across tiers wraps", TierPrices{VIP: math.MaxInt64/2 + 1, VVIP: math.MaxInt64/2 + 1}, TierCounts{VIP: 1, VVIP: 1}},
		{"negative quantity", DefaultTierPrices, TierCounts{VIP: -1}},
		{"negative price", TierPrices{MIP: -5}, TierCounts{MIP: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.prices.Total(tt.qty)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestTierPrices_TotalAtLimit(t *testing.T) {
	total, err := TierPrices{VIP: math.MaxInt64 / 4}.Total(TierCounts{VIP: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/4)*4, total)
}
