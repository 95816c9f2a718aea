package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStakeContextValidatesBaskets(t *testing.T) {
	_, err := NewStakeContext(Basket{Quantities: []uint64{1, 2}}, Basket{Quantities: []uint64{1, 2}})
	require.ErrorIs(t, err, ErrorInvalidBasket)

	_, err = NewStakeContext(Basket{Quantities: []uint64{1}}, Basket{Quantities: []uint64{1}})
	require.ErrorIs(t, err, ErrorInvalidBasket)

	ctx, err := NewStakeContext(Basket{Quantities: []uint64{3}}, Basket{Quantities: []uint64{2, 5}})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, ctx.Basket.Quantities)
}

func TestSrmEquivalent(t *testing.T) {
	ctx := &StakeContext{
		Basket:     Basket{Quantities: []uint64{3}},
		MegaBasket: Basket{Quantities: []uint64{2, 5}},
	}

	tests := []struct {
		name string
		spt  uint64
		mega bool
		want uint64
	}{
		{"zero", 0, false, 0},
		{"primary", 10, false, 30},
		{"mega", 10, true, 10*2*MegaMultiplier + 10*5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ctx.SrmEquivalent(tt.spt, tt.mega)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBasketQuantities(t *testing.T) {
	ctx := &StakeContext{
		Basket:     Basket{Quantities: []uint64{3}},
		MegaBasket: Basket{Quantities: []uint64{2, 5}},
	}
	q, err := ctx.BasketQuantities(4, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{8, 20}, q)
}

func TestStakeContextOverflowFails(t *testing.T) {
	ctx := &StakeContext{
		Basket:     Basket{Quantities: []uint64{2}},
		MegaBasket: Basket{Quantities: []uint64{1, 0}},
	}

	_, err := ctx.BasketQuantities(math.MaxUint64, false)
	require.ErrorIs(t, err, ErrorCheckedFailure)

	_, err = ctx.SrmEquivalent(math.MaxUint64/2+1, false)
	require.ErrorIs(t, err, ErrorCheckedFailure)

	// The mega multiplier overflows even when the basket product does not.
	_, err = ctx.SrmEquivalent(math.MaxUint64/MegaMultiplier+1, true)
	require.ErrorIs(t, err, ErrorCheckedFailure)
}
