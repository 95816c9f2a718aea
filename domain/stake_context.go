package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
)

// MegaMultiplier is the fixed value ratio between one unit of the mega asset
// and one unit of the primary asset.
const MegaMultiplier uint64 = 1_000_000

// Basket is the exchange rate of staking pool tokens for the pool's
// underlying assets, in the order the pool lists its assets.
type Basket struct {
	Quantities []uint64 `json:"quantities"`
}

// StakeContext holds the current price of both staking pools. Each basket
// is the exchange ratio of one staking pool token for the underlying assets.
type StakeContext struct {
	// Basket has a single quantity: the primary asset.
	Basket Basket `json:"basket"`
	// MegaBasket has two quantities: the mega asset, then the primary asset.
	MegaBasket Basket `json:"mega_basket"`
}

func NewStakeContext(basket, megaBasket Basket) (*StakeContext, error) {
	if len(basket.Quantities) != 1 {
		return nil, fmt.Errorf("%w: pool basket must have 1 quantity, got %v", ErrorInvalidBasket, len(basket.Quantities))
	}
	if len(megaBasket.Quantities) != 2 {
		return nil, fmt.Errorf("%w: mega pool basket must have 2 quantities, got %v", ErrorInvalidBasket, len(megaBasket.Quantities))
	}
	return &StakeContext{
		Basket:     Basket{Quantities: append([]uint64(nil), basket.Quantities...)},
		MegaBasket: Basket{Quantities: append([]uint64(nil), megaBasket.Quantities...)},
	}, nil
}

func (ctx *StakeContext) basket(mega bool) Basket {
	if mega {
		return ctx.MegaBasket
	}
	return ctx.Basket
}

// BasketQuantities returns the underlying asset amounts backing sptCount
// staking pool tokens.
func (ctx *StakeContext) BasketQuantities(sptCount uint64, mega bool) ([]uint64, error) {
	quantities := ctx.basket(mega).Quantities
	result := make([]uint64, len(quantities))
	for i, q := range quantities {
		v, overflow := math.SafeMul(q, sptCount)
		if overflow {
			return nil, fmt.Errorf("%w: basket quantity %v x %v", ErrorCheckedFailure, q, sptCount)
		}
		result[i] = v
	}
	return result, nil
}

// SrmEquivalent collapses the basket of sptCount tokens into a single value
// denominated in the primary asset.
func (ctx *StakeContext) SrmEquivalent(sptCount uint64, mega bool) (uint64, error) {
	quantities, err := ctx.BasketQuantities(sptCount, mega)
	if err != nil {
		return 0, err
	}
	if !mega {
		if len(quantities) != 1 {
			return 0, fmt.Errorf("%w: pool basket must have 1 quantity", ErrorInvalidBasket)
		}
		return quantities[0], nil
	}

	if len(quantities) != 2 {
		return 0, fmt.Errorf("%w: mega pool basket must have 2 quantities", ErrorInvalidBasket)
	}
	megaValue, overflow := math.SafeMul(quantities[0], MegaMultiplier)
	if overflow {
		return 0, fmt.Errorf("%w: mega equivalent of %v", ErrorCheckedFailure, quantities[0])
	}
	total, overflow := math.SafeAdd(megaValue, quantities[1])
	if overflow {
		return 0, fmt.Errorf("%w: mega basket value", ErrorCheckedFailure)
	}
	return total, nil
}
