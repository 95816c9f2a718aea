package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
)

// Balances is shared by member books and entities. An entity's balances are
// the sum of the books of all its members.
type Balances struct {
	// Denominated in staking pool tokens.
	SptAmount                 uint64 `json:"spt_amount"`
	SptMegaAmount             uint64 `json:"spt_mega_amount"`
	SptPendingWithdrawals     uint64 `json:"spt_pending_withdrawals"`
	SptMegaPendingWithdrawals uint64 `json:"spt_mega_pending_withdrawals"`
	// Denominated in the primary and mega asset.
	StakeIntent     uint64 `json:"stake_intent"`
	MegaStakeIntent uint64 `json:"mega_stake_intent"`
	CostBasis       uint64 `json:"cost_basis"`
	MegaCostBasis   uint64 `json:"mega_cost_basis"`
}

func (b *Balances) IsEmpty() bool {
	return *b == Balances{}
}

func (b *Balances) spt(mega bool) *uint64 {
	if mega {
		return &b.SptMegaAmount
	}
	return &b.SptAmount
}

func (b *Balances) sptPending(mega bool) *uint64 {
	if mega {
		return &b.SptMegaPendingWithdrawals
	}
	return &b.SptPendingWithdrawals
}

func (b *Balances) stakeIntent(mega bool) *uint64 {
	if mega {
		return &b.MegaStakeIntent
	}
	return &b.StakeIntent
}

func (b *Balances) costBasis(mega bool) *uint64 {
	if mega {
		return &b.MegaCostBasis
	}
	return &b.CostBasis
}

// assets returns the stake intent and cost basis fields backing one pool
// token, in basket order. The mega pool lists the mega asset first.
func (b *Balances) assets(mega bool) (intents, bases []*uint64) {
	if mega {
		return []*uint64{&b.MegaStakeIntent, &b.StakeIntent}, []*uint64{&b.MegaCostBasis, &b.CostBasis}
	}
	return []*uint64{&b.StakeIntent}, []*uint64{&b.CostBasis}
}

func (b *Balances) depositStakeIntent(amount uint64, mega bool) error {
	next := *b
	if err := checkedAdd(next.stakeIntent(mega), amount); err != nil {
		return err
	}
	if err := checkedAdd(next.costBasis(mega), amount); err != nil {
		return err
	}
	*b = next
	return nil
}

func (b *Balances) withdrawStakeIntent(amount uint64, mega bool) error {
	if *b.stakeIntent(mega) < amount {
		return fmt.Errorf("%w: have %v, want %v", ErrorInsufficientStakeIntentBalance, *b.stakeIntent(mega), amount)
	}
	next := *b
	if err := checkedSub(next.stakeIntent(mega), amount); err != nil {
		return err
	}
	if err := checkedSub(next.costBasis(mega), amount); err != nil {
		return err
	}
	*b = next
	return nil
}

// createSpt credits freshly minted pool tokens bought with outside funds.
// The purchase price joins the cost basis.
func (b *Balances) createSpt(spt uint64, price []uint64, mega bool) error {
	next := *b
	_, bases := next.assets(mega)
	if len(price) != len(bases) {
		return fmt.Errorf("%w: price has %v quantities, want %v", ErrorInvalidBasket, len(price), len(bases))
	}
	if err := checkedAdd(next.spt(mega), spt); err != nil {
		return err
	}
	for i, p := range price {
		if err := checkedAdd(bases[i], p); err != nil {
			return err
		}
	}
	*b = next
	return nil
}

// convertStakeIntent pays for pool tokens out of stake intent. The cost
// basis already covers the intent, so it is left untouched.
func (b *Balances) convertStakeIntent(spt uint64, price []uint64, mega bool) error {
	next := *b
	intents, _ := next.assets(mega)
	if len(price) != len(intents) {
		return fmt.Errorf("%w: price has %v quantities, want %v", ErrorInvalidBasket, len(price), len(intents))
	}
	for i, p := range price {
		if *intents[i] < p {
			return fmt.Errorf("%w: have %v, want %v", ErrorInsufficientStakeIntentBalance, *intents[i], p)
		}
		if err := checkedSub(intents[i], p); err != nil {
			return err
		}
	}
	if err := checkedAdd(next.spt(mega), spt); err != nil {
		return err
	}
	*b = next
	return nil
}

// redeemSpt moves spt into pending withdrawal and releases basis from the
// cost basis of every asset.
func (b *Balances) redeemSpt(spt uint64, basis []uint64, mega bool) error {
	if *b.spt(mega) < spt {
		return fmt.Errorf("%w: have %v, want %v", ErrorInsufficientStakeBalance, *b.spt(mega), spt)
	}
	next := *b
	_, bases := next.assets(mega)
	if len(basis) != len(bases) {
		return fmt.Errorf("%w: basis has %v quantities, want %v", ErrorInvalidBasket, len(basis), len(bases))
	}
	if err := checkedMove(next.spt(mega), next.sptPending(mega), spt); err != nil {
		return err
	}
	for i, q := range basis {
		if err := checkedSub(bases[i], q); err != nil {
			return err
		}
	}
	*b = next
	return nil
}

func (b *Balances) endPendingWithdrawal(spt uint64, mega bool) error {
	return checkedSub(b.sptPending(mega), spt)
}

// Add adds every field of other to b.
func (b *Balances) Add(other Balances) error {
	next := *b
	fields := []struct {
		dst *uint64
		v   uint64
	}{
		{&next.SptAmount, other.SptAmount},
		{&next.SptMegaAmount, other.SptMegaAmount},
		{&next.SptPendingWithdrawals, other.SptPendingWithdrawals},
		{&next.SptMegaPendingWithdrawals, other.SptMegaPendingWithdrawals},
		{&next.StakeIntent, other.StakeIntent},
		{&next.MegaStakeIntent, other.MegaStakeIntent},
		{&next.CostBasis, other.CostBasis},
		{&next.MegaCostBasis, other.MegaCostBasis},
	}
	for _, f := range fields {
		if err := checkedAdd(f.dst, f.v); err != nil {
			return err
		}
	}
	*b = next
	return nil
}

// Sub subtracts every field of other from b.
func (b *Balances) Sub(other Balances) error {
	next := *b
	fields := []struct {
		dst *uint64
		v   uint64
	}{
		{&next.SptAmount, other.SptAmount},
		{&next.SptMegaAmount, other.SptMegaAmount},
		{&next.SptPendingWithdrawals, other.SptPendingWithdrawals},
		{&next.SptMegaPendingWithdrawals, other.SptMegaPendingWithdrawals},
		{&next.StakeIntent, other.StakeIntent},
		{&next.MegaStakeIntent, other.MegaStakeIntent},
		{&next.CostBasis, other.CostBasis},
		{&next.MegaCostBasis, other.MegaCostBasis},
	}
	for _, f := range fields {
		if err := checkedSub(f.dst, f.v); err != nil {
			return err
		}
	}
	*b = next
	return nil
}

// Book is a partition of a member's balances owned by a single key.
type Book struct {
	Owner    Address  `json:"owner"`
	Balances Balances `json:"balances"`
}

func checkedAdd(dst *uint64, v uint64) error {
	sum, overflow := math.SafeAdd(*dst, v)
	if overflow {
		return fmt.Errorf("%w: %v + %v overflows", ErrorCheckedFailure, *dst, v)
	}
	*dst = sum
	return nil
}

func checkedSub(dst *uint64, v uint64) error {
	diff, underflow := math.SafeSub(*dst, v)
	if underflow {
		return fmt.Errorf("%w: %v - %v underflows", ErrorCheckedFailure, *dst, v)
	}
	*dst = diff
	return nil
}

// checkedMove subtracts v from src and adds it to dst. Neither is modified
// on failure.
func checkedMove(src, dst *uint64, v uint64) error {
	s, d := *src, *dst
	if err := checkedSub(&s, v); err != nil {
		return err
	}
	if err := checkedAdd(&d, v); err != nil {
		return err
	}
	*src, *dst = s, d
	return nil
}
