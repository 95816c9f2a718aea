package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
)

type EntityStateKind uint8

const (
	// The entity is not eligible for rewards. Redeeming pool tokens returns at
	// most the value they were last created at.
	EntityStateInactive EntityStateKind = iota
	// The entity counts down to Inactive unless members stake enough again.
	EntityStatePendingDeactivation
	// The entity is eligible for rewards and accepts new stake.
	EntityStateActive
)

func (k EntityStateKind) String() string {
	switch k {
	case EntityStateInactive:
		return "inactive"
	case EntityStatePendingDeactivation:
		return "pending_deactivation"
	case EntityStateActive:
		return "active"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

type EntityState struct {
	Kind EntityStateKind `json:"kind"`
	// Only meaningful while pending deactivation.
	DeactivationStartTs int64 `json:"deactivation_start_ts,omitempty"`
	Timelock            int64 `json:"timelock,omitempty"`
}

func (s EntityState) String() string {
	if s.Kind == EntityStatePendingDeactivation {
		return fmt.Sprintf("%v(start=%v, timelock=%v)", s.Kind, s.DeactivationStartTs, s.Timelock)
	}
	return s.Kind.String()
}

type StakeKind uint8

const (
	StakeKindDelegated StakeKind = iota
	StakeKindVoting
)

func (k StakeKind) String() string {
	if k == StakeKindVoting {
		return "voting"
	}
	return "delegated"
}

// Entity is a node that members stake with. Its balances are the sum of the
// books of all its members.
type Entity struct {
	Initialized  bool      `json:"initialized"`
	Registrar    Address   `json:"registrar"`
	Leader       Address   `json:"leader"`
	Capabilities uint32    `json:"capabilities"`
	StakeKind    StakeKind `json:"stake_kind"`
	// Generation is incremented on every Inactive to Active transition.
	Generation uint64      `json:"generation"`
	State      EntityState `json:"state"`
	Balances   Balances    `json:"balances"`
}

func NewEntity(registrar, leader Address, capabilities uint32, stakeKind StakeKind) *Entity {
	return &Entity{
		Initialized:  true,
		Registrar:    registrar,
		Leader:       leader,
		Capabilities: capabilities,
		StakeKind:    stakeKind,
	}
}

func (e *Entity) IsActive() bool {
	return e.State.Kind == EntityStateActive
}

func (e *Entity) IsInactive() bool {
	return e.State.Kind == EntityStateInactive
}

func (e *Entity) HasCapability(id uint8) bool {
	return id < CapabilityLen && e.Capabilities&(1<<id) != 0
}

// ActivationAmount is the value of everything members have put into the
// entity, denominated in the primary asset.
func (e *Entity) ActivationAmount(ctx *StakeContext) (uint64, error) {
	spt, err := ctx.SrmEquivalent(e.Balances.SptAmount, false)
	if err != nil {
		return 0, err
	}
	megaSpt, err := ctx.SrmEquivalent(e.Balances.SptMegaAmount, true)
	if err != nil {
		return 0, err
	}
	megaIntent, overflow := math.SafeMul(e.Balances.MegaStakeIntent, MegaMultiplier)
	if overflow {
		return 0, fmt.Errorf("%w: mega stake intent equivalent", ErrorCheckedFailure)
	}

	total := spt
	for _, v := range []uint64{megaSpt, e.Balances.StakeIntent, megaIntent} {
		if err := checkedAdd(&total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MeetsActivationRequirements requires both the value threshold and at
// least one mega pool token.
func (e *Entity) MeetsActivationRequirements(ctx *StakeContext, registrar *Registrar) (bool, error) {
	amount, err := e.ActivationAmount(ctx)
	if err != nil {
		return false, err
	}
	return amount >= registrar.RewardActivationThreshold && e.Balances.SptMegaAmount >= 1, nil
}

// TransitionActivationIfNeeded runs one step of the activation state machine.
// It is evaluated before and after every mutation of the entity.
func (e *Entity) TransitionActivationIfNeeded(ctx *StakeContext, registrar *Registrar, now int64) error {
	meets, err := e.MeetsActivationRequirements(ctx, registrar)
	if err != nil {
		return err
	}

	switch e.State.Kind {
	case EntityStateInactive:
		if meets {
			e.State = EntityState{Kind: EntityStateActive}
			e.Generation++
		}
	case EntityStatePendingDeactivation:
		// A deadline past the int64 range is never reached.
		deadline, err := AddSeconds(e.State.DeactivationStartTs, e.State.Timelock)
		if err == nil && now > deadline {
			e.State = EntityState{Kind: EntityStateInactive}
		} else if meets {
			e.State = EntityState{Kind: EntityStateActive}
		}
	case EntityStateActive:
		if !meets {
			timelock, err := registrar.DeactivationTimelock()
			if err != nil {
				return err
			}
			e.State = EntityState{
				Kind:                EntityStatePendingDeactivation,
				DeactivationStartTs: now,
				Timelock:            timelock,
			}
		}
	}
	return nil
}

func (e *Entity) AddStakeIntent(amount uint64, mega bool) error {
	return e.Balances.depositStakeIntent(amount, mega)
}

func (e *Entity) SubStakeIntent(amount uint64, mega bool) error {
	return e.Balances.withdrawStakeIntent(amount, mega)
}

// SptAdd credits pool tokens bought from outside funds.
func (e *Entity) SptAdd(spt uint64, price []uint64, mega bool) error {
	return e.Balances.createSpt(spt, price, mega)
}

// SptConvert credits pool tokens paid for with stake intent.
func (e *Entity) SptConvert(spt uint64, price []uint64, mega bool) error {
	return e.Balances.convertStakeIntent(spt, price, mega)
}

// SptSub moves pool tokens into pending withdrawal, releasing basis.
func (e *Entity) SptSub(spt uint64, basis []uint64, mega bool) error {
	return e.Balances.redeemSpt(spt, basis, mega)
}

func (e *Entity) PendingSub(spt uint64, mega bool) error {
	return e.Balances.endPendingWithdrawal(spt, mega)
}

// TransferPendingWithdrawal moves in-flight withdrawals to another entity.
func (e *Entity) TransferPendingWithdrawal(to *Entity, spt uint64, mega bool) error {
	src, dst := e.Balances, to.Balances
	if err := checkedMove(src.sptPending(mega), dst.sptPending(mega), spt); err != nil {
		return err
	}
	e.Balances, to.Balances = src, dst
	return nil
}

// AddMember adds the member's settled balances. Pending withdrawals follow
// with TransferPendingWithdrawal.
func (e *Entity) AddMember(m *Member) error {
	total, err := settledBalances(m)
	if err != nil {
		return err
	}
	return e.Balances.Add(total)
}

func (e *Entity) RemoveMember(m *Member) error {
	total, err := settledBalances(m)
	if err != nil {
		return err
	}
	return e.Balances.Sub(total)
}

func settledBalances(m *Member) (Balances, error) {
	total, err := m.TotalBalances()
	if err != nil {
		return Balances{}, err
	}
	total.SptPendingWithdrawals = 0
	total.SptMegaPendingWithdrawals = 0
	return total, nil
}
