package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistrar(threshold uint64, withdrawal, premium int64) *Registrar {
	return &Registrar{
		Initialized:                 true,
		RewardActivationThreshold:   threshold,
		WithdrawalTimelock:          withdrawal,
		DeactivationTimelockPremium: premium,
	}
}

// unitCtx prices a pool token at one primary unit and a mega pool token at
// one primary unit with no mega asset.
func unitCtx() *StakeContext {
	return &StakeContext{
		Basket:     Basket{Quantities: []uint64{1}},
		MegaBasket: Basket{Quantities: []uint64{0, 1}},
	}
}

func TestDeactivationTimelock(t *testing.T) {
	timelock, err := testRegistrar(0, 100, 400).DeactivationTimelock()
	require.NoError(t, err)
	assert.Equal(t, int64(500), timelock)

	_, err = testRegistrar(0, math.MaxInt64-500, 501).DeactivationTimelock()
	require.ErrorIs(t, err, ErrorCheckedFailure)
}

func TestAddSeconds(t *testing.T) {
	tests := []struct {
		name    string
		ts      int64
		seconds int64
		want    int64
		wantErr bool
	}{
		{name: "plain", ts: 1000, seconds: 500, want: 1500},
		{name: "negative", ts: 1000, seconds: -1500, want: -500},
		{name: "max", ts: math.MaxInt64 - 1, seconds: 1, want: math.MaxInt64},
		{name: "overflow", ts: 1000, seconds: math.MaxInt64 - 500, wantErr: true},
		{name: "underflow", ts: math.MinInt64 + 1, seconds: -2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddSeconds(tt.ts, tt.seconds)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrorCheckedFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActivationAmount(t *testing.T) {
	e := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	e.Balances = Balances{SptAmount: 10, SptMegaAmount: 2, StakeIntent: 7, MegaStakeIntent: 1}

	amount, err := e.ActivationAmount(unitCtx())
	require.NoError(t, err)
	assert.Equal(t, uint64(10+2+7+MegaMultiplier), amount)
}

func TestActivationAtThreshold(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, 10, 10)
	e := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)

	// 998 primary pool tokens and one mega pool token worth one unit.
	require.NoError(t, e.SptAdd(998, []uint64{998}, false))
	require.NoError(t, e.SptAdd(1, []uint64{0, 1}, true))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, 0))
	assert.True(t, e.IsInactive())
	assert.Equal(t, uint64(0), e.Generation)

	require.NoError(t, e.AddStakeIntent(1, false))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, 1))
	assert.True(t, e.IsActive())
	assert.Equal(t, uint64(1), e.Generation)
}

func TestActivationNeedsMegaStake(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, 10, 10)
	e := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	require.NoError(t, e.SptAdd(5000, []uint64{5000}, false))
	require.NoError(t, e.AddStakeIntent(1, true))

	meets, err := e.MeetsActivationRequirements(ctx, registrar)
	require.NoError(t, err)
	assert.False(t, meets)
}

func activeEntity(t *testing.T, ctx *StakeContext, registrar *Registrar) *Entity {
	e := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	require.NoError(t, e.SptAdd(1000, []uint64{1000}, false))
	require.NoError(t, e.SptAdd(1, []uint64{0, 1}, true))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, 0))
	require.True(t, e.IsActive())
	return e
}

func TestDeactivationTimelockScenario(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, 200, 300)
	e := activeEntity(t, ctx, registrar)

	const t0 = 1_000
	require.NoError(t, e.SptSub(500, []uint64{500}, false))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, t0))
	assert.Equal(t, EntityState{Kind: EntityStatePendingDeactivation, DeactivationStartTs: t0, Timelock: 500}, e.State)

	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, t0+499))
	assert.Equal(t, EntityStatePendingDeactivation, e.State.Kind)

	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, t0+501))
	assert.True(t, e.IsInactive())
	assert.Equal(t, uint64(1), e.Generation)
}

func TestDeactivationDeadlinePastRangeIsNeverReached(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, math.MaxInt64-500, 400)
	e := activeEntity(t, ctx, registrar)

	const t0 = 1_000
	require.NoError(t, e.SptSub(500, []uint64{500}, false))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, t0))
	require.Equal(t, EntityStatePendingDeactivation, e.State.Kind)

	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, t0+1))
	assert.Equal(t, EntityStatePendingDeactivation, e.State.Kind)
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, math.MaxInt64))
	assert.Equal(t, EntityStatePendingDeactivation, e.State.Kind)
}

func TestDeactivationWithOverflowingTimelockFails(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, math.MaxInt64, 1)
	e := activeEntity(t, ctx, registrar)

	require.NoError(t, e.SptSub(500, []uint64{500}, false))
	require.ErrorIs(t, e.TransitionActivationIfNeeded(ctx, registrar, 1_000), ErrorCheckedFailure)
	assert.True(t, e.IsActive())
}

func TestPendingDeactivationRecovers(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, 200, 300)
	e := activeEntity(t, ctx, registrar)

	require.NoError(t, e.SptSub(2, []uint64{2}, false))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, 10))
	require.Equal(t, EntityStatePendingDeactivation, e.State.Kind)

	require.NoError(t, e.AddStakeIntent(1, false))
	require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, 20))
	assert.True(t, e.IsActive())
	assert.Equal(t, uint64(1), e.Generation, "recovering from pending deactivation keeps the generation")
}

func TestGenerationIncrementsOnlyOnActivation(t *testing.T) {
	ctx, registrar := unitCtx(), testRegistrar(1000, 0, 0)
	e := activeEntity(t, ctx, registrar)

	for round := uint64(1); round <= 3; round++ {
		require.Equal(t, round, e.Generation)

		require.NoError(t, e.SptSub(1000, []uint64{1000}, false))
		require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, int64(round*10)))
		require.Equal(t, EntityStatePendingDeactivation, e.State.Kind)
		require.Equal(t, round, e.Generation)

		require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, int64(round*10+1)))
		require.True(t, e.IsInactive())
		require.Equal(t, round, e.Generation)

		require.NoError(t, e.PendingSub(1000, false))
		require.NoError(t, e.SptAdd(1000, []uint64{1000}, false))
		require.NoError(t, e.TransitionActivationIfNeeded(ctx, registrar, int64(round*10+2)))
		require.True(t, e.IsActive())
	}
	assert.Equal(t, uint64(4), e.Generation)
}

func TestEntityBookkeepingUnderflowFails(t *testing.T) {
	e := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	require.ErrorIs(t, e.SubStakeIntent(1, false), ErrorInsufficientStakeIntentBalance)
	require.ErrorIs(t, e.SptSub(1, []uint64{0}, false), ErrorInsufficientStakeBalance)
	require.ErrorIs(t, e.PendingSub(1, true), ErrorCheckedFailure)
	assert.True(t, e.Balances.IsEmpty())
}

func TestSwitchMovesBalances(t *testing.T) {
	from := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	to := NewEntity(ZeroAddress, ZeroAddress, 0, StakeKindDelegated)
	m := NewMember(ZeroAddress, ZeroAddress, ZeroAddress, ZeroAddress, 0)

	require.NoError(t, m.StakeIntentDidDeposit(50, false, false))
	require.NoError(t, from.AddStakeIntent(50, false))
	require.NoError(t, m.SptDidCreate(unitCtx(), 20, []uint64{20}, false, true))
	require.NoError(t, from.SptAdd(20, []uint64{20}, false))
	_, err := m.SptDidRedeem(5, []uint64{5}, false, true)
	require.NoError(t, err)
	require.NoError(t, from.SptSub(5, []uint64{5}, false))

	require.NoError(t, from.RemoveMember(m))
	require.NoError(t, to.AddMember(m))
	require.NoError(t, from.TransferPendingWithdrawal(to, 5, false))

	total, err := m.TotalBalances()
	require.NoError(t, err)
	assert.True(t, from.Balances.IsEmpty())
	assert.Equal(t, total, to.Balances)
}

func TestCapabilities(t *testing.T) {
	e := NewEntity(ZeroAddress, ZeroAddress, 1<<3|1<<31, StakeKindVoting)
	assert.True(t, e.HasCapability(3))
	assert.True(t, e.HasCapability(31))
	assert.False(t, e.HasCapability(4))
	assert.False(t, e.HasCapability(32))

	r := testRegistrar(0, 0, 0)
	require.NoError(t, r.RegisterCapability(31, 25))
	assert.Equal(t, uint32(25), r.CapabilityFees[31])
	require.ErrorIs(t, r.RegisterCapability(32, 25), ErrorInvalidCapabilityId)
}
