package usecase_test

import (
	"context"
	"testing"

	"registry/domain"
	"registry/domain/ledger"
	"registry/interface/repository"
	"registry/usecase"

	"github.com/stretchr/testify/require"
)

const (
	testThreshold          = 2 * domain.MegaMultiplier
	testWithdrawalTimelock = 100
	testPremium            = 400
)

func addr(name string) domain.Address {
	return domain.DeriveAddress(domain.ZeroAddress, []byte(name))
}

var (
	registrarAddr = addr("registrar")
	authority     = addr("authority")
	mint          = addr("mint")
	megaMint      = addr("mega-mint")
	pool          = addr("pool")
	megaPool      = addr("mega-pool")

	leader  = addr("leader")
	entity  = addr("entity")
	entity2 = addr("entity-2")
	member  = addr("member")

	alice            = addr("alice")
	aliceAccount     = addr("alice-account")
	aliceMegaAccount = addr("alice-mega-account")
	dave             = addr("dave")
	daveAccount      = addr("dave-account")
	daveMegaAccount  = addr("dave-mega-account")
	watch            = addr("watch")
	watchDst         = addr("watch-dst")
)

type testClock struct {
	now int64
}

func (c *testClock) Now() int64 {
	return c.now
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	store    *repository.MemoryStore
	clock    *testClock
	registry *usecase.RegistryInteractor
}

// newHarness bootstraps a registrar whose entities activate at two mega
// units worth of stake, with one entity and no members.
func newHarness(t *testing.T) *harness {
	return newHarnessWithTimelocks(t, testWithdrawalTimelock, testPremium)
}

func newHarnessWithTimelocks(t *testing.T, withdrawalTimelock, premium int64) *harness {
	store := repository.NewMemoryStore()
	clock := &testClock{now: 1000}
	h := &harness{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		clock:    clock,
		registry: usecase.NewRegistryInteractor(store, clock, store),
	}

	err := h.registry.Bootstrap(h.ctx, usecase.BootstrapRequest{
		Initialize: usecase.InitializeRequest{
			Registrar:                   registrarAddr,
			Authority:                   authority,
			RewardActivationThreshold:   testThreshold,
			WithdrawalTimelock:          withdrawalTimelock,
			DeactivationTimelockPremium: premium,
			Mint:                        mint,
			MegaMint:                    megaMint,
			Pool:                        pool,
			MegaPool:                    megaPool,
			Signers:                     usecase.Signers{authority},
		},
		PoolTokenMint:     addr("pool-token-mint"),
		MegaPoolTokenMint: addr("mega-pool-token-mint"),
		Accounts: []usecase.GenesisAccount{
			{Address: aliceAccount, Mint: mint, Owner: alice, Amount: 10_000},
			{Address: aliceMegaAccount, Mint: megaMint, Owner: alice, Amount: 10},
			{Address: daveAccount, Mint: mint, Owner: dave, Amount: 1_000},
			{Address: daveMegaAccount, Mint: megaMint, Owner: dave, Amount: 10},
			{Address: watchDst, Mint: mint, Owner: addr("watch-owner")},
		},
	})
	require.NoError(t, err)

	h.createEntity(entity)
	return h
}

func (h *harness) createEntity(address domain.Address) {
	err := h.registry.CreateEntity(h.ctx, usecase.CreateEntityRequest{
		Registrar: registrarAddr,
		Entity:    address,
		Leader:    leader,
		Signers:   usecase.Signers{leader},
	})
	require.NoError(h.t, err)
}

func (h *harness) createMember(delegate domain.Address, watchtower domain.Watchtower) {
	signers := usecase.Signers{alice}
	if !delegate.IsZero() {
		signers = append(signers, delegate)
	}
	err := h.registry.CreateMember(h.ctx, usecase.CreateMemberRequest{
		Registrar:   registrarAddr,
		Entity:      entity,
		Member:      member,
		Beneficiary: alice,
		Delegate:    delegate,
		Watchtower:  watchtower,
		Signers:     signers,
	})
	require.NoError(h.t, err)
}

func (h *harness) deposit(amount uint64, mega bool) error {
	depositor := aliceAccount
	if mega {
		depositor = aliceMegaAccount
	}
	return h.registry.Deposit(h.ctx, usecase.DepositRequest{
		Member:    member,
		Depositor: depositor,
		Authority: alice,
		Amount:    amount,
		Mega:      mega,
		Signers:   usecase.Signers{alice},
	})
}

func (h *harness) stake(spt uint64, mega bool) error {
	accounts := []domain.Address{aliceAccount}
	if mega {
		accounts = []domain.Address{aliceMegaAccount, aliceAccount}
	}
	return h.registry.Stake(h.ctx, usecase.StakeRequest{
		Member:        member,
		Spt:           spt,
		Mega:          mega,
		AssetAccounts: accounts,
		Authority:     alice,
		Signers:       usecase.Signers{alice},
	})
}

// activate brings the entity to exactly the threshold: one mega unit of
// stake intent plus one mega pool token.
func (h *harness) activate() {
	require.NoError(h.t, h.deposit(1, true))
	require.NoError(h.t, h.stake(1, true))
	require.True(h.t, h.entity(entity).IsActive())
}

// deactivate drops the entity below the threshold and waits out the
// deactivation timelock.
func (h *harness) deactivate() {
	err := h.registry.Withdraw(h.ctx, usecase.WithdrawRequest{
		Member:      member,
		Destination: aliceMegaAccount,
		Amount:      1,
		Mega:        true,
		Signers:     usecase.Signers{alice},
	})
	require.NoError(h.t, err)
	require.Equal(h.t, domain.EntityStatePendingDeactivation, h.entity(entity).State.Kind)

	h.clock.now += testWithdrawalTimelock + testPremium + 1
	h.refresh()
	require.True(h.t, h.entity(entity).IsInactive())
}

func (h *harness) refresh() int {
	count, err := h.registry.Refresh(h.ctx, usecase.RefreshRequest{Registrar: registrarAddr})
	require.NoError(h.t, err)
	return count
}

// reward grows a pool's primary asset vault without minting pool tokens.
func (h *harness) reward(poolAddress domain.Address, amount uint64) {
	err := h.store.Transact(h.ctx, func(tx usecase.Tx) error {
		return tx.Genesis().MintTo(ledger.PoolVault(poolAddress, 0), mint, amount)
	})
	require.NoError(h.t, err)
}

func (h *harness) registrar() *domain.Registrar {
	registrar, err := h.registry.GetRegistrar(h.ctx, registrarAddr)
	require.NoError(h.t, err)
	return registrar
}

func (h *harness) entity(address domain.Address) *domain.Entity {
	status, err := h.registry.GetEntity(h.ctx, address)
	require.NoError(h.t, err)
	return &status.Entity
}

func (h *harness) member() *domain.Member {
	m, err := h.registry.GetMember(h.ctx, member)
	require.NoError(h.t, err)
	return m
}

func (h *harness) balance(account domain.Address) uint64 {
	a, err := h.registry.GetTokenAccount(h.ctx, account)
	require.NoError(h.t, err)
	return a.Amount
}
