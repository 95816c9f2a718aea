package repository

import (
	"context"
	"fmt"
	"testing"

	"registry/domain"
	"registry/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(name string) domain.Address {
	return domain.DeriveAddress(domain.ZeroAddress, []byte(name))
}

var (
	testRegistrar = testAddress("registrar")
	testLeader    = testAddress("leader")
)

func putEntity(t *testing.T, store *MemoryStore, address domain.Address) {
	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		return tx.PutEntity(address, domain.NewEntity(testRegistrar, testLeader, 0, domain.StakeKind(0)))
	})
	require.NoError(t, err)
}

func TestTransactCommits(t *testing.T) {
	store := NewMemoryStore()
	address := testAddress("entity")
	putEntity(t, store, address)

	key := recordKey{kindEntity, address}
	assert.Equal(t, int64(1), store.records[key].Version)

	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		entity, err := tx.Entity(address)
		if err != nil {
			return err
		}
		entity.Capabilities = 7
		return tx.PutEntity(address, entity)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.records[key].Version)
}

func TestTransactRollsBack(t *testing.T) {
	store := NewMemoryStore()
	address := testAddress("entity")
	putEntity(t, store, address)

	failure := fmt.Errorf("boom")
	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		entity, err := tx.Entity(address)
		if err != nil {
			return err
		}
		entity.Capabilities = 7
		if err := tx.PutEntity(address, entity); err != nil {
			return err
		}
		return failure
	})
	require.ErrorIs(t, err, failure)

	err = store.Transact(context.Background(), func(tx usecase.Tx) error {
		entity, err := tx.Entity(address)
		if err != nil {
			return err
		}
		assert.Equal(t, uint32(0), entity.Capabilities)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.records[recordKey{kindEntity, address}].Version)
}

func TestTransactSkipsUnchangedRecords(t *testing.T) {
	store := NewMemoryStore()
	address := testAddress("entity")
	putEntity(t, store, address)

	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		entity, err := tx.Entity(address)
		if err != nil {
			return err
		}
		return tx.PutEntity(address, entity)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), store.records[recordKey{kindEntity, address}].Version)
}

func TestTransactMissingRecord(t *testing.T) {
	store := NewMemoryStore()
	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		_, err := tx.Member(testAddress("nobody"))
		return err
	})
	require.ErrorIs(t, err, domain.ErrorRecordNotFound)
	assert.Empty(t, store.records)
}

func TestTransactCanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Transact(ctx, func(tx usecase.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestCommitDetectsConcurrentModification(t *testing.T) {
	store := NewMemoryStore()
	address := testAddress("entity")
	putEntity(t, store, address)

	// Two working sets read the same version; the second commit loses.
	first := newUnitOfWork(memorySource{store: store})
	second := newUnitOfWork(memorySource{store: store})
	for i, u := range []*unitOfWork{first, second} {
		entity, err := u.Entity(address)
		require.NoError(t, err)
		entity.Capabilities = uint32(i + 1)
		require.NoError(t, u.PutEntity(address, entity))
	}

	require.NoError(t, first.commit())
	require.ErrorIs(t, second.commit(), domain.ErrorConcurrentModification)
	assert.Equal(t, int64(2), store.records[recordKey{kindEntity, address}].Version)
}

func TestCommitDetectsPhantomCreate(t *testing.T) {
	store := NewMemoryStore()
	address := testAddress("entity")

	u := newUnitOfWork(memorySource{store: store})
	_, err := u.Entity(address)
	require.ErrorIs(t, err, domain.ErrorRecordNotFound)
	require.NoError(t, u.PutEntity(address, domain.NewEntity(testRegistrar, testLeader, 0, domain.StakeKind(0))))

	putEntity(t, store, address)
	require.ErrorIs(t, u.commit(), domain.ErrorConcurrentModification)
}

func TestEntitiesIncludesUncommitted(t *testing.T) {
	store := NewMemoryStore()
	a := testAddress("entity-a")
	b := testAddress("entity-b")
	putEntity(t, store, a)

	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		other := domain.NewEntity(testAddress("other-registrar"), testLeader, 0, domain.StakeKind(0))
		if err := tx.PutEntity(testAddress("foreign"), other); err != nil {
			return err
		}
		if err := tx.PutEntity(b, domain.NewEntity(testRegistrar, testLeader, 0, domain.StakeKind(0))); err != nil {
			return err
		}

		entities, err := tx.Entities(testRegistrar)
		if err != nil {
			return err
		}
		assert.ElementsMatch(t, []domain.Address{a, b}, entities)
		return nil
	})
	require.NoError(t, err)
}

func TestTokenEffectsCommitWithRecords(t *testing.T) {
	store := NewMemoryStore()
	mint := testAddress("mint")
	account := testAddress("account")

	err := store.Transact(context.Background(), func(tx usecase.Tx) error {
		if err := tx.Genesis().InitAccount(account, mint, testLeader); err != nil {
			return err
		}
		return tx.Genesis().MintTo(account, mint, 50)
	})
	require.NoError(t, err)

	err = store.Transact(context.Background(), func(tx usecase.Tx) error {
		if err := tx.Genesis().MintTo(account, mint, 25); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	err = store.Transact(context.Background(), func(tx usecase.Tx) error {
		a, err := tx.Tokens().Account(account)
		require.NoError(t, err)
		assert.Equal(t, uint64(50), a.Amount)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryJournal(t *testing.T) {
	store := NewMemoryStore()
	for _, kind := range []string{"a", "b", "c"} {
		op := domain.NewOperation(kind, nil, 0, nil)
		require.NoError(t, store.Record(op))
		assert.NotZero(t, op.Id)
	}

	ops, err := store.FindAll(2)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "c", ops[0].Kind)
	assert.Equal(t, int64(3), ops[0].Id)
	assert.Equal(t, "b", ops[1].Kind)

	ops, err = store.FindAll(-1)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestMemoryMemos(t *testing.T) {
	store := NewMemoryStore()
	memos := usecase.NewMemoInteractor(store)

	last, err := memos.GetLastRefresh(testRegistrar)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, memos.SetLastRefresh(testRegistrar, 1234, 3))
	last, err = memos.GetLastRefresh(testRegistrar)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, domain.RefreshMemo{Registrar: testRegistrar, LastRefreshTs: 1234, Entities: 3}, *last)
}
