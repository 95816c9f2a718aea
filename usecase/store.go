package usecase

import (
	"context"

	"registry/domain"
)

// Tx is an isolated working set of records. Nothing it holds is visible to
// other operations until Store.Transact commits it.
type Tx interface {
	Registrar(address domain.Address) (*domain.Registrar, error)
	Entity(address domain.Address) (*domain.Entity, error)
	Member(address domain.Address) (*domain.Member, error)
	PendingWithdrawal(address domain.Address) (*domain.PendingWithdrawal, error)

	PutRegistrar(address domain.Address, registrar *domain.Registrar) error
	PutEntity(address domain.Address, entity *domain.Entity) error
	PutMember(address domain.Address, member *domain.Member) error
	PutPendingWithdrawal(address domain.Address, pw *domain.PendingWithdrawal) error

	// Entities lists the entities registered with a registrar.
	Entities(registrar domain.Address) ([]domain.Address, error)

	Tokens() domain.TokenProgram
	Pools() domain.PoolProgram
	Genesis() Genesis
}

// Genesis creates the token balances and pools a registrar starts from.
type Genesis interface {
	InitAccount(address, mint, owner domain.Address) error
	MintTo(to, mint domain.Address, amount uint64) error
	InitPool(pool, poolTokenMint, admin domain.Address, assetMints []domain.Address) error
}

// Store runs fn against a fresh working set and commits it atomically when
// fn returns nil. A commit is rejected when a record fn read was changed
// by another operation in between.
type Store interface {
	Transact(ctx context.Context, fn func(tx Tx) error) error
}

// OperationJournal keeps the history of executed operations.
type OperationJournal interface {
	Record(op *domain.Operation) error
	FindAll(limit int) ([]domain.Operation, error)
}
