package usecase

import (
	"context"
	"fmt"

	"registry/domain"
)

// EntityStatus is an entity together with its activation amount at the
// current pool prices.
type EntityStatus struct {
	Address          domain.Address
	Entity           domain.Entity
	ActivationAmount uint64
	Meets            bool
}

func (interactor *RegistryInteractor) GetRegistrar(ctx context.Context, address domain.Address) (*domain.Registrar, error) {
	var result *domain.Registrar
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		registrar, err := loadRegistrar(tx, address)
		result = registrar
		return err
	})
	return result, err
}

func (interactor *RegistryInteractor) GetEntity(ctx context.Context, address domain.Address) (*EntityStatus, error) {
	var result *EntityStatus
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		entity, err := tx.Entity(address)
		if err != nil {
			return fmt.Errorf("entity %v: %w", address, err)
		}
		registrar, err := loadRegistrar(tx, entity.Registrar)
		if err != nil {
			return err
		}
		stakeCtx, err := fetchStakeContext(tx, registrar)
		if err != nil {
			return err
		}
		amount, err := entity.ActivationAmount(stakeCtx)
		if err != nil {
			return err
		}
		meets, err := entity.MeetsActivationRequirements(stakeCtx, registrar)
		if err != nil {
			return err
		}
		result = &EntityStatus{Address: address, Entity: *entity, ActivationAmount: amount, Meets: meets}
		return nil
	})
	return result, err
}

func (interactor *RegistryInteractor) ListEntities(ctx context.Context, registrar domain.Address) ([]domain.Address, error) {
	var result []domain.Address
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		entities, err := tx.Entities(registrar)
		result = entities
		return err
	})
	return result, err
}

func (interactor *RegistryInteractor) GetMember(ctx context.Context, address domain.Address) (*domain.Member, error) {
	var result *domain.Member
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		member, err := loadMember(tx, address)
		result = member
		return err
	})
	return result, err
}

func (interactor *RegistryInteractor) GetPendingWithdrawal(ctx context.Context, address domain.Address) (*domain.PendingWithdrawal, error) {
	var result *domain.PendingWithdrawal
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		pw, err := tx.PendingWithdrawal(address)
		if err != nil {
			return fmt.Errorf("pending withdrawal %v: %w", address, err)
		}
		result = pw
		return nil
	})
	return result, err
}

func (interactor *RegistryInteractor) GetTokenAccount(ctx context.Context, address domain.Address) (*domain.TokenAccount, error) {
	var result *domain.TokenAccount
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		account, err := tx.Tokens().Account(address)
		if err != nil {
			return fmt.Errorf("token account %v: %w", address, err)
		}
		result = account
		return nil
	})
	return result, err
}

func (interactor *RegistryInteractor) Operations(limit int) ([]domain.Operation, error) {
	if interactor.journal == nil {
		return []domain.Operation{}, nil
	}
	return interactor.journal.FindAll(limit)
}
