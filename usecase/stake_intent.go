package usecase

import (
	"context"
	"fmt"

	"registry/domain"
)

// Deposit adds assets to the member's stake intent. Stake intent counts
// toward activation but earns no rewards until it is staked.
func (interactor *RegistryInteractor) Deposit(ctx context.Context, req DepositRequest) error {
	return interactor.execute(ctx, OperationDeposit, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, req.Delegate); err != nil {
			return err
		}
		if !req.Signers.Has(req.Authority) {
			return fmt.Errorf("%w: token authority %v did not sign", domain.ErrorUnauthorized, req.Authority)
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(scope *entityScope) error {
			vault := scope.registrar.StakeIntentVault(req.Mega)
			if err := tx.Tokens().Transfer(req.Depositor, vault, req.Authority, req.Amount); err != nil {
				return err
			}
			if err := member.StakeIntentDidDeposit(req.Amount, req.Mega, req.Delegate); err != nil {
				return err
			}
			if err := scope.entity.AddStakeIntent(req.Amount, req.Mega); err != nil {
				return err
			}
			return tx.PutMember(req.Member, member)
		})
	})
}

// withdrawalDestination authorizes a stake intent withdrawal and resolves
// where the funds go. The watchtower may only empty the main book, and only
// to its own destination.
func withdrawalDestination(tx Tx, member *domain.Member, req WithdrawRequest) (domain.Address, error) {
	if req.Signers.Has(member.Beneficiary) {
		if err := authorizeMember(member, req.Signers, req.Delegate); err != nil {
			return domain.ZeroAddress, err
		}
		if req.Destination.IsZero() {
			return domain.ZeroAddress, invalid("destination is required")
		}
		if req.Delegate {
			account, err := tx.Tokens().Account(req.Destination)
			if err != nil {
				return domain.ZeroAddress, err
			}
			if account.Owner != member.Books.Delegate.Owner {
				return domain.ZeroAddress, fmt.Errorf("%w: delegate funds must return to the delegate", domain.ErrorInvalidAccountOwner)
			}
		}
		return req.Destination, nil
	}

	watchtower := member.Watchtower
	if !watchtower.IsSet() || !req.Signers.Has(watchtower.Authority) {
		return domain.ZeroAddress, fmt.Errorf("%w: neither beneficiary nor watchtower signed", domain.ErrorUnauthorized)
	}
	if req.Delegate {
		return domain.ZeroAddress, fmt.Errorf("%w: watchtower cannot withdraw delegate funds", domain.ErrorUnauthorized)
	}
	dst := watchtower.Dst
	if req.Mega {
		dst = watchtower.MegaDst
	}
	if dst.IsZero() {
		return domain.ZeroAddress, invalid("watchtower has no destination for this asset")
	}
	if !req.Destination.IsZero() && req.Destination != dst {
		return domain.ZeroAddress, fmt.Errorf("%w: watchtower must withdraw to %v", domain.ErrorUnauthorized, dst)
	}
	return dst, nil
}

// Withdraw returns stake intent from the registrar vault.
func (interactor *RegistryInteractor) Withdraw(ctx context.Context, req WithdrawRequest) error {
	return interactor.execute(ctx, OperationWithdraw, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		dst, err := withdrawalDestination(tx, member, req)
		if err != nil {
			return err
		}
		if balance := member.StakeIntent(req.Mega, req.Delegate); balance < req.Amount {
			return fmt.Errorf("%w: have %v, want %v", domain.ErrorInsufficientStakeIntentBalance, balance, req.Amount)
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(scope *entityScope) error {
			vault := scope.registrar.StakeIntentVault(req.Mega)
			if err := tx.Tokens().Transfer(vault, dst, scope.vaultSigner, req.Amount); err != nil {
				return err
			}
			if err := member.StakeIntentDidWithdraw(req.Amount, req.Mega, req.Delegate); err != nil {
				return err
			}
			if err := scope.entity.SubStakeIntent(req.Amount, req.Mega); err != nil {
				return err
			}
			return tx.PutMember(req.Member, member)
		})
	})
}
