package usecase

import (
	"context"
	"fmt"

	"registry/domain"
)

// Stake buys pool tokens with assets from outside the registry. The entity
// must meet its activation requirements once the stake is added.
func (interactor *RegistryInteractor) Stake(ctx context.Context, req StakeRequest) error {
	return interactor.execute(ctx, OperationStake, &req, func(tx Tx, now int64) error {
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
			price, err := scope.stakeCtx.BasketQuantities(req.Spt, req.Mega)
			if err != nil {
				return err
			}
			if err := checkStake(scope, member, req.Spt, price, req.Mega, false); err != nil {
				return err
			}

			basket, err := tx.Pools().Create(domain.PoolRequest{
				Pool:             scope.registrar.PoolAddress(req.Mega),
				Spt:              req.Spt,
				AssetAccounts:    req.AssetAccounts,
				PoolTokenAccount: scope.registrar.PoolTokenVaultAddress(req.Mega),
				Authority:        req.Authority,
				Admin:            scope.vaultSigner,
			})
			if err != nil {
				return err
			}

			if err := member.SptDidCreate(scope.stakeCtx, req.Spt, basket.Quantities, req.Mega, req.Delegate); err != nil {
				return err
			}
			if err := scope.entity.SptAdd(req.Spt, basket.Quantities, req.Mega); err != nil {
				return err
			}
			return scope.joinGeneration(tx, req.Member, member)
		})
	})
}

// TransferStakeIntent buys pool tokens with the member's stake intent. The
// mega pool charges both assets.
func (interactor *RegistryInteractor) TransferStakeIntent(ctx context.Context, req TransferStakeIntentRequest) error {
	return interactor.execute(ctx, OperationTransferStakeIntent, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, req.Delegate); err != nil {
			return err
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(scope *entityScope) error {
			price, err := scope.stakeCtx.BasketQuantities(req.Spt, req.Mega)
			if err != nil {
				return err
			}
			// The member book must cover the price before any funds move.
			candidate := *member
			if err := candidate.StakeIntentDidTransfer(scope.stakeCtx, req.Spt, price, req.Mega, req.Delegate); err != nil {
				return err
			}
			if err := checkStake(scope, member, req.Spt, price, req.Mega, true); err != nil {
				return err
			}

			registrar := scope.registrar
			basket, err := tx.Pools().Create(domain.PoolRequest{
				Pool:             registrar.PoolAddress(req.Mega),
				Spt:              req.Spt,
				AssetAccounts:    basketAccounts(req.Mega, registrar.Vault, registrar.MegaVault),
				PoolTokenAccount: registrar.PoolTokenVaultAddress(req.Mega),
				Authority:        scope.vaultSigner,
				Admin:            scope.vaultSigner,
			})
			if err != nil {
				return err
			}

			if err := member.StakeIntentDidTransfer(scope.stakeCtx, req.Spt, basket.Quantities, req.Mega, req.Delegate); err != nil {
				return err
			}
			if err := scope.entity.SptConvert(req.Spt, basket.Quantities, req.Mega); err != nil {
				return err
			}
			return scope.joinGeneration(tx, req.Member, member)
		})
	})
}

// joinGeneration stamps the member with the generation its new stake
// belongs to. The entity is transitioned first, so stake that activates the
// entity joins the new generation.
func (scope *entityScope) joinGeneration(tx Tx, address domain.Address, member *domain.Member) error {
	if err := scope.transition(); err != nil {
		return err
	}
	member.Generation = scope.entity.Generation
	return tx.PutMember(address, member)
}
