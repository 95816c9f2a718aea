package usecase

import (
	"context"
	"fmt"

	"registry/domain"
)

// StartStakeWithdrawal redeems pool tokens into the escrow and issues a
// receipt payable once the deactivation timelock has passed. On an inactive
// entity the tokens are marked to the price they were last created at and
// any excess is returned to the pool.
func (interactor *RegistryInteractor) StartStakeWithdrawal(ctx context.Context, req StartStakeWithdrawalRequest) error {
	return interactor.execute(ctx, OperationStartStakeWithdrawal, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, req.Delegate); err != nil {
			return err
		}
		if balance := member.Spt(req.Mega, req.Delegate); balance < req.Spt {
			return fmt.Errorf("%w: have %v, want %v", domain.ErrorInsufficientStakeBalance, balance, req.Spt)
		}
		_, err = tx.PendingWithdrawal(req.PendingWithdrawal)
		if err := checkVacant(err); err != nil {
			return fmt.Errorf("pending withdrawal %v: %w", req.PendingWithdrawal, err)
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(scope *entityScope) error {
			registrar := scope.registrar
			pool := registrar.PoolAddress(req.Mega)
			escrow := basketAccounts(req.Mega, registrar.Escrow.Vault, registrar.Escrow.MegaVault)

			basket, err := tx.Pools().Redeem(domain.PoolRequest{
				Pool:             pool,
				Spt:              req.Spt,
				AssetAccounts:    escrow,
				PoolTokenAccount: registrar.PoolTokenVaultAddress(req.Mega),
				Authority:        scope.vaultSigner,
				Admin:            scope.vaultSigner,
			})
			if err != nil {
				return err
			}

			price := basket.Quantities
			if scope.entity.IsInactive() && member.LastActiveStakeCtx != nil {
				price, err = markToLastActive(tx, scope, member, pool, escrow, req, basket.Quantities)
				if err != nil {
					return err
				}
			}

			redemption, err := member.SptDidRedeem(req.Spt, price, req.Mega, req.Delegate)
			if err != nil {
				return err
			}
			if err := scope.entity.SptSub(req.Spt, redemption.Basis, req.Mega); err != nil {
				return err
			}

			timelock, err := registrar.DeactivationTimelock()
			if err != nil {
				return err
			}
			endTs, err := domain.AddSeconds(now, timelock)
			if err != nil {
				return err
			}

			pw := &domain.PendingWithdrawal{
				Initialized:     true,
				Member:          req.Member,
				Delegate:        req.Delegate,
				Mega:            req.Mega,
				StartTs:         now,
				EndTs:           endTs,
				SptAmount:       req.Spt,
				Pool:            pool,
				Payment:         redemption.Main,
				DelegatePayment: redemption.Delegate,
			}
			if err := tx.PutPendingWithdrawal(req.PendingWithdrawal, pw); err != nil {
				return err
			}
			return tx.PutMember(req.Member, member)
		})
	})
}

// markToLastActive caps each redeemed asset at the member's last creation
// price and sends the rest back from the escrow to the pool vaults.
func markToLastActive(tx Tx, scope *entityScope, member *domain.Member, pool domain.Address, escrow []domain.Address, req StartStakeWithdrawalRequest, current []uint64) ([]uint64, error) {
	marked, err := member.LastActiveStakeCtx.BasketQuantities(req.Spt, req.Mega)
	if err != nil {
		return nil, err
	}
	if len(marked) != len(current) {
		return nil, fmt.Errorf("%w: last active basket has %v quantities, want %v", domain.ErrorInvalidBasket, len(marked), len(current))
	}
	state, err := tx.Pools().State(pool)
	if err != nil {
		return nil, err
	}

	price := make([]uint64, len(current))
	for i := range current {
		price[i] = current[i]
		if current[i] <= marked[i] {
			continue
		}
		price[i] = marked[i]
		excess := current[i] - marked[i]
		if err := tx.Tokens().Transfer(escrow[i], state.Assets[i].Vault, scope.vaultSigner, excess); err != nil {
			return nil, err
		}
	}
	return price, nil
}

// EndStakeWithdrawal pays out a matured receipt and burns it.
func (interactor *RegistryInteractor) EndStakeWithdrawal(ctx context.Context, req EndStakeWithdrawalRequest) error {
	return interactor.execute(ctx, OperationEndStakeWithdrawal, &req, func(tx Tx, now int64) error {
		pw, err := tx.PendingWithdrawal(req.PendingWithdrawal)
		if err != nil {
			return fmt.Errorf("pending withdrawal %v: %w", req.PendingWithdrawal, err)
		}
		if !pw.Initialized {
			return fmt.Errorf("pending withdrawal %v: %w", req.PendingWithdrawal, domain.ErrorNotInitialized)
		}
		if pw.Burned {
			return fmt.Errorf("pending withdrawal %v: %w", req.PendingWithdrawal, domain.ErrorPendingWithdrawalBurned)
		}
		member, err := loadMember(tx, pw.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, pw.Delegate); err != nil {
			return err
		}
		if !pw.Matured(now) {
			return fmt.Errorf("%w: matures at %v, now %v", domain.ErrorWithdrawalTimelockNotPassed, pw.EndTs, now)
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(scope *entityScope) error {
			legs := []struct {
				amount    uint64
				mega      bool
				recipient domain.Address
				missing   error
				delegate  bool
				record    *domain.Address
			}{
				{pw.Payment.AssetAmount, false, req.Recipient, invalid("recipient is required"), false, &pw.Payment.Recipient},
				{pw.Payment.MegaAssetAmount, true, req.MegaRecipient, invalid("mega recipient is required"), false, &pw.Payment.MegaRecipient},
				{pw.DelegatePayment.AssetAmount, false, req.DelegateRecipient, domain.ErrorDelegateAccountsNotProvided, true, &pw.DelegatePayment.Recipient},
				{pw.DelegatePayment.MegaAssetAmount, true, req.DelegateMegaRecipient, domain.ErrorDelegateAccountsNotProvided, true, &pw.DelegatePayment.MegaRecipient},
			}
			for _, leg := range legs {
				if leg.amount == 0 {
					continue
				}
				if leg.recipient.IsZero() {
					return leg.missing
				}
				if leg.delegate {
					account, err := tx.Tokens().Account(leg.recipient)
					if err != nil {
						return err
					}
					if account.Owner != member.Books.Delegate.Owner {
						return fmt.Errorf("%w: delegate payment must go to the delegate", domain.ErrorInvalidAccountOwner)
					}
				}
				escrow := scope.registrar.EscrowVault(leg.mega)
				if err := tx.Tokens().Transfer(escrow, leg.recipient, scope.vaultSigner, leg.amount); err != nil {
					return err
				}
				*leg.record = leg.recipient
			}

			if err := member.PendingWithdrawalDidEnd(pw.SptAmount, pw.Mega, pw.Delegate); err != nil {
				return err
			}
			if err := scope.entity.PendingSub(pw.SptAmount, pw.Mega); err != nil {
				return err
			}
			pw.Burned = true
			if err := tx.PutPendingWithdrawal(req.PendingWithdrawal, pw); err != nil {
				return err
			}
			return tx.PutMember(pw.Member, member)
		})
	})
}
