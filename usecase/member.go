package usecase

import (
	"context"
	"fmt"

	"registry/domain"
)

func (interactor *RegistryInteractor) CreateMember(ctx context.Context, req CreateMemberRequest) error {
	return interactor.execute(ctx, OperationCreateMember, &req, func(tx Tx, now int64) error {
		if !req.Signers.Has(req.Beneficiary) {
			return fmt.Errorf("%w: beneficiary %v did not sign", domain.ErrorUnauthorized, req.Beneficiary)
		}
		if !req.Delegate.IsZero() && !req.Signers.Has(req.Delegate) {
			return fmt.Errorf("%w: delegate %v did not sign", domain.ErrorInvalidMemberDelegateOwner, req.Delegate)
		}
		if _, err := loadRegistrar(tx, req.Registrar); err != nil {
			return err
		}
		if _, err := loadEntity(tx, req.Entity, req.Registrar); err != nil {
			return err
		}
		_, err := tx.Member(req.Member)
		if err := checkVacant(err); err != nil {
			return fmt.Errorf("member %v: %w", req.Member, err)
		}

		member := domain.NewMember(req.Registrar, req.Entity, req.Beneficiary, req.Delegate, 0)
		member.Watchtower = req.Watchtower
		return tx.PutMember(req.Member, member)
	})
}

// UpdateMember replaces the watchtower and, while the delegate book is
// empty, the delegate.
func (interactor *RegistryInteractor) UpdateMember(ctx context.Context, req UpdateMemberRequest) error {
	return interactor.execute(ctx, OperationUpdateMember, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, false); err != nil {
			return err
		}

		if req.Watchtower != nil {
			member.Watchtower = *req.Watchtower
		}
		if req.Delegate != nil {
			if !req.Delegate.IsZero() && !req.Signers.Has(*req.Delegate) {
				return fmt.Errorf("%w: delegate %v did not sign", domain.ErrorInvalidMemberDelegateOwner, *req.Delegate)
			}
			if err := member.SetDelegate(*req.Delegate); err != nil {
				return err
			}
		}
		return tx.PutMember(req.Member, member)
	})
}
