package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"registry/domain"
	"registry/interface/exporter"
)

func (interactor *RegistryInteractor) CreateEntity(ctx context.Context, req CreateEntityRequest) error {
	return interactor.execute(ctx, OperationCreateEntity, &req, func(tx Tx, now int64) error {
		if !req.Signers.Has(req.Leader) {
			return fmt.Errorf("%w: leader %v did not sign", domain.ErrorUnauthorized, req.Leader)
		}
		if _, err := loadRegistrar(tx, req.Registrar); err != nil {
			return err
		}
		_, err := tx.Entity(req.Entity)
		if err := checkVacant(err); err != nil {
			return fmt.Errorf("entity %v: %w", req.Entity, err)
		}

		entity := domain.NewEntity(req.Registrar, req.Leader, req.Capabilities, req.StakeKind)
		return tx.PutEntity(req.Entity, entity)
	})
}

// checkVacant takes the error of a record lookup and succeeds only when no
// record exists yet.
func checkVacant(err error) error {
	if err == nil {
		return domain.ErrorAlreadyInitialized
	}
	if errors.Is(err, domain.ErrorRecordNotFound) {
		return nil
	}
	return err
}

func (interactor *RegistryInteractor) UpdateEntity(ctx context.Context, req UpdateEntityRequest) error {
	return interactor.execute(ctx, OperationUpdateEntity, &req, func(tx Tx, now int64) error {
		entity, err := tx.Entity(req.Entity)
		if err != nil {
			return fmt.Errorf("entity %v: %w", req.Entity, err)
		}
		if !req.Signers.Has(entity.Leader) {
			return fmt.Errorf("%w: leader %v did not sign", domain.ErrorUnauthorized, entity.Leader)
		}

		if req.Leader != nil {
			entity.Leader = *req.Leader
		}
		if req.Capabilities != nil {
			entity.Capabilities = *req.Capabilities
		}
		return tx.PutEntity(req.Entity, entity)
	})
}

// SwitchEntity moves a member, with all its balances, to another entity of
// the same registrar. The member keeps its generation.
func (interactor *RegistryInteractor) SwitchEntity(ctx context.Context, req SwitchEntityRequest) error {
	return interactor.execute(ctx, OperationSwitchEntity, &req, func(tx Tx, now int64) error {
		member, err := loadMember(tx, req.Member)
		if err != nil {
			return err
		}
		if err := authorizeMember(member, req.Signers, false); err != nil {
			return err
		}
		if member.Entity == req.NewEntity {
			return invalid("member %v already belongs to entity %v", req.Member, req.NewEntity)
		}

		total, err := member.TotalBalances()
		if err != nil {
			return err
		}

		return interactor.withEntity(tx, now, member.Registrar, member.Entity, func(curr *entityScope) error {
			return interactor.withEntity(tx, now, member.Registrar, req.NewEntity, func(next *entityScope) error {
				if err := curr.entity.RemoveMember(member); err != nil {
					return err
				}
				if err := curr.entity.TransferPendingWithdrawal(next.entity, total.SptPendingWithdrawals, false); err != nil {
					return err
				}
				if err := curr.entity.TransferPendingWithdrawal(next.entity, total.SptMegaPendingWithdrawals, true); err != nil {
					return err
				}
				if err := next.entity.AddMember(member); err != nil {
					return err
				}
				// The outer scope re-evaluates curr after this returns.
				member.Entity = req.NewEntity
				return tx.PutMember(req.Member, member)
			})
		})
	})
}

// Refresh brings the activation state of every entity of a registrar up to
// date and returns the number of entities evaluated. Each entity runs in its
// own transaction; an entity that fails to evaluate is logged and skipped.
func (interactor *RegistryInteractor) Refresh(ctx context.Context, req RefreshRequest) (int, error) {
	now := interactor.clock.Now()
	count, err := interactor.refresh(ctx, req, now)
	return count, interactor.complete(OperationRefresh, &req, now, err)
}

func (interactor *RegistryInteractor) refresh(ctx context.Context, req RefreshRequest, now int64) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var entities []domain.Address
	err := interactor.store.Transact(ctx, func(tx Tx) error {
		if _, err := loadRegistrar(tx, req.Registrar); err != nil {
			return err
		}
		list, err := tx.Entities(req.Registrar)
		entities = list
		return err
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, address := range entities {
		err := interactor.store.Transact(ctx, func(tx Tx) error {
			return interactor.withEntity(tx, now, req.Registrar, address, func(scope *entityScope) error {
				return nil
			})
		})
		if err != nil {
			if ctx.Err() != nil {
				return count, err
			}
			log.Printf("🔴 %v entity %v - %v\n", OperationRefresh, address, err.Error())
			exporter.IncErrorCount()
			continue
		}
		count++
	}
	return count, nil
}
