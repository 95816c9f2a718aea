package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"registry/domain"
	"registry/interface/exporter"
)

const (
	OperationInitialize           = "initialize"
	OperationBootstrap            = "bootstrap"
	OperationRegisterCapability   = "register_capability"
	OperationCreateEntity         = "create_entity"
	OperationUpdateEntity         = "update_entity"
	OperationSwitchEntity         = "switch_entity"
	OperationCreateMember         = "create_member"
	OperationUpdateMember         = "update_member"
	OperationDeposit              = "deposit"
	OperationWithdraw             = "withdraw"
	OperationStake                = "stake"
	OperationTransferStakeIntent  = "transfer_stake_intent"
	OperationStartStakeWithdrawal = "start_stake_withdrawal"
	OperationEndStakeWithdrawal   = "end_stake_withdrawal"
	OperationRefresh              = "refresh"
)

type validator interface {
	Validate() error
}

type RegistryInteractor struct {
	store   Store
	clock   domain.Clock
	journal OperationJournal
}

func NewRegistryInteractor(store Store, clock domain.Clock, journal OperationJournal) *RegistryInteractor {
	interactor := &RegistryInteractor{
		store:   store,
		clock:   clock,
		journal: journal,
	}
	return interactor
}

// execute validates the request, then runs fn in a single transaction. The
// clock is read once so every step of the operation sees the same time.
func (interactor *RegistryInteractor) execute(ctx context.Context, kind string, request validator, fn func(tx Tx, now int64) error) error {
	now := interactor.clock.Now()

	err := request.Validate()
	if err == nil {
		err = interactor.store.Transact(ctx, func(tx Tx) error {
			return fn(tx, now)
		})
	}

	return interactor.complete(kind, request, now, err)
}

// complete journals, logs and counts the outcome of an operation.
func (interactor *RegistryInteractor) complete(kind string, request interface{}, now int64, err error) error {
	interactor.record(kind, request, now, err)
	if err != nil {
		log.Printf("🔴 %v - %v\n", kind, err.Error())
		exporter.IncErrorCount()
		return err
	}
	log.Printf("✅ %v\n", kind)
	return nil
}

func (interactor *RegistryInteractor) record(kind string, request interface{}, now int64, err error) {
	state := domain.OperationStateDone
	if err != nil {
		state = domain.OperationStateError
	}
	exporter.IncOperationCount(kind, state)

	if interactor.journal == nil {
		return
	}
	if jerr := interactor.journal.Record(domain.NewOperation(kind, request, now, err)); jerr != nil {
		log.Printf("⚠️ journaling %v - %v\n", kind, jerr.Error())
	}
}

// entityScope is the working set of an operation on one entity.
type entityScope struct {
	now              int64
	registrarAddress domain.Address
	registrar        *domain.Registrar
	entityAddress    domain.Address
	entity           *domain.Entity
	stakeCtx         *domain.StakeContext
	vaultSigner      domain.Address
}

func loadRegistrar(tx Tx, address domain.Address) (*domain.Registrar, error) {
	registrar, err := tx.Registrar(address)
	if err != nil {
		if errors.Is(err, domain.ErrorRecordNotFound) {
			return nil, fmt.Errorf("registrar %v: %w", address, domain.ErrorNotInitialized)
		}
		return nil, err
	}
	if !registrar.Initialized {
		return nil, fmt.Errorf("registrar %v: %w", address, domain.ErrorNotInitialized)
	}
	return registrar, nil
}

func loadEntity(tx Tx, address, registrar domain.Address) (*domain.Entity, error) {
	entity, err := tx.Entity(address)
	if err != nil {
		return nil, fmt.Errorf("entity %v: %w", address, err)
	}
	if !entity.Initialized {
		return nil, fmt.Errorf("entity %v: %w", address, domain.ErrorNotInitialized)
	}
	if entity.Registrar != registrar {
		return nil, fmt.Errorf("%w: entity %v belongs to registrar %v", domain.ErrorInvalidAccountOwner, address, entity.Registrar)
	}
	return entity, nil
}

func loadMember(tx Tx, address domain.Address) (*domain.Member, error) {
	member, err := tx.Member(address)
	if err != nil {
		return nil, fmt.Errorf("member %v: %w", address, err)
	}
	if !member.Initialized {
		return nil, fmt.Errorf("member %v: %w", address, domain.ErrorNotInitialized)
	}
	return member, nil
}

// fetchStakeContext prices one token of each pool.
func fetchStakeContext(tx Tx, registrar *domain.Registrar) (*domain.StakeContext, error) {
	basket, err := tx.Pools().GetBasket(registrar.Pool, 1)
	if err != nil {
		return nil, err
	}
	megaBasket, err := tx.Pools().GetBasket(registrar.MegaPool, 1)
	if err != nil {
		return nil, err
	}
	return domain.NewStakeContext(basket, megaBasket)
}

// withEntity loads an entity with a freshly priced stake context and brings
// its activation state up to date before and after fn.
func (interactor *RegistryInteractor) withEntity(tx Tx, now int64, registrarAddress, entityAddress domain.Address, fn func(scope *entityScope) error) error {
	registrar, err := loadRegistrar(tx, registrarAddress)
	if err != nil {
		return err
	}
	entity, err := loadEntity(tx, entityAddress, registrarAddress)
	if err != nil {
		return err
	}
	stakeCtx, err := fetchStakeContext(tx, registrar)
	if err != nil {
		return err
	}

	scope := &entityScope{
		now:              now,
		registrarAddress: registrarAddress,
		registrar:        registrar,
		entityAddress:    entityAddress,
		entity:           entity,
		stakeCtx:         stakeCtx,
		vaultSigner:      registrar.VaultSigner(registrarAddress),
	}

	if err := scope.transition(); err != nil {
		return err
	}
	if err := fn(scope); err != nil {
		return err
	}
	if err := scope.transition(); err != nil {
		return err
	}
	return tx.PutEntity(entityAddress, entity)
}

func (scope *entityScope) transition() error {
	return transitionEntity(scope.entityAddress, scope.entity, scope.stakeCtx, scope.registrar, scope.now)
}

func transitionEntity(address domain.Address, entity *domain.Entity, stakeCtx *domain.StakeContext, registrar *domain.Registrar, now int64) error {
	before := entity.State.Kind
	if err := entity.TransitionActivationIfNeeded(stakeCtx, registrar, now); err != nil {
		return err
	}
	after := entity.State.Kind
	if before == after {
		return nil
	}

	log.Printf("🔵 entity %v: %v -> %v (generation %v)\n", address, before, after, entity.Generation)
	switch after {
	case domain.EntityStateActive:
		if before == domain.EntityStateInactive {
			exporter.IncEntityActivationCount()
		}
	case domain.EntityStateInactive:
		exporter.IncEntityDeactivationCount()
	}
	return nil
}

// authorizeMember checks the beneficiary signed and, for delegate books,
// that the delegate owner signed as well.
func authorizeMember(member *domain.Member, signers Signers, delegate bool) error {
	if !signers.Has(member.Beneficiary) {
		return fmt.Errorf("%w: beneficiary %v did not sign", domain.ErrorUnauthorized, member.Beneficiary)
	}
	if delegate && !signers.Has(member.Books.Delegate.Owner) {
		return fmt.Errorf("%w: delegate %v did not sign", domain.ErrorInvalidMemberDelegateOwner, member.Books.Delegate.Owner)
	}
	return nil
}

// checkStake rejects stale members and stake that would leave the entity
// below its activation requirements.
func checkStake(scope *entityScope, member *domain.Member, spt uint64, price []uint64, mega, convert bool) error {
	if member.IsStale(scope.entity) {
		return fmt.Errorf("%w: member generation %v, entity generation %v", domain.ErrorStaleStakeNeedsWithdrawal, member.Generation, scope.entity.Generation)
	}

	candidate := *scope.entity
	var err error
	if convert {
		err = candidate.SptConvert(spt, price, mega)
	} else {
		err = candidate.SptAdd(spt, price, mega)
	}
	if err != nil {
		return err
	}
	meets, err := candidate.MeetsActivationRequirements(scope.stakeCtx, scope.registrar)
	if err != nil {
		return err
	}
	if !meets {
		return domain.ErrorEntityNotActivated
	}
	return nil
}

// basketAccounts lists registrar vaults in pool basket order.
func basketAccounts(mega bool, primary, megaAccount domain.Address) []domain.Address {
	if mega {
		return []domain.Address{megaAccount, primary}
	}
	return []domain.Address{primary}
}
