package usecase

import (
	"context"
	"errors"
	"fmt"

	"registry/domain"
)

// Vault addresses are derived from the registrar so they never collide with
// client supplied ones.
func registrarVault(registrar domain.Address, name string) domain.Address {
	return domain.DeriveAddress(registrar, []byte(name))
}

func (interactor *RegistryInteractor) Initialize(ctx context.Context, req InitializeRequest) error {
	return interactor.execute(ctx, OperationInitialize, &req, func(tx Tx, now int64) error {
		return initialize(tx, req)
	})
}

func initialize(tx Tx, req InitializeRequest) error {
	if !req.Signers.Has(req.Authority) {
		return fmt.Errorf("%w: authority %v did not sign", domain.ErrorUnauthorized, req.Authority)
	}
	if existing, err := tx.Registrar(req.Registrar); err == nil && existing.Initialized {
		return fmt.Errorf("registrar %v: %w", req.Registrar, domain.ErrorAlreadyInitialized)
	} else if err != nil && !errors.Is(err, domain.ErrorRecordNotFound) {
		return err
	}

	signer := domain.VaultSigner(req.Registrar, req.Nonce)
	pool, err := checkPool(tx, req.Pool, signer, req.Mint)
	if err != nil {
		return err
	}
	megaPool, err := checkPool(tx, req.MegaPool, signer, req.MegaMint, req.Mint)
	if err != nil {
		return err
	}

	registrar := &domain.Registrar{
		Initialized:                 true,
		Authority:                   req.Authority,
		Nonce:                       req.Nonce,
		RewardActivationThreshold:   req.RewardActivationThreshold,
		WithdrawalTimelock:          req.WithdrawalTimelock,
		DeactivationTimelockPremium: req.DeactivationTimelockPremium,
		Mint:                        req.Mint,
		MegaMint:                    req.MegaMint,
		Vault:                       registrarVault(req.Registrar, "vault"),
		MegaVault:                   registrarVault(req.Registrar, "mega-vault"),
		Pool:                        req.Pool,
		MegaPool:                    req.MegaPool,
		PoolTokenVault:              registrarVault(req.Registrar, "pool-token-vault"),
		MegaPoolTokenVault:          registrarVault(req.Registrar, "mega-pool-token-vault"),
		Escrow: domain.Escrow{
			Vault:     registrarVault(req.Registrar, "escrow-vault"),
			MegaVault: registrarVault(req.Registrar, "escrow-mega-vault"),
		},
	}

	vaults := []struct {
		address domain.Address
		mint    domain.Address
	}{
		{registrar.Vault, req.Mint},
		{registrar.MegaVault, req.MegaMint},
		{registrar.Escrow.Vault, req.Mint},
		{registrar.Escrow.MegaVault, req.MegaMint},
		{registrar.PoolTokenVault, pool.PoolTokenMint},
		{registrar.MegaPoolTokenVault, megaPool.PoolTokenMint},
	}
	for _, vault := range vaults {
		if err := tx.Tokens().InitAccount(vault.address, vault.mint, signer); err != nil {
			return err
		}
	}

	return tx.PutRegistrar(req.Registrar, registrar)
}

// checkPool verifies the registrar's vault signer administers the pool and
// the pool basket holds the expected mints.
func checkPool(tx Tx, address, signer domain.Address, mints ...domain.Address) (*domain.PoolState, error) {
	pool, err := tx.Pools().State(address)
	if err != nil {
		return nil, err
	}
	if pool.Admin != signer {
		return nil, fmt.Errorf("%w: pool %v is administered by %v", domain.ErrorInvalidVaultAuthority, address, pool.Admin)
	}
	if len(pool.Assets) != len(mints) {
		return nil, fmt.Errorf("%w: pool %v has %v assets, want %v", domain.ErrorInvalidPool, address, len(pool.Assets), len(mints))
	}
	for i, mint := range mints {
		if pool.Assets[i].Mint != mint {
			return nil, fmt.Errorf("%w: pool %v asset %v is %v, want %v", domain.ErrorInvalidPool, address, i, pool.Assets[i].Mint, mint)
		}
	}
	return pool, nil
}

func (interactor *RegistryInteractor) RegisterCapability(ctx context.Context, req RegisterCapabilityRequest) error {
	return interactor.execute(ctx, OperationRegisterCapability, &req, func(tx Tx, now int64) error {
		registrar, err := loadRegistrar(tx, req.Registrar)
		if err != nil {
			return err
		}
		if !req.Signers.Has(registrar.Authority) {
			return fmt.Errorf("%w: authority %v did not sign", domain.ErrorUnauthorized, registrar.Authority)
		}
		if err := registrar.RegisterCapability(req.CapabilityId, req.CapabilityFee); err != nil {
			return err
		}
		return tx.PutRegistrar(req.Registrar, registrar)
	})
}

// Bootstrap creates both pools, funds the genesis accounts and initializes
// the registrar in one transaction.
func (interactor *RegistryInteractor) Bootstrap(ctx context.Context, req BootstrapRequest) error {
	return interactor.execute(ctx, OperationBootstrap, &req, func(tx Tx, now int64) error {
		initReq := req.Initialize
		signer := domain.VaultSigner(initReq.Registrar, initReq.Nonce)
		genesis := tx.Genesis()

		if err := genesis.InitPool(initReq.Pool, req.PoolTokenMint, signer, []domain.Address{initReq.Mint}); err != nil {
			return err
		}
		if err := genesis.InitPool(initReq.MegaPool, req.MegaPoolTokenMint, signer, []domain.Address{initReq.MegaMint, initReq.Mint}); err != nil {
			return err
		}
		for _, account := range req.Accounts {
			if err := genesis.InitAccount(account.Address, account.Mint, account.Owner); err != nil {
				return err
			}
			if account.Amount == 0 {
				continue
			}
			if err := genesis.MintTo(account.Address, account.Mint, account.Amount); err != nil {
				return err
			}
		}
		return initialize(tx, initReq)
	})
}
