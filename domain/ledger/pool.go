package ledger

import (
	"fmt"

	"registry/domain"

	"github.com/ethereum/go-ethereum/common/math"
)

// PoolSigner is the authority owning a pool's asset vaults.
func PoolSigner(pool domain.Address) domain.Address {
	return domain.DeriveAddress(pool, []byte("pool-authority"))
}

// PoolVault is the vault holding the i-th asset of a pool.
func PoolVault(pool domain.Address, i int) domain.Address {
	return domain.DeriveAddress(pool, []byte("pool-vault"), []byte{byte(i)})
}

// PoolProgram is an in-process staking pool. A pool token is worth an equal
// share of every asset vault, rounded down.
type PoolProgram struct {
	state  State
	tokens *TokenProgram
}

func NewPoolProgram(state State, tokens *TokenProgram) *PoolProgram {
	return &PoolProgram{state: state, tokens: tokens}
}

// InitPool creates a pool and one vault per asset mint, in basket order.
func (p *PoolProgram) InitPool(pool, poolTokenMint, admin domain.Address, assetMints []domain.Address) error {
	if len(assetMints) == 0 {
		return fmt.Errorf("%w: pool %v has no assets", domain.ErrorInvalidPool, pool)
	}
	if existing, err := p.state.PoolState(pool); err == nil && existing.Initialized {
		return fmt.Errorf("pool %v: %w", pool, domain.ErrorAlreadyInitialized)
	} else if err != nil && !isNotFound(err) {
		return err
	}

	state := &domain.PoolState{
		Initialized:   true,
		PoolTokenMint: poolTokenMint,
		Admin:         admin,
		Assets:        make([]domain.PoolAsset, len(assetMints)),
	}
	signer := PoolSigner(pool)
	for i, mint := range assetMints {
		vault := PoolVault(pool, i)
		if err := p.tokens.InitAccount(vault, mint, signer); err != nil {
			return err
		}
		state.Assets[i] = domain.PoolAsset{Mint: mint, Vault: vault}
	}
	return p.state.PutPoolState(pool, state)
}

func (p *PoolProgram) State(pool domain.Address) (*domain.PoolState, error) {
	state, err := p.state.PoolState(pool)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrorInvalidPool, pool)
		}
		return nil, err
	}
	if !state.Initialized {
		return nil, fmt.Errorf("%w: %v", domain.ErrorInvalidPool, pool)
	}
	return state, nil
}

// unitBasket prices one pool token. An empty pool prices it at one unit of
// its first asset.
func (p *PoolProgram) unitBasket(state *domain.PoolState) ([]uint64, error) {
	quantities := make([]uint64, len(state.Assets))
	if state.Supply == 0 {
		quantities[0] = 1
		return quantities, nil
	}
	for i, asset := range state.Assets {
		vault, err := p.tokens.Account(asset.Vault)
		if err != nil {
			return nil, err
		}
		quantities[i] = vault.Amount / state.Supply
	}
	return quantities, nil
}

func (p *PoolProgram) basket(state *domain.PoolState, spt uint64) (domain.Basket, error) {
	unit, err := p.unitBasket(state)
	if err != nil {
		return domain.Basket{}, err
	}
	for i, q := range unit {
		v, overflow := math.SafeMul(q, spt)
		if overflow {
			return domain.Basket{}, fmt.Errorf("%w: basket of %v pool tokens", domain.ErrorCheckedFailure, spt)
		}
		unit[i] = v
	}
	return domain.Basket{Quantities: unit}, nil
}

func (p *PoolProgram) GetBasket(pool domain.Address, spt uint64) (domain.Basket, error) {
	state, err := p.State(pool)
	if err != nil {
		return domain.Basket{}, err
	}
	return p.basket(state, spt)
}

func (p *PoolProgram) checkRequest(req domain.PoolRequest) (*domain.PoolState, error) {
	state, err := p.State(req.Pool)
	if err != nil {
		return nil, err
	}
	if req.Admin != state.Admin {
		return nil, fmt.Errorf("%w: %v is not the admin of pool %v", domain.ErrorUnauthorized, req.Admin, req.Pool)
	}
	if len(req.AssetAccounts) != len(state.Assets) {
		return nil, fmt.Errorf("%w: pool %v has %v assets, got %v accounts", domain.ErrorInvalidRequest, req.Pool, len(state.Assets), len(req.AssetAccounts))
	}
	return state, nil
}

func (p *PoolProgram) Create(req domain.PoolRequest) (domain.Basket, error) {
	state, err := p.checkRequest(req)
	if err != nil {
		return domain.Basket{}, err
	}
	basket, err := p.basket(state, req.Spt)
	if err != nil {
		return domain.Basket{}, err
	}
	supply, overflow := math.SafeAdd(state.Supply, req.Spt)
	if overflow {
		return domain.Basket{}, fmt.Errorf("%w: pool %v supply", domain.ErrorCheckedFailure, req.Pool)
	}

	for i, asset := range state.Assets {
		if err := p.tokens.Transfer(req.AssetAccounts[i], asset.Vault, req.Authority, basket.Quantities[i]); err != nil {
			return domain.Basket{}, err
		}
	}
	if err := p.tokens.mint(req.PoolTokenAccount, state.PoolTokenMint, req.Spt); err != nil {
		return domain.Basket{}, err
	}

	state.Supply = supply
	return basket, p.state.PutPoolState(req.Pool, state)
}

func (p *PoolProgram) Redeem(req domain.PoolRequest) (domain.Basket, error) {
	state, err := p.checkRequest(req)
	if err != nil {
		return domain.Basket{}, err
	}
	if req.Spt > state.Supply {
		return domain.Basket{}, fmt.Errorf("%w: pool %v has %v tokens outstanding", domain.ErrorInsufficientFunds, req.Pool, state.Supply)
	}
	basket, err := p.basket(state, req.Spt)
	if err != nil {
		return domain.Basket{}, err
	}

	if err := p.tokens.burn(req.PoolTokenAccount, state.PoolTokenMint, req.Authority, req.Spt); err != nil {
		return domain.Basket{}, err
	}
	signer := PoolSigner(req.Pool)
	for i, asset := range state.Assets {
		if err := p.tokens.Transfer(asset.Vault, req.AssetAccounts[i], signer, basket.Quantities[i]); err != nil {
			return domain.Basket{}, err
		}
	}

	state.Supply -= req.Spt
	return basket, p.state.PutPoolState(req.Pool, state)
}

// Programs bundles the collaborators bound to one working set.
type Programs struct {
	Tokens *TokenProgram
	Pools  *PoolProgram
}

func NewPrograms(state State) Programs {
	tokens := NewTokenProgram(state)
	return Programs{Tokens: tokens, Pools: NewPoolProgram(state, tokens)}
}

func (p Programs) InitAccount(address, mint, owner domain.Address) error {
	return p.Tokens.InitAccount(address, mint, owner)
}

// MintTo funds an account out of thin air. It is meant for genesis only.
func (p Programs) MintTo(to, mint domain.Address, amount uint64) error {
	return p.Tokens.mint(to, mint, amount)
}

func (p Programs) InitPool(pool, poolTokenMint, admin domain.Address, assetMints []domain.Address) error {
	return p.Pools.InitPool(pool, poolTokenMint, admin, assetMints)
}
