package domain

import "time"

// TokenAccount holds an amount of a single mint.
type TokenAccount struct {
	Mint   Address `json:"mint"`
	Owner  Address `json:"owner"`
	Amount uint64  `json:"amount"`
}

type PoolAsset struct {
	Mint  Address `json:"mint"`
	Vault Address `json:"vault"`
}

// PoolState is a staking pool issuing pool tokens against a basket of
// assets.
type PoolState struct {
	Initialized bool `json:"initialized"`
	// PoolTokenMint is the mint of the pool tokens.
	PoolTokenMint Address `json:"pool_token_mint"`
	// Admin must sign every creation and redemption.
	Admin Address `json:"admin"`
	// Assets in basket order.
	Assets []PoolAsset `json:"assets"`
	// Supply is the number of outstanding pool tokens.
	Supply uint64 `json:"supply"`
}

// PoolRequest creates or redeems Spt pool tokens.
type PoolRequest struct {
	Pool Address
	Spt  uint64
	// AssetAccounts pay for creation or receive redemption, in basket order.
	AssetAccounts []Address
	// PoolTokenAccount receives created pool tokens or gives redeemed ones.
	PoolTokenAccount Address
	// Authority signs the transfers out of AssetAccounts or PoolTokenAccount.
	Authority Address
	Admin     Address
}

// TokenProgram moves fungible tokens between accounts.
type TokenProgram interface {
	Account(address Address) (*TokenAccount, error)
	InitAccount(address, mint, owner Address) error
	Transfer(from, to, authority Address, amount uint64) error
}

// PoolProgram is the staking pool: a basket oracle plus creation and
// redemption of pool tokens.
type PoolProgram interface {
	// GetBasket returns the assets backing spt pool tokens.
	GetBasket(pool Address, spt uint64) (Basket, error)
	// Create charges the basket of req.Spt tokens and mints them.
	Create(req PoolRequest) (Basket, error)
	// Redeem burns req.Spt tokens and pays out their basket.
	Redeem(req PoolRequest) (Basket, error)
	State(pool Address) (*PoolState, error)
}

type Clock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock always reports the same unix time.
type FixedClock int64

func (c FixedClock) Now() int64 {
	return int64(c)
}
