package domain

import (
	"fmt"
	"math"
)

// CapabilityLen is the number of capabilities an entity bitmap can hold.
const CapabilityLen = 32

// Escrow holds redeemed assets while a withdrawal waits for its timelock.
type Escrow struct {
	Vault     Address `json:"vault"`
	MegaVault Address `json:"mega_vault"`
}

// Registrar is the global configuration of one registry instance.
type Registrar struct {
	Initialized bool    `json:"initialized"`
	Authority   Address `json:"authority"`
	// Nonce seeds the vault signer owning every registrar vault.
	Nonce uint8 `json:"nonce"`
	// Value that must be staked for an entity to earn rewards, denominated in
	// the primary asset.
	RewardActivationThreshold uint64 `json:"reward_activation_threshold"`
	// Seconds a withdrawal waits before it can be completed.
	WithdrawalTimelock int64 `json:"withdrawal_timelock"`
	// Seconds added to the withdrawal timelock before a pending deactivation
	// becomes final.
	DeactivationTimelockPremium int64 `json:"deactivation_timelock_premium"`

	Mint     Address `json:"mint"`
	MegaMint Address `json:"mega_mint"`
	// Stake intent vaults.
	Vault     Address `json:"vault"`
	MegaVault Address `json:"mega_vault"`
	Pool      Address `json:"pool"`
	MegaPool  Address `json:"mega_pool"`
	// Vaults holding the pool tokens minted on behalf of members.
	PoolTokenVault     Address `json:"pool_token_vault"`
	MegaPoolTokenVault Address `json:"mega_pool_token_vault"`
	Escrow             Escrow  `json:"escrow"`

	CapabilityFees [CapabilityLen]uint32 `json:"capability_fees"`
}

func (r *Registrar) DeactivationTimelock() (int64, error) {
	return AddSeconds(r.WithdrawalTimelock, r.DeactivationTimelockPremium)
}

// AddSeconds adds a duration to a unix timestamp. Results outside the
// int64 range fail with ErrorCheckedFailure.
func AddSeconds(ts, seconds int64) (int64, error) {
	if (seconds > 0 && ts > math.MaxInt64-seconds) || (seconds < 0 && ts < math.MinInt64-seconds) {
		return 0, fmt.Errorf("%w: %v + %v seconds overflows", ErrorCheckedFailure, ts, seconds)
	}
	return ts + seconds, nil
}

func (r *Registrar) VaultSigner(registrar Address) Address {
	return VaultSigner(registrar, r.Nonce)
}

func (r *Registrar) PoolAddress(mega bool) Address {
	if mega {
		return r.MegaPool
	}
	return r.Pool
}

func (r *Registrar) PoolTokenVaultAddress(mega bool) Address {
	if mega {
		return r.MegaPoolTokenVault
	}
	return r.PoolTokenVault
}

// StakeIntentVault returns the vault holding stake intent of an asset.
func (r *Registrar) StakeIntentVault(mega bool) Address {
	if mega {
		return r.MegaVault
	}
	return r.Vault
}

func (r *Registrar) EscrowVault(mega bool) Address {
	if mega {
		return r.Escrow.MegaVault
	}
	return r.Escrow.Vault
}

func (r *Registrar) AssetMint(mega bool) Address {
	if mega {
		return r.MegaMint
	}
	return r.Mint
}

func (r *Registrar) RegisterCapability(id uint8, fee uint32) error {
	if int(id) >= CapabilityLen {
		return fmt.Errorf("%w: %v", ErrorInvalidCapabilityId, id)
	}
	r.CapabilityFees[id] = fee
	return nil
}
