package usecase

import (
	"fmt"

	"registry/domain"
)

// Signers lists the keys that authorized a request.
type Signers []domain.Address

func (s Signers) Has(address domain.Address) bool {
	if address.IsZero() {
		return false
	}
	for _, signer := range s {
		if signer == address {
			return true
		}
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %v", domain.ErrorInvalidRequest, fmt.Sprintf(format, args...))
}

func requireAddress(name string, address domain.Address) error {
	if address.IsZero() {
		return invalid("%v is required", name)
	}
	return nil
}

func requireAddresses(names []string, addresses ...domain.Address) error {
	for i, address := range addresses {
		if err := requireAddress(names[i], address); err != nil {
			return err
		}
	}
	return nil
}

type InitializeRequest struct {
	Registrar                   domain.Address `json:"registrar"`
	Authority                   domain.Address `json:"authority"`
	Nonce                       uint8          `json:"nonce"`
	RewardActivationThreshold   uint64         `json:"reward_activation_threshold"`
	WithdrawalTimelock          int64          `json:"withdrawal_timelock"`
	DeactivationTimelockPremium int64          `json:"deactivation_timelock_premium"`
	Mint                        domain.Address `json:"mint"`
	MegaMint                    domain.Address `json:"mega_mint"`
	Pool                        domain.Address `json:"pool"`
	MegaPool                    domain.Address `json:"mega_pool"`
	Signers                     Signers        `json:"signers"`
}

func (r *InitializeRequest) Validate() error {
	err := requireAddresses(
		[]string{"registrar", "authority", "mint", "mega mint", "pool", "mega pool"},
		r.Registrar, r.Authority, r.Mint, r.MegaMint, r.Pool, r.MegaPool,
	)
	if err != nil {
		return err
	}
	if r.WithdrawalTimelock < 0 || r.DeactivationTimelockPremium < 0 {
		return invalid("timelocks must not be negative")
	}
	if _, err := domain.AddSeconds(r.WithdrawalTimelock, r.DeactivationTimelockPremium); err != nil {
		return invalid("deactivation timelock overflows")
	}
	if r.Mint == r.MegaMint || r.Pool == r.MegaPool {
		return invalid("primary and mega assets must differ")
	}
	return nil
}

type RegisterCapabilityRequest struct {
	Registrar     domain.Address `json:"registrar"`
	CapabilityId  uint8          `json:"capability_id"`
	CapabilityFee uint32         `json:"capability_fee"`
	Signers       Signers        `json:"signers"`
}

func (r *RegisterCapabilityRequest) Validate() error {
	return requireAddress("registrar", r.Registrar)
}

type CreateEntityRequest struct {
	Registrar    domain.Address   `json:"registrar"`
	Entity       domain.Address   `json:"entity"`
	Leader       domain.Address   `json:"leader"`
	Capabilities uint32           `json:"capabilities"`
	StakeKind    domain.StakeKind `json:"stake_kind"`
	Signers      Signers          `json:"signers"`
}

func (r *CreateEntityRequest) Validate() error {
	return requireAddresses([]string{"registrar", "entity", "leader"}, r.Registrar, r.Entity, r.Leader)
}

type UpdateEntityRequest struct {
	Entity       domain.Address  `json:"entity"`
	Leader       *domain.Address `json:"leader,omitempty"`
	Capabilities *uint32         `json:"capabilities,omitempty"`
	Signers      Signers         `json:"signers"`
}

func (r *UpdateEntityRequest) Validate() error {
	if err := requireAddress("entity", r.Entity); err != nil {
		return err
	}
	if r.Leader != nil && r.Leader.IsZero() {
		return invalid("leader must not be empty")
	}
	return nil
}

type CreateMemberRequest struct {
	Registrar   domain.Address    `json:"registrar"`
	Entity      domain.Address    `json:"entity"`
	Member      domain.Address    `json:"member"`
	Beneficiary domain.Address    `json:"beneficiary"`
	Delegate    domain.Address    `json:"delegate"`
	Watchtower  domain.Watchtower `json:"watchtower"`
	Signers     Signers           `json:"signers"`
}

func (r *CreateMemberRequest) Validate() error {
	return requireAddresses(
		[]string{"registrar", "entity", "member", "beneficiary"},
		r.Registrar, r.Entity, r.Member, r.Beneficiary,
	)
}

type UpdateMemberRequest struct {
	Member     domain.Address     `json:"member"`
	Watchtower *domain.Watchtower `json:"watchtower,omitempty"`
	Delegate   *domain.Address    `json:"delegate,omitempty"`
	Signers    Signers            `json:"signers"`
}

func (r *UpdateMemberRequest) Validate() error {
	return requireAddress("member", r.Member)
}

type SwitchEntityRequest struct {
	Member    domain.Address `json:"member"`
	NewEntity domain.Address `json:"new_entity"`
	Signers   Signers        `json:"signers"`
}

func (r *SwitchEntityRequest) Validate() error {
	return requireAddresses([]string{"member", "new entity"}, r.Member, r.NewEntity)
}

// DepositRequest moves assets from a depositor token account into the
// member's stake intent.
type DepositRequest struct {
	Member domain.Address `json:"member"`
	// Depositor is the source token account and Authority its owner.
	Depositor domain.Address `json:"depositor"`
	Authority domain.Address `json:"authority"`
	Amount    uint64         `json:"amount"`
	Mega      bool           `json:"mega"`
	Delegate  bool           `json:"delegate"`
	Signers   Signers        `json:"signers"`
}

func (r *DepositRequest) Validate() error {
	if err := requireAddresses([]string{"member", "depositor", "authority"}, r.Member, r.Depositor, r.Authority); err != nil {
		return err
	}
	if r.Amount == 0 {
		return invalid("amount must be positive")
	}
	return nil
}

// WithdrawRequest returns stake intent to a token account. A watchtower
// withdrawal leaves Destination empty and pays the watchtower destination.
type WithdrawRequest struct {
	Member      domain.Address `json:"member"`
	Destination domain.Address `json:"destination"`
	Amount      uint64         `json:"amount"`
	Mega        bool           `json:"mega"`
	Delegate    bool           `json:"delegate"`
	Signers     Signers        `json:"signers"`
}

func (r *WithdrawRequest) Validate() error {
	if err := requireAddress("member", r.Member); err != nil {
		return err
	}
	if r.Amount == 0 {
		return invalid("amount must be positive")
	}
	return nil
}

// StakeRequest buys pool tokens with assets from outside the registry.
type StakeRequest struct {
	Member domain.Address `json:"member"`
	Spt    uint64         `json:"spt"`
	Mega   bool           `json:"mega"`
	// AssetAccounts pay the basket, in basket order. Authority owns them.
	AssetAccounts []domain.Address `json:"asset_accounts"`
	Authority     domain.Address   `json:"authority"`
	Delegate      bool             `json:"delegate"`
	Signers       Signers          `json:"signers"`
}

func (r *StakeRequest) Validate() error {
	if err := requireAddresses([]string{"member", "authority"}, r.Member, r.Authority); err != nil {
		return err
	}
	if r.Spt == 0 {
		return invalid("spt amount must be positive")
	}
	want := 1
	if r.Mega {
		want = 2
	}
	if len(r.AssetAccounts) != want {
		return invalid("want %v asset accounts, got %v", want, len(r.AssetAccounts))
	}
	for _, account := range r.AssetAccounts {
		if account.IsZero() {
			return invalid("asset account is required")
		}
	}
	return nil
}

// TransferStakeIntentRequest buys pool tokens with stake intent.
type TransferStakeIntentRequest struct {
	Member   domain.Address `json:"member"`
	Spt      uint64         `json:"spt"`
	Mega     bool           `json:"mega"`
	Delegate bool           `json:"delegate"`
	Signers  Signers        `json:"signers"`
}

func (r *TransferStakeIntentRequest) Validate() error {
	if err := requireAddress("member", r.Member); err != nil {
		return err
	}
	if r.Spt == 0 {
		return invalid("spt amount must be positive")
	}
	return nil
}

type StartStakeWithdrawalRequest struct {
	Member            domain.Address `json:"member"`
	PendingWithdrawal domain.Address `json:"pending_withdrawal"`
	Spt               uint64         `json:"spt"`
	Mega              bool           `json:"mega"`
	Delegate          bool           `json:"delegate"`
	Signers           Signers        `json:"signers"`
}

func (r *StartStakeWithdrawalRequest) Validate() error {
	if err := requireAddresses([]string{"member", "pending withdrawal"}, r.Member, r.PendingWithdrawal); err != nil {
		return err
	}
	if r.Spt == 0 {
		return invalid("spt amount must be positive")
	}
	return nil
}

// EndStakeWithdrawalRequest pays out a matured receipt. Delegate recipients
// are required only when the receipt has a delegate leg.
type EndStakeWithdrawalRequest struct {
	PendingWithdrawal     domain.Address `json:"pending_withdrawal"`
	Recipient             domain.Address `json:"recipient"`
	MegaRecipient         domain.Address `json:"mega_recipient"`
	DelegateRecipient     domain.Address `json:"delegate_recipient"`
	DelegateMegaRecipient domain.Address `json:"delegate_mega_recipient"`
	Signers               Signers        `json:"signers"`
}

func (r *EndStakeWithdrawalRequest) Validate() error {
	return requireAddress("pending withdrawal", r.PendingWithdrawal)
}

// GenesisAccount is a token account created and funded by Bootstrap.
type GenesisAccount struct {
	Address domain.Address `json:"address"`
	Mint    domain.Address `json:"mint"`
	Owner   domain.Address `json:"owner"`
	Amount  uint64         `json:"amount"`
}

// BootstrapRequest creates the pools and funded accounts of a new
// registrar, then initializes it.
type BootstrapRequest struct {
	Initialize        InitializeRequest `json:"initialize"`
	PoolTokenMint     domain.Address    `json:"pool_token_mint"`
	MegaPoolTokenMint domain.Address    `json:"mega_pool_token_mint"`
	Accounts          []GenesisAccount  `json:"accounts"`
}

func (r *BootstrapRequest) Validate() error {
	if err := r.Initialize.Validate(); err != nil {
		return err
	}
	if err := requireAddresses([]string{"pool token mint", "mega pool token mint"}, r.PoolTokenMint, r.MegaPoolTokenMint); err != nil {
		return err
	}
	for _, account := range r.Accounts {
		if err := requireAddresses([]string{"account address", "account mint", "account owner"}, account.Address, account.Mint, account.Owner); err != nil {
			return err
		}
	}
	return nil
}

// RefreshRequest re-evaluates the activation state of every entity of a
// registrar.
type RefreshRequest struct {
	Registrar domain.Address `json:"registrar"`
}

func (r *RefreshRequest) Validate() error {
	return requireAddress("registrar", r.Registrar)
}
