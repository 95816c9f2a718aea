package ledger

import (
	"errors"
	"fmt"

	"registry/domain"

	"github.com/ethereum/go-ethereum/common/math"
)

// State is the record access the programs need. The repository unit of work
// implements it, so token and pool effects commit atomically with the
// registry records.
type State interface {
	TokenAccount(address domain.Address) (*domain.TokenAccount, error)
	PutTokenAccount(address domain.Address, account *domain.TokenAccount) error
	PoolState(address domain.Address) (*domain.PoolState, error)
	PutPoolState(address domain.Address, pool *domain.PoolState) error
}

// TokenProgram is an in-process token ledger.
type TokenProgram struct {
	state State
}

func NewTokenProgram(state State) *TokenProgram {
	return &TokenProgram{state: state}
}

func (p *TokenProgram) Account(address domain.Address) (*domain.TokenAccount, error) {
	return p.state.TokenAccount(address)
}

func (p *TokenProgram) InitAccount(address, mint, owner domain.Address) error {
	if _, err := p.state.TokenAccount(address); err == nil {
		return fmt.Errorf("token account %v: %w", address, domain.ErrorAlreadyInitialized)
	} else if !isNotFound(err) {
		return err
	}
	return p.state.PutTokenAccount(address, &domain.TokenAccount{Mint: mint, Owner: owner})
}

func (p *TokenProgram) Transfer(from, to, authority domain.Address, amount uint64) error {
	src, err := p.state.TokenAccount(from)
	if err != nil {
		return fmt.Errorf("source %v: %w", from, err)
	}
	dst, err := p.state.TokenAccount(to)
	if err != nil {
		return fmt.Errorf("destination %v: %w", to, err)
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: %v does not own %v", domain.ErrorInvalidTokenAuthority, authority, from)
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: %v -> %v", domain.ErrorMintMismatch, from, to)
	}
	if from == to {
		return nil
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %v holds %v, want %v", domain.ErrorInsufficientFunds, from, src.Amount, amount)
	}
	credited, overflow := math.SafeAdd(dst.Amount, amount)
	if overflow {
		return fmt.Errorf("%w: credit %v", domain.ErrorCheckedFailure, to)
	}

	src.Amount -= amount
	dst.Amount = credited
	if err := p.state.PutTokenAccount(from, src); err != nil {
		return err
	}
	return p.state.PutTokenAccount(to, dst)
}

// mint creates amount new tokens in an account. Only the pool calls it.
func (p *TokenProgram) mint(to, mint domain.Address, amount uint64) error {
	dst, err := p.state.TokenAccount(to)
	if err != nil {
		return fmt.Errorf("destination %v: %w", to, err)
	}
	if dst.Mint != mint {
		return fmt.Errorf("%w: %v is not a %v account", domain.ErrorMintMismatch, to, mint)
	}
	credited, overflow := math.SafeAdd(dst.Amount, amount)
	if overflow {
		return fmt.Errorf("%w: mint to %v", domain.ErrorCheckedFailure, to)
	}
	dst.Amount = credited
	return p.state.PutTokenAccount(to, dst)
}

func (p *TokenProgram) burn(from, mint, authority domain.Address, amount uint64) error {
	src, err := p.state.TokenAccount(from)
	if err != nil {
		return fmt.Errorf("source %v: %w", from, err)
	}
	if src.Mint != mint {
		return fmt.Errorf("%w: %v is not a %v account", domain.ErrorMintMismatch, from, mint)
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: %v does not own %v", domain.ErrorInvalidTokenAuthority, authority, from)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: %v holds %v, want %v", domain.ErrorInsufficientFunds, from, src.Amount, amount)
	}
	src.Amount -= amount
	return p.state.PutTokenAccount(from, src)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrorRecordNotFound)
}
