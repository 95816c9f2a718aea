package domain

import (
	"strings"

	"github.com/tonkeeper/tongo"
	"golang.org/x/crypto/blake2b"
)

const (
	AddrFormatRaw          = "raw"
	AddrFormatBouncable    = "bouncable"
	AddrFormatNonBouncable = "non-bouncable"
)

// Address identifies every record the registry knows about: registrars,
// entities, members, pending withdrawals, token accounts, mints and pools.
type Address tongo.AccountID

var ZeroAddress Address

func NewAddress(hash [32]byte) Address {
	return Address(*tongo.NewAccountId(0, hash))
}

func ParseAddress(s string) (Address, error) {
	accid, err := tongo.ParseAccountID(strings.TrimSpace(s))
	if err != nil {
		return ZeroAddress, err
	}
	return Address(accid), nil
}

func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return tongo.AccountID(a).ToRaw()
}

func (a Address) Format(format string, testnet bool) string {
	accid := tongo.AccountID(a)
	switch strings.ToLower(format) {
	case AddrFormatBouncable:
		return accid.ToHuman(true, testnet)
	case AddrFormatNonBouncable:
		return accid.ToHuman(false, testnet)
	}
	return accid.ToRaw()
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = ZeroAddress
		return nil
	}
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// DeriveAddress deterministically derives an address from a base address and
// a seed. It is used for the registrar's vault signer and for the vaults the
// registrar owns.
func DeriveAddress(base Address, seed ...[]byte) Address {
	h, _ := blake2b.New256(nil)
	accid := tongo.AccountID(base)
	h.Write(accid.Address[:])
	for _, s := range seed {
		h.Write(s)
	}
	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return NewAddress(hash)
}

// VaultSigner is the program-derived authority owning all registrar vaults.
func VaultSigner(registrar Address, nonce uint8) Address {
	return DeriveAddress(registrar, []byte("vault-signer"), []byte{nonce})
}
