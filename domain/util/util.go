package util

import (
	"fmt"
	"math/big"

	"registry/domain"

	"github.com/dustin/go-humanize"
)

// AmountString renders a raw asset amount with thousands separators.
func AmountString(amount uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(amount))
}

// SptString renders a pool token amount.
func SptString(spt uint64, mega bool) string {
	if mega {
		return fmt.Sprintf("%v mega SPT", AmountString(spt))
	}
	return fmt.Sprintf("%v SPT", AmountString(spt))
}

// BalancesString renders every field of a balances record.
func BalancesString(b domain.Balances) string {
	return fmt.Sprintf("spt=%v mega_spt=%v pending=%v mega_pending=%v intent=%v mega_intent=%v basis=%v mega_basis=%v",
		AmountString(b.SptAmount),
		AmountString(b.SptMegaAmount),
		AmountString(b.SptPendingWithdrawals),
		AmountString(b.SptMegaPendingWithdrawals),
		AmountString(b.StakeIntent),
		AmountString(b.MegaStakeIntent),
		AmountString(b.CostBasis),
		AmountString(b.MegaCostBasis),
	)
}

// TimelockString renders a timelock given in seconds.
func TimelockString(seconds int64) string {
	return fmt.Sprintf("%vs", humanize.Comma(seconds))
}
