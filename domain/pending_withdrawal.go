package domain

// PendingPayment is one leg of a withdrawal payout.
type PendingPayment struct {
	AssetAmount     uint64  `json:"asset_amount"`
	MegaAssetAmount uint64  `json:"mega_asset_amount"`
	Recipient       Address `json:"recipient"`
	MegaRecipient   Address `json:"mega_recipient"`
}

func newPendingPayment(quantities []uint64, mega bool) PendingPayment {
	if mega {
		return PendingPayment{MegaAssetAmount: quantities[0], AssetAmount: quantities[1]}
	}
	return PendingPayment{AssetAmount: quantities[0]}
}

func (p PendingPayment) IsZero() bool {
	return p.AssetAmount == 0 && p.MegaAssetAmount == 0
}

// PendingWithdrawal is the receipt of a started stake withdrawal. It is paid
// out and burned once its timelock has passed.
type PendingWithdrawal struct {
	Initialized bool `json:"initialized"`
	// Burned is set once, when the receipt is paid out.
	Burned          bool           `json:"burned"`
	Member          Address        `json:"member"`
	Delegate        bool           `json:"delegate"`
	Mega            bool           `json:"mega"`
	StartTs         int64          `json:"start_ts"`
	EndTs           int64          `json:"end_ts"`
	SptAmount       uint64         `json:"spt_amount"`
	Pool            Address        `json:"pool"`
	Payment         PendingPayment `json:"payment"`
	DelegatePayment PendingPayment `json:"delegate_payment"`
}

func (pw *PendingWithdrawal) Matured(now int64) bool {
	return now >= pw.EndTs
}
