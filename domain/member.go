package domain

import "fmt"

// Watchtower may withdraw the main book's stake intent on behalf of the
// beneficiary, always to its configured destinations.
type Watchtower struct {
	Authority Address `json:"authority"`
	Dst       Address `json:"dst"`
	MegaDst   Address `json:"mega_dst"`
}

func (w Watchtower) IsSet() bool {
	return !w.Authority.IsZero()
}

// MemberBooks partitions a member's balances. Delegate funds belong to the
// member but every operation touching them needs both the delegate and the
// beneficiary.
type MemberBooks struct {
	Main     Book `json:"main"`
	Delegate Book `json:"delegate"`
}

// Member tracks one depositor's membership with an entity.
type Member struct {
	Initialized bool    `json:"initialized"`
	Registrar   Address `json:"registrar"`
	Entity      Address `json:"entity"`
	Beneficiary Address `json:"beneficiary"`
	// Generation is the entity generation the member's stake belongs to.
	Generation uint64      `json:"generation"`
	Watchtower Watchtower  `json:"watchtower"`
	Books      MemberBooks `json:"books"`
	// LastActiveStakeCtx is the price at which pool tokens were last created.
	// Withdrawals on an inactive entity are marked to it.
	LastActiveStakeCtx *StakeContext `json:"last_active_stake_ctx,omitempty"`
}

func NewMember(registrar, entity, beneficiary, delegate Address, generation uint64) *Member {
	return &Member{
		Initialized: true,
		Registrar:   registrar,
		Entity:      entity,
		Beneficiary: beneficiary,
		Generation:  generation,
		Books: MemberBooks{
			Main:     Book{Owner: beneficiary},
			Delegate: Book{Owner: delegate},
		},
	}
}

func (m *Member) Book(delegate bool) *Book {
	if delegate {
		return &m.Books.Delegate
	}
	return &m.Books.Main
}

func (m *Member) StakeIntent(mega, delegate bool) uint64 {
	return *m.Book(delegate).Balances.stakeIntent(mega)
}

func (m *Member) Spt(mega, delegate bool) uint64 {
	return *m.Book(delegate).Balances.spt(mega)
}

// TotalBalances sums both books.
func (m *Member) TotalBalances() (Balances, error) {
	total := m.Books.Main.Balances
	if err := total.Add(m.Books.Delegate.Balances); err != nil {
		return Balances{}, err
	}
	return total, nil
}

func (m *Member) StakeIntentDidDeposit(amount uint64, mega, delegate bool) error {
	return m.Book(delegate).Balances.depositStakeIntent(amount, mega)
}

// StakeIntentDidWithdraw debits stake intent and its cost basis. Callers
// check the balance first so the error is reported before any transfer.
func (m *Member) StakeIntentDidWithdraw(amount uint64, mega, delegate bool) error {
	return m.Book(delegate).Balances.withdrawStakeIntent(amount, mega)
}

// SptDidCreate credits pool tokens bought from outside funds at price.
func (m *Member) SptDidCreate(ctx *StakeContext, spt uint64, price []uint64, mega, delegate bool) error {
	if err := m.Book(delegate).Balances.createSpt(spt, price, mega); err != nil {
		return err
	}
	m.LastActiveStakeCtx = ctx
	return nil
}

// StakeIntentDidTransfer credits pool tokens paid for with stake intent.
func (m *Member) StakeIntentDidTransfer(ctx *StakeContext, spt uint64, price []uint64, mega, delegate bool) error {
	if err := m.Book(delegate).Balances.convertStakeIntent(spt, price, mega); err != nil {
		return err
	}
	m.LastActiveStakeCtx = ctx
	return nil
}

// Redemption splits the proceeds of redeemed pool tokens between the main
// and delegate books.
type Redemption struct {
	Main     PendingPayment
	Delegate PendingPayment
	// Basis is the cost basis released per asset, in basket order.
	Basis []uint64
}

// SptDidRedeem moves spt into pending withdrawal and splits price, the
// current value of those tokens, between the books. A delegate is repaid at
// most the cost basis it has in pool tokens and any excess goes to main.
func (m *Member) SptDidRedeem(spt uint64, price []uint64, mega, delegate bool) (Redemption, error) {
	book := m.Book(delegate)
	intents, bases := book.Balances.assets(mega)
	if len(price) != len(bases) {
		return Redemption{}, fmt.Errorf("%w: price has %v quantities, want %v", ErrorInvalidBasket, len(price), len(bases))
	}

	owed := make([]uint64, len(price))
	excess := make([]uint64, len(price))
	for i, p := range price {
		var sptBasis uint64
		if *bases[i] > *intents[i] {
			sptBasis = *bases[i] - *intents[i]
		}
		owed[i] = p
		if sptBasis < p {
			owed[i] = sptBasis
		}
		excess[i] = p - owed[i]
	}

	if err := book.Balances.redeemSpt(spt, owed, mega); err != nil {
		return Redemption{}, err
	}

	if !delegate {
		return Redemption{Main: newPendingPayment(price, mega), Basis: owed}, nil
	}
	return Redemption{
		Main:     newPendingPayment(excess, mega),
		Delegate: newPendingPayment(owed, mega),
		Basis:    owed,
	}, nil
}

func (m *Member) PendingWithdrawalDidEnd(spt uint64, mega, delegate bool) error {
	return m.Book(delegate).Balances.endPendingWithdrawal(spt, mega)
}

// StakeIsEmpty reports whether the member holds no pool tokens in either
// book.
func (m *Member) StakeIsEmpty() bool {
	main, delegate := m.Books.Main.Balances, m.Books.Delegate.Balances
	return main.SptAmount == 0 &&
		main.SptMegaAmount == 0 &&
		delegate.SptAmount == 0 &&
		delegate.SptMegaAmount == 0
}

// IsStale reports whether the member holds pool tokens created under an
// older activation of the entity.
func (m *Member) IsStale(entity *Entity) bool {
	return m.Generation != entity.Generation && !m.StakeIsEmpty()
}

// SetDelegate replaces the delegate book. Only an empty book can be handed
// over, so no funds are orphaned.
func (m *Member) SetDelegate(delegate Address) error {
	if !m.Books.Delegate.Balances.IsEmpty() {
		return ErrorDelegateBookNotEmpty
	}
	m.Books.Delegate = Book{Owner: delegate}
	return nil
}
