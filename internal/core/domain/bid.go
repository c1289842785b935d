package domain

// LedgerSide discriminates the two bid ledgers of an order.
type LedgerSide int

const (
	// OwnerLedger holds deposits made by the order owner.
	OwnerLedger LedgerSide = iota
	// InvestorLedger holds deposits made by counterparties.
	InvestorLedger
)

func (s LedgerSide) String() string {
	if s == OwnerLedger {
		return "owner"
	}
	return "investor"
}

// BidEntry is a single recorded deposit against an order. Entries are
// append-only slots: settlement and cancellation reduce Remaining toward
// zero but never remove the slot, so indices stay stable across repeated
// partial settlements.
type BidEntry struct {
	Depositor string
	Asset     string
	Remaining uint64
}

// BidRef locates one ledger entry of an order. It is the resolved form of
// the "try owner ledger, then investor ledger" lookup used by bid mutation.
type BidRef struct {
	Side  LedgerSide
	Index int
}

// entries returns the ledger slice the reference points into.
func (r BidRef) entries(o *Order) []BidEntry {
	if r.Side == OwnerLedger {
		return o.OwnerBids
	}
	return o.InvestorBids
}

// Entry returns the referenced entry. The reference must have been obtained
// from ResolveBid or FindSource against the same order.
func (r BidRef) Entry(o *Order) *BidEntry {
	return &r.entries(o)[r.Index]
}
