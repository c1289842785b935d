package domain

import "time"

// Order is a standing intent to exchange a declared quantity of one asset.
// It owns the lifecycle state machine: created once, accumulates bids, then
// terminates either cancelled (with full refund) or swapped (both ledgers
// drained to zero). Terminal records are never removed.
type Order struct {
	Id    string
	Owner string

	// SideAsset is the asset the owner is transacting, Quantity its
	// declared amount.
	SideAsset string
	Quantity  uint64

	// Expiry is a unix timestamp; time-sensitive operations reject the
	// order once it has passed.
	Expiry int64

	OwnerBroker        string
	OwnerBrokerRate    uint64
	InvestorBroker     string
	InvestorBrokerRate uint64

	// Discount is bounded by RateDenominator, recorded for reporting.
	Discount uint64

	OrderType int
	IsManual  bool

	IsCancelled bool
	IsSwapped   bool

	OwnerBids    []BidEntry
	InvestorBids []BidEntry

	// Investors is the deduplicated list of counterparty depositors, in
	// order of first deposit.
	Investors []string
}

// NewOrder validates the creation arguments and returns an order with both
// terminal flags unset and empty ledgers.
func NewOrder(
	id, owner, sideAsset string, quantity uint64, expiry int64,
	ownerBroker string, ownerBrokerRate uint64,
	investorBroker string, investorBrokerRate uint64,
	discount uint64, orderType int, isManual bool, now time.Time,
) (*Order, error) {
	if quantity == 0 {
		return nil, ErrZeroQuantity
	}
	if expiry <= now.Unix() {
		return nil, ErrExpiryNotInFuture
	}
	if discount > RateDenominator ||
		ownerBrokerRate > RateDenominator ||
		investorBrokerRate > RateDenominator {
		return nil, ErrRateTooHigh
	}

	return &Order{
		Id:                 id,
		Owner:              owner,
		SideAsset:          sideAsset,
		Quantity:           quantity,
		Expiry:             expiry,
		OwnerBroker:        ownerBroker,
		OwnerBrokerRate:    ownerBrokerRate,
		InvestorBroker:     investorBroker,
		InvestorBrokerRate: investorBrokerRate,
		Discount:           discount,
		OrderType:          orderType,
		IsManual:           isManual,
	}, nil
}

// Clone returns a deep copy of the order. Repositories hand out clones so
// aborted operations never leak partial mutations into stored state.
func (o *Order) Clone() *Order {
	cp := *o
	cp.OwnerBids = append([]BidEntry{}, o.OwnerBids...)
	cp.InvestorBids = append([]BidEntry{}, o.InvestorBids...)
	cp.Investors = append([]string{}, o.Investors...)
	return &cp
}

// IsLive returns whether the order has reached neither terminal state.
func (o *Order) IsLive() bool {
	return !o.IsCancelled && !o.IsSwapped
}

// IsExpired returns whether the expiration timestamp has passed at the
// given clock reading.
func (o *Order) IsExpired(now time.Time) bool {
	return now.Unix() > o.Expiry
}

// StatusError maps the terminal flags to the corresponding sentinel error,
// or nil for a live order.
func (o *Order) StatusError() error {
	if o.IsCancelled {
		return ErrOrderCancelled
	}
	if o.IsSwapped {
		return ErrOrderSwapped
	}
	return nil
}

// ValidateDepositAsset enforces the side rule: the side constrained to the
// order declaration must deposit SideAsset exactly, the opposite side any
// whitelisted asset. Which side is which depends on the order type.
func (o *Order) ValidateDepositAsset(depositor, asset string, whitelisted bool) error {
	fixed := o.OrderType == OrderTypeSell
	if depositor != o.Owner {
		fixed = o.OrderType == OrderTypeBuy
	}

	if fixed {
		if asset != o.SideAsset {
			return ErrAssetNotAllowed
		}
		return nil
	}
	if !whitelisted {
		return ErrAssetNotWhitelisted
	}
	return nil
}

// AppendBid appends a new entry to the ledger matching the depositor and
// records first-time investors.
func (o *Order) AppendBid(depositor, asset string, amount uint64) BidRef {
	entry := BidEntry{Depositor: depositor, Asset: asset, Remaining: amount}
	if depositor == o.Owner {
		o.OwnerBids = append(o.OwnerBids, entry)
		return BidRef{Side: OwnerLedger, Index: len(o.OwnerBids) - 1}
	}

	o.InvestorBids = append(o.InvestorBids, entry)
	if !o.HasInvestor(depositor) {
		o.Investors = append(o.Investors, depositor)
	}
	return BidRef{Side: InvestorLedger, Index: len(o.InvestorBids) - 1}
}

// HasInvestor returns whether the identity is recorded as an investor.
func (o *Order) HasInvestor(depositor string) bool {
	for _, inv := range o.Investors {
		if inv == depositor {
			return true
		}
	}
	return false
}

// ResolveBid locates the entry at index owned by the caller, checking the
// owner ledger first and the investor ledger second.
func (o *Order) ResolveBid(caller string, index int) (BidRef, error) {
	if index >= 0 {
		if index < len(o.OwnerBids) && o.OwnerBids[index].Depositor == caller {
			return BidRef{Side: OwnerLedger, Index: index}, nil
		}
		if index < len(o.InvestorBids) && o.InvestorBids[index].Depositor == caller {
			return BidRef{Side: InvestorLedger, Index: index}, nil
		}
	}
	if index < 0 || (index >= len(o.OwnerBids) && index >= len(o.InvestorBids)) {
		return BidRef{}, ErrBidNotFound
	}
	return BidRef{}, ErrNotYourBid
}

// FindSource locates the first entry with nonzero remaining amount matching
// depositor and asset. Entries of the order owner live in the owner ledger,
// everyone else's in the investor ledger.
func (o *Order) FindSource(depositor, asset string) (BidRef, error) {
	side, ledger := InvestorLedger, o.InvestorBids
	if depositor == o.Owner {
		side, ledger = OwnerLedger, o.OwnerBids
	}
	for i := range ledger {
		if ledger[i].Depositor == depositor && ledger[i].Asset == asset && ledger[i].Remaining > 0 {
			return BidRef{Side: side, Index: i}, nil
		}
	}
	return BidRef{}, ErrBidNotFound
}

// ConsumeFromOwnerPool drains amount of the given asset from the owner
// ledger, oldest entries first. It fails without mutating anything if the
// pool holds less than amount.
func (o *Order) ConsumeFromOwnerPool(asset string, amount uint64) error {
	var available uint64
	for i := range o.OwnerBids {
		if o.OwnerBids[i].Asset == asset {
			available += o.OwnerBids[i].Remaining
		}
	}
	if available < amount {
		return ErrInsufficientRemaining
	}

	left := amount
	for i := range o.OwnerBids {
		if left == 0 {
			break
		}
		entry := &o.OwnerBids[i]
		if entry.Asset != asset || entry.Remaining == 0 {
			continue
		}
		take := entry.Remaining
		if take > left {
			take = left
		}
		entry.Remaining -= take
		left -= take
	}
	return nil
}

// IsDrained returns whether every entry in both ledgers has zero remaining
// amount.
func (o *Order) IsDrained() bool {
	for i := range o.OwnerBids {
		if o.OwnerBids[i].Remaining > 0 {
			return false
		}
	}
	for i := range o.InvestorBids {
		if o.InvestorBids[i].Remaining > 0 {
			return false
		}
	}
	return true
}

// MarkSwappedIfDrained flips the swapped flag the moment both ledgers are
// fully drained and reports whether it did.
func (o *Order) MarkSwappedIfDrained() bool {
	if o.IsLive() && o.IsDrained() {
		o.IsSwapped = true
		return true
	}
	return false
}

// Raised returns the total remaining amount of the asset across both
// ledgers. The custody balance attributable to the order must equal it for
// every asset at all times.
func (o *Order) Raised(asset string) uint64 {
	var total uint64
	for i := range o.OwnerBids {
		if o.OwnerBids[i].Asset == asset {
			total += o.OwnerBids[i].Remaining
		}
	}
	for i := range o.InvestorBids {
		if o.InvestorBids[i].Asset == asset {
			total += o.InvestorBids[i].Remaining
		}
	}
	return total
}

// InvestmentsOf returns the depositor's total remaining amount of the asset
// across both ledgers.
func (o *Order) InvestmentsOf(depositor, asset string) uint64 {
	var total uint64
	for _, ledger := range [][]BidEntry{o.OwnerBids, o.InvestorBids} {
		for i := range ledger {
			if ledger[i].Depositor == depositor && ledger[i].Asset == asset {
				total += ledger[i].Remaining
			}
		}
	}
	return total
}

// Assets returns the distinct assets present in either ledger.
func (o *Order) Assets() []string {
	seen := make(map[string]struct{})
	assets := make([]string, 0)
	for _, ledger := range [][]BidEntry{o.OwnerBids, o.InvestorBids} {
		for i := range ledger {
			if _, ok := seen[ledger[i].Asset]; !ok {
				seen[ledger[i].Asset] = struct{}{}
				assets = append(assets, ledger[i].Asset)
			}
		}
	}
	return assets
}

// ActiveBids returns the number of entries with nonzero remaining amount on
// the given side.
func (o *Order) ActiveBids(side LedgerSide) int {
	ledger := o.OwnerBids
	if side == InvestorLedger {
		ledger = o.InvestorBids
	}
	count := 0
	for i := range ledger {
		if ledger[i].Remaining > 0 {
			count++
		}
	}
	return count
}
