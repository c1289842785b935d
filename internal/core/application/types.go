package application

import (
	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

// CreateOrderParams carries every creation argument of an order.
type CreateOrderParams struct {
	Id                 string
	Owner              string
	SideAsset          string
	Quantity           uint64
	Expiry             int64
	OwnerBroker        string
	OwnerBrokerRate    uint64
	InvestorBroker     string
	InvestorBrokerRate uint64
	Discount           uint64
	OrderType          int
	IsManual           bool
}

// SwapInstruction is one payout of a settlement plan. SourceDepositor
// identifies whose ledger entry the amount is drawn from; the empty string
// is the sentinel selecting the aggregate owner-ledger pool for the asset.
type SwapInstruction struct {
	Recipient       string
	Asset           string
	Amount          uint64
	SourceDepositor string
}

// PartialPair selects one investor-ledger entry and the amount of the
// chosen owner entry paid to its depositor in owner-driven partial
// settlement.
type PartialPair struct {
	InvestorIndex int
	Amount        uint64
}

// BidInfo is the read model of a ledger entry.
type BidInfo struct {
	Index     int    `json:"index"`
	Depositor string `json:"depositor"`
	Asset     string `json:"asset"`
	Remaining uint64 `json:"remaining"`
}

// OrderInfo is the read model of an order.
type OrderInfo struct {
	Id                 string    `json:"id"`
	Owner              string    `json:"owner"`
	SideAsset          string    `json:"sideAsset"`
	Quantity           uint64    `json:"quantity"`
	Expiry             int64     `json:"expiry"`
	OwnerBroker        string    `json:"ownerBroker,omitempty"`
	OwnerBrokerRate    uint64    `json:"ownerBrokerRate,omitempty"`
	InvestorBroker     string    `json:"investorBroker,omitempty"`
	InvestorBrokerRate uint64    `json:"investorBrokerRate,omitempty"`
	Discount           uint64    `json:"discount"`
	OrderType          int       `json:"orderType"`
	IsManual           bool      `json:"isManual"`
	IsCancelled        bool      `json:"isCancelled"`
	IsSwapped          bool      `json:"isSwapped"`
	OwnerBids          []BidInfo `json:"ownerBids"`
	InvestorBids       []BidInfo `json:"investorBids"`
	Investors          []string  `json:"investors"`
}

func orderInfo(o *domain.Order) *OrderInfo {
	info := &OrderInfo{
		Id:                 o.Id,
		Owner:              o.Owner,
		SideAsset:          o.SideAsset,
		Quantity:           o.Quantity,
		Expiry:             o.Expiry,
		OwnerBroker:        o.OwnerBroker,
		OwnerBrokerRate:    o.OwnerBrokerRate,
		InvestorBroker:     o.InvestorBroker,
		InvestorBrokerRate: o.InvestorBrokerRate,
		Discount:           o.Discount,
		OrderType:          o.OrderType,
		IsManual:           o.IsManual,
		IsCancelled:        o.IsCancelled,
		IsSwapped:          o.IsSwapped,
		OwnerBids:          bidInfos(o.OwnerBids),
		InvestorBids:       bidInfos(o.InvestorBids),
		Investors:          append([]string{}, o.Investors...),
	}
	return info
}

func bidInfos(entries []domain.BidEntry) []BidInfo {
	infos := make([]BidInfo, 0, len(entries))
	for i, e := range entries {
		infos = append(infos, BidInfo{
			Index:     i,
			Depositor: e.Depositor,
			Asset:     e.Asset,
			Remaining: e.Remaining,
		})
	}
	return infos
}
