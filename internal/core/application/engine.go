package application

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
)

// Engine bundles the shared state behind every service: repositories, the
// external collaborators and the lock serializing all mutating operations.
// Each call runs to completion with no interleaving and either commits all
// its effects or none.
type Engine struct {
	mtx sync.Mutex

	orderRepo     domain.OrderRepository
	whitelistRepo domain.WhitelistRepository
	assetLedger   ports.AssetLedger
	custody       ports.Custody
	keys          *domain.KeyDeriver

	// operator is the identity allowed to run plan-driven settlement and
	// whitelist administration.
	operator string
	// custodyAccount is the identity allowance must be granted to.
	custodyAccount string

	now func() time.Time
}

// NewEngine wires the shared dependencies. A nil clock defaults to
// time.Now.
func NewEngine(
	orderRepo domain.OrderRepository,
	whitelistRepo domain.WhitelistRepository,
	assetLedger ports.AssetLedger,
	custody ports.Custody,
	keys *domain.KeyDeriver,
	operator, custodyAccount string,
	now func() time.Time,
) *Engine {
	if now == nil {
		now = time.Now
	}
	if keys == nil {
		keys = domain.NewKeyDeriver(now, 0)
	}
	return &Engine{
		orderRepo:      orderRepo,
		whitelistRepo:  whitelistRepo,
		assetLedger:    assetLedger,
		custody:        custody,
		keys:           keys,
		operator:       operator,
		custodyAccount: custodyAccount,
		now:            now,
	}
}

// getLiveOrder loads the order and rejects terminal or, when checkExpiry is
// set, expired records.
func (e *Engine) getLiveOrder(
	ctx context.Context, id string, checkExpiry bool,
) (*domain.Order, error) {
	order, err := e.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.StatusError(); err != nil {
		return nil, err
	}
	if checkExpiry && order.IsExpired(e.now()) {
		return nil, domain.ErrOrderExpired
	}
	return order, nil
}

// commit applies the custody movements and then stores the updated order.
// Movements run first because the asset ledger is the collaborator that can
// legitimately fail; if it does, the repository is left untouched.
func (e *Engine) commit(
	ctx context.Context, updated *domain.Order, movements []ports.Movement,
) error {
	if len(movements) > 0 {
		if err := e.custody.Apply(ctx, movements); err != nil {
			log.WithError(err).WithField("order", updated.Id).
				Error("custody rejected movement batch")
			return err
		}
	}

	return e.orderRepo.UpdateOrder(ctx, updated.Id, func(*domain.Order) (*domain.Order, error) {
		return updated, nil
	})
}

// payout appends the movements releasing amount from the order's escrow to
// the recipient, splitting off the broker fee when the source side and
// recipient match a configured broker rate: owner-ledger value paid to a
// non-owner recipient is skimmed by the investor broker, investor-ledger
// value paid to the owner by the owner broker.
func payout(
	movements []ports.Movement, o *domain.Order,
	source domain.LedgerSide, asset, recipient string, amount uint64,
) []ports.Movement {
	if amount == 0 {
		return movements
	}

	broker, rate := "", uint64(0)
	switch {
	case source == domain.OwnerLedger && recipient != o.Owner:
		broker, rate = o.InvestorBroker, o.InvestorBrokerRate
	case source == domain.InvestorLedger && recipient == o.Owner:
		broker, rate = o.OwnerBroker, o.OwnerBrokerRate
	}

	if broker != "" && rate > 0 {
		fee, principal := domain.SplitBrokerFee(amount, rate)
		if fee > 0 {
			movements = append(movements, ports.Movement{
				Kind:    ports.MovementRelease,
				OrderID: o.Id,
				Party:   broker,
				Asset:   asset,
				Amount:  fee,
			})
		}
		amount = principal
	}

	if amount > 0 {
		movements = append(movements, ports.Movement{
			Kind:    ports.MovementRelease,
			OrderID: o.Id,
			Party:   recipient,
			Asset:   asset,
			Amount:  amount,
		})
	}
	return movements
}

// refundAll appends a release of every nonzero entry in both ledgers back
// to its original depositor, zeroing the entries. Refunds are exact: no
// broker split applies.
func refundAll(movements []ports.Movement, o *domain.Order) []ports.Movement {
	for _, ledger := range [][]domain.BidEntry{o.OwnerBids, o.InvestorBids} {
		for i := range ledger {
			entry := &ledger[i]
			if entry.Remaining == 0 {
				continue
			}
			movements = append(movements, ports.Movement{
				Kind:    ports.MovementRelease,
				OrderID: o.Id,
				Party:   entry.Depositor,
				Asset:   entry.Asset,
				Amount:  entry.Remaining,
			})
			entry.Remaining = 0
		}
	}
	return movements
}
