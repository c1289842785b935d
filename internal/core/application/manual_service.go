package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
)

// ManualService is the operator-free settlement path for orders flagged
// manual: the owner picks the bids to accept and the engine performs the
// pairwise exchange, applying the same broker splits as the plan-driven
// path.
type ManualService interface {
	MakeSwapOrderOwner(ctx context.Context, id, caller string, investorIndex int) error
	MakePartialSwapByOwner(ctx context.Context, id, caller string, ownerIndex int, pairs []PartialPair) error
}

type manualService struct {
	*Engine
}

// NewManualService returns the ManualService backed by the shared engine.
func NewManualService(engine *Engine) ManualService {
	return &manualService{engine}
}

// MakeSwapOrderOwner settles the chosen investor bid in full: its remaining
// amount goes to the owner and the whole remaining owner ledger goes to its
// depositor. Untouched investor bids stay open for further settlement or
// cancellation.
func (s *manualService) MakeSwapOrderOwner(
	ctx context.Context, id, caller string, investorIndex int,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.getManualOrder(ctx, id, caller)
	if err != nil {
		return err
	}
	if investorIndex < 0 || investorIndex >= len(order.InvestorBids) {
		return domain.ErrBidNotFound
	}
	chosen := &order.InvestorBids[investorIndex]
	if chosen.Remaining == 0 {
		return domain.ErrBidNotFound
	}
	investor := chosen.Depositor

	var movements []ports.Movement
	movements = payout(
		movements, order, domain.InvestorLedger,
		chosen.Asset, order.Owner, chosen.Remaining,
	)
	chosen.Remaining = 0

	for i := range order.OwnerBids {
		entry := &order.OwnerBids[i]
		if entry.Remaining == 0 {
			continue
		}
		movements = payout(
			movements, order, domain.OwnerLedger,
			entry.Asset, investor, entry.Remaining,
		)
		entry.Remaining = 0
	}

	swapped := order.MarkSwappedIfDrained()

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":    id,
		"investor": investor,
		"swapped":  swapped,
	}).Info("manual swap executed")
	return nil
}

// MakePartialSwapByOwner draws each pair's amount from the owner entry at
// ownerIndex to the referenced investor and pays that investor bid's full
// remaining amount to the owner.
func (s *manualService) MakePartialSwapByOwner(
	ctx context.Context, id, caller string, ownerIndex int, pairs []PartialPair,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(pairs) == 0 {
		return ErrEmptyPlan
	}

	order, err := s.getManualOrder(ctx, id, caller)
	if err != nil {
		return err
	}
	if ownerIndex < 0 || ownerIndex >= len(order.OwnerBids) {
		return domain.ErrBidNotFound
	}
	ownerEntry := &order.OwnerBids[ownerIndex]

	var movements []ports.Movement
	for _, pair := range pairs {
		if pair.Amount == 0 {
			return domain.ErrZeroAmount
		}
		if pair.InvestorIndex < 0 || pair.InvestorIndex >= len(order.InvestorBids) {
			return domain.ErrBidNotFound
		}
		investorEntry := &order.InvestorBids[pair.InvestorIndex]
		if investorEntry.Remaining == 0 {
			return domain.ErrBidNotFound
		}
		if ownerEntry.Remaining < pair.Amount {
			return domain.ErrInsufficientRemaining
		}

		ownerEntry.Remaining -= pair.Amount
		movements = payout(
			movements, order, domain.OwnerLedger,
			ownerEntry.Asset, investorEntry.Depositor, pair.Amount,
		)

		movements = payout(
			movements, order, domain.InvestorLedger,
			investorEntry.Asset, order.Owner, investorEntry.Remaining,
		)
		investorEntry.Remaining = 0
	}

	swapped := order.MarkSwappedIfDrained()

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":   id,
		"pairs":   len(pairs),
		"swapped": swapped,
	}).Info("manual partial swap executed")
	return nil
}

// getManualOrder loads a live, unexpired order flagged manual and checks
// the caller is its owner.
func (s *manualService) getManualOrder(
	ctx context.Context, id, caller string,
) (*domain.Order, error) {
	order, err := s.getLiveOrder(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !order.IsManual {
		return nil, domain.ErrNotManualOrder
	}
	if caller != order.Owner {
		return nil, domain.ErrNotOrderOwner
	}
	return order, nil
}
