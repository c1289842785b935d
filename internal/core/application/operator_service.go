package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
)

// OperatorService is the settlement-operator surface: plan-driven
// settlement against the bid ledgers and whitelist administration. The plan
// is computed off-path by the operator; this service is the sole verifier
// and the only authority for mutating state from it.
type OperatorService interface {
	MakeSwap(ctx context.Context, caller, id string, plan []SwapInstruction) error
	MakePartialSwap(ctx context.Context, caller, id string, plan []SwapInstruction) error
	AddToWhitelist(ctx context.Context, caller, asset string) error
	IsWhitelisted(ctx context.Context, asset string) (bool, error)
	ListWhitelist(ctx context.Context) ([]string, error)
}

type operatorService struct {
	*Engine
}

// NewOperatorService returns the OperatorService backed by the shared
// engine.
func NewOperatorService(engine *Engine) OperatorService {
	return &operatorService{engine}
}

// MakeSwap executes a full settlement: the plan plus the implicit flush of
// unrouted investor value to the owner must drain both ledgers to zero,
// otherwise the call fails and nothing changes.
func (s *operatorService) MakeSwap(
	ctx context.Context, caller, id string, plan []SwapInstruction,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, movements, err := s.prepareSwap(ctx, caller, id, plan)
	if err != nil {
		return err
	}

	// Investor value the plan did not reroute is owner proceeds.
	for i := range order.InvestorBids {
		entry := &order.InvestorBids[i]
		if entry.Remaining == 0 {
			continue
		}
		movements = payout(
			movements, order, domain.InvestorLedger,
			entry.Asset, order.Owner, entry.Remaining,
		)
		entry.Remaining = 0
	}

	if !order.IsDrained() {
		return domain.ErrUnconsumedRemainder
	}
	order.IsSwapped = true

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":        id,
		"instructions": len(plan),
	}).Info("order swapped")
	return nil
}

// MakePartialSwap executes exactly the plan's instructions, leaving any
// remainder in place; the order closes only once both ledgers reach zero.
func (s *operatorService) MakePartialSwap(
	ctx context.Context, caller, id string, plan []SwapInstruction,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, movements, err := s.prepareSwap(ctx, caller, id, plan)
	if err != nil {
		return err
	}

	swapped := order.MarkSwappedIfDrained()

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":        id,
		"instructions": len(plan),
		"swapped":      swapped,
	}).Info("partial swap executed")
	return nil
}

// prepareSwap runs the shared validation and applies the plan to an
// in-memory copy of the order, returning the staged custody movements.
func (s *operatorService) prepareSwap(
	ctx context.Context, caller, id string, plan []SwapInstruction,
) (*domain.Order, []ports.Movement, error) {
	if caller != s.operator {
		return nil, nil, ErrNotOperator
	}
	if len(plan) == 0 {
		return nil, nil, ErrEmptyPlan
	}

	order, err := s.getLiveOrder(ctx, id, true)
	if err != nil {
		return nil, nil, err
	}
	if len(order.InvestorBids) == 0 {
		return nil, nil, domain.ErrNoInvestorBids
	}

	var movements []ports.Movement
	for _, instr := range plan {
		if instr.Amount == 0 {
			return nil, nil, domain.ErrZeroAmount
		}
		if !isParticipant(order, instr.Recipient) {
			return nil, nil, domain.ErrInvalidRecipient
		}

		source := domain.OwnerLedger
		if instr.SourceDepositor == "" {
			// Aggregate owner-ledger pool, oldest entries first.
			if err := order.ConsumeFromOwnerPool(instr.Asset, instr.Amount); err != nil {
				return nil, nil, err
			}
		} else {
			ref, err := order.FindSource(instr.SourceDepositor, instr.Asset)
			if err != nil {
				return nil, nil, err
			}
			entry := ref.Entry(order)
			if entry.Remaining < instr.Amount {
				return nil, nil, domain.ErrInsufficientRemaining
			}
			entry.Remaining -= instr.Amount
			source = ref.Side
		}

		movements = payout(
			movements, order, source, instr.Asset, instr.Recipient, instr.Amount,
		)
	}

	return order, movements, nil
}

func isParticipant(o *domain.Order, recipient string) bool {
	if recipient == o.Owner || o.HasInvestor(recipient) {
		return true
	}
	return (o.OwnerBroker != "" && recipient == o.OwnerBroker) ||
		(o.InvestorBroker != "" && recipient == o.InvestorBroker)
}

func (s *operatorService) AddToWhitelist(
	ctx context.Context, caller, asset string,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if caller != s.operator {
		return ErrNotOperator
	}
	if err := s.whitelistRepo.AddAsset(ctx, asset); err != nil {
		return err
	}

	log.WithField("asset", asset).Info("asset whitelisted")
	return nil
}

func (s *operatorService) IsWhitelisted(
	ctx context.Context, asset string,
) (bool, error) {
	return s.whitelistRepo.IsWhitelisted(ctx, asset)
}

func (s *operatorService) ListWhitelist(ctx context.Context) ([]string, error) {
	return s.whitelistRepo.ListAssets(ctx)
}
