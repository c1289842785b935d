package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
)

// OrderService is the caller-facing surface for the order lifecycle: key
// derivation, creation, deposits, cancellation and bid mutation, plus the
// read accessors.
type OrderService interface {
	DeriveKey(owner string) string
	NextKey(owner string) string
	CreateOrder(ctx context.Context, params CreateOrderParams) (*OrderInfo, error)
	Deposit(ctx context.Context, id, depositor, asset string, amount, nativeValue uint64) error
	Cancel(ctx context.Context, id, caller string) error
	CancelBid(ctx context.Context, id, caller string, index int) error
	ChangeBid(ctx context.Context, id, caller string, index int, newAmount, nativeValue uint64) error
	GetOrder(ctx context.Context, id string) (*OrderInfo, error)
	GetOrdersByOwner(ctx context.Context, owner string) ([]*OrderInfo, error)
	Raised(ctx context.Context, id, asset string) (uint64, error)
	InvestmentsOf(ctx context.Context, id, depositor, asset string) (uint64, error)
	Investors(ctx context.Context, id string) ([]string, error)
}

type orderService struct {
	*Engine
}

// NewOrderService returns the OrderService backed by the shared engine.
func NewOrderService(engine *Engine) OrderService {
	return &orderService{engine}
}

func (s *orderService) DeriveKey(owner string) string {
	return s.keys.DeriveKey(owner)
}

func (s *orderService) NextKey(owner string) string {
	return s.keys.NextKey(owner)
}

func (s *orderService) CreateOrder(
	ctx context.Context, params CreateOrderParams,
) (*OrderInfo, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	id := params.Id
	if id == "" {
		id = s.keys.DeriveKey(params.Owner)
	}

	order, err := domain.NewOrder(
		id, params.Owner, params.SideAsset, params.Quantity, params.Expiry,
		params.OwnerBroker, params.OwnerBrokerRate,
		params.InvestorBroker, params.InvestorBrokerRate,
		params.Discount, params.OrderType, params.IsManual, s.now(),
	)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.AddOrder(ctx, order); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order": order.Id,
		"owner": order.Owner,
		"asset": order.SideAsset,
	}).Info("order created")

	return orderInfo(order), nil
}

func (s *orderService) Deposit(
	ctx context.Context, id, depositor, asset string, amount, nativeValue uint64,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if amount == 0 {
		return domain.ErrZeroAmount
	}

	order, err := s.getLiveOrder(ctx, id, true)
	if err != nil {
		return err
	}

	if asset == domain.NativeAsset {
		if nativeValue != amount {
			return domain.ErrPayableMismatch
		}
	} else {
		if nativeValue != 0 {
			return domain.ErrPayableNotAllowed
		}
		allowance, err := s.assetLedger.Allowance(ctx, depositor, s.custodyAccount, asset)
		if err != nil {
			return err
		}
		if allowance < amount {
			return domain.ErrInsufficientAllowance
		}
	}

	whitelisted, err := s.whitelistRepo.IsWhitelisted(ctx, asset)
	if err != nil {
		return err
	}
	if err := order.ValidateDepositAsset(depositor, asset, whitelisted); err != nil {
		return err
	}

	ref := order.AppendBid(depositor, asset, amount)

	movements := []ports.Movement{{
		Kind:        ports.MovementPull,
		OrderID:     id,
		Party:       depositor,
		Asset:       asset,
		Amount:      amount,
		NativeValue: nativeValue,
	}}
	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":  id,
		"side":   ref.Side.String(),
		"index":  ref.Index,
		"asset":  asset,
		"amount": amount,
	}).Info("deposit recorded")
	return nil
}

func (s *orderService) Cancel(ctx context.Context, id, caller string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.getLiveOrder(ctx, id, false)
	if err != nil {
		return err
	}
	if caller != order.Owner && caller != s.operator {
		return domain.ErrNotAuthorized
	}

	movements := refundAll(nil, order)
	order.IsCancelled = true

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":   id,
		"refunds": len(movements),
	}).Info("order cancelled")
	return nil
}

func (s *orderService) CancelBid(
	ctx context.Context, id, caller string, index int,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.getLiveOrder(ctx, id, false)
	if err != nil {
		return err
	}

	ref, err := order.ResolveBid(caller, index)
	if err != nil {
		return err
	}

	entry := ref.Entry(order)
	var movements []ports.Movement
	if entry.Remaining > 0 {
		movements = append(movements, ports.Movement{
			Kind:    ports.MovementRelease,
			OrderID: id,
			Party:   caller,
			Asset:   entry.Asset,
			Amount:  entry.Remaining,
		})
		entry.Remaining = 0
	}

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order": id,
		"side":  ref.Side.String(),
		"index": ref.Index,
	}).Info("bid cancelled")
	return nil
}

func (s *orderService) ChangeBid(
	ctx context.Context, id, caller string, index int, newAmount, nativeValue uint64,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.getLiveOrder(ctx, id, false)
	if err != nil {
		return err
	}

	ref, err := order.ResolveBid(caller, index)
	if err != nil {
		return err
	}
	entry := ref.Entry(order)

	var movements []ports.Movement
	switch {
	case newAmount > entry.Remaining:
		diff := newAmount - entry.Remaining
		if entry.Asset == domain.NativeAsset {
			if nativeValue != diff {
				return domain.ErrPayableMismatch
			}
		} else {
			if nativeValue != 0 {
				return domain.ErrPayableNotAllowed
			}
			allowance, err := s.assetLedger.Allowance(ctx, caller, s.custodyAccount, entry.Asset)
			if err != nil {
				return err
			}
			if allowance < diff {
				return domain.ErrInsufficientAllowance
			}
		}
		movements = append(movements, ports.Movement{
			Kind:        ports.MovementPull,
			OrderID:     id,
			Party:       caller,
			Asset:       entry.Asset,
			Amount:      diff,
			NativeValue: nativeValue,
		})
	case newAmount < entry.Remaining:
		if nativeValue != 0 {
			return domain.ErrPayableNotAllowed
		}
		movements = append(movements, ports.Movement{
			Kind:    ports.MovementRelease,
			OrderID: id,
			Party:   caller,
			Asset:   entry.Asset,
			Amount:  entry.Remaining - newAmount,
		})
	default:
		return nil
	}
	entry.Remaining = newAmount

	if err := s.commit(ctx, order, movements); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"order":  id,
		"side":   ref.Side.String(),
		"index":  ref.Index,
		"amount": newAmount,
	}).Info("bid changed")
	return nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*OrderInfo, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderInfo(order), nil
}

func (s *orderService) GetOrdersByOwner(
	ctx context.Context, owner string,
) ([]*OrderInfo, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	orders, err := s.orderRepo.GetOrdersByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	infos := make([]*OrderInfo, 0, len(orders))
	for _, o := range orders {
		infos = append(infos, orderInfo(o))
	}
	return infos, nil
}

func (s *orderService) Raised(ctx context.Context, id, asset string) (uint64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return 0, err
	}
	return order.Raised(asset), nil
}

func (s *orderService) InvestmentsOf(
	ctx context.Context, id, depositor, asset string,
) (uint64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return 0, err
	}
	return order.InvestmentsOf(depositor, asset), nil
}

func (s *orderService) Investors(ctx context.Context, id string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	order, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]string{}, order.Investors...), nil
}
