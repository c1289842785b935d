package vault

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/core/ports"
)

// Receipt is the audit record of one executed custody movement.
type Receipt struct {
	Id        string
	Kind      ports.MovementKind
	OrderID   string
	Party     string
	Asset     string
	Amount    uint64
	Timestamp int64
}

// Service is the custody holder: it keeps a journal of escrowed balance per
// (order, asset) and instructs the asset ledger to move funds in and out of
// its own account. It never releases more than an order has escrowed.
type Service struct {
	mtx sync.Mutex

	ledger  ports.AssetLedger
	account string

	escrow   map[string]map[string]uint64
	receipts map[string][]Receipt
}

// NewService returns a vault holding escrow on the given asset-ledger
// account.
func NewService(ledger ports.AssetLedger, account string) *Service {
	return &Service{
		ledger:   ledger,
		account:  account,
		escrow:   make(map[string]map[string]uint64),
		receipts: make(map[string][]Receipt),
	}
}

// Apply executes the movement batch atomically against the escrow journal
// and the asset ledger. Pulls run before releases so a failing external
// transfer can be compensated by returning already-pulled funds.
func (s *Service) Apply(ctx context.Context, movements []ports.Movement) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.validate(movements); err != nil {
		return err
	}

	ordered := make([]ports.Movement, 0, len(movements))
	for _, m := range movements {
		if m.Kind == ports.MovementPull {
			ordered = append(ordered, m)
		}
	}
	for _, m := range movements {
		if m.Kind == ports.MovementRelease {
			ordered = append(ordered, m)
		}
	}

	applied := make([]ports.Movement, 0, len(ordered))
	for _, m := range ordered {
		if err := s.transfer(ctx, m); err != nil {
			s.compensate(ctx, applied)
			return fmt.Errorf("custody transfer failed: %w", err)
		}
		applied = append(applied, m)
	}

	now := time.Now().Unix()
	for _, m := range ordered {
		s.record(m, now)
	}
	return nil
}

// Escrowed returns the balance held for the (order, asset) pair.
func (s *Service) Escrowed(_ context.Context, orderID, asset string) (uint64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.escrow[orderID][asset], nil
}

// Receipts returns the audit trail of the order's custody movements.
func (s *Service) Receipts(orderID string) []Receipt {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return append([]Receipt{}, s.receipts[orderID]...)
}

// validate checks the whole batch against the journal before any transfer:
// cumulative releases per (order, asset) must stay within escrow plus the
// batch's own pulls, and native pulls must carry their value.
func (s *Service) validate(movements []ports.Movement) error {
	available := make(map[string]map[string]int64)
	for _, m := range movements {
		if m.Kind == ports.MovementPull {
			if m.Asset == domain.NativeAsset && m.NativeValue != m.Amount {
				return domain.ErrPayableMismatch
			}
			if m.Asset != domain.NativeAsset && m.NativeValue != 0 {
				return domain.ErrPayableNotAllowed
			}
		}

		if available[m.OrderID] == nil {
			available[m.OrderID] = make(map[string]int64)
			for asset, amount := range s.escrow[m.OrderID] {
				available[m.OrderID][asset] = int64(amount)
			}
		}
		switch m.Kind {
		case ports.MovementPull:
			available[m.OrderID][m.Asset] += int64(m.Amount)
		case ports.MovementRelease:
			available[m.OrderID][m.Asset] -= int64(m.Amount)
			if available[m.OrderID][m.Asset] < 0 {
				return fmt.Errorf(
					"release of %d %s exceeds escrow of order %s",
					m.Amount, m.Asset, m.OrderID,
				)
			}
		}
	}
	return nil
}

func (s *Service) transfer(ctx context.Context, m ports.Movement) error {
	if m.Kind == ports.MovementPull {
		if m.Asset == domain.NativeAsset {
			return s.ledger.Transfer(ctx, m.Party, s.account, m.Asset, m.Amount)
		}
		return s.ledger.TransferFrom(ctx, m.Party, s.account, m.Asset, m.Amount)
	}
	return s.ledger.Transfer(ctx, s.account, m.Party, m.Asset, m.Amount)
}

// compensate returns already-pulled funds after a mid-batch failure.
// Releases run last and are validated against escrow upfront, so a failed
// release means the asset ledger itself diverged; that is logged and left
// to the operator.
func (s *Service) compensate(ctx context.Context, applied []ports.Movement) {
	for i := len(applied) - 1; i >= 0; i-- {
		m := applied[i]
		if m.Kind != ports.MovementPull {
			log.WithFields(log.Fields{
				"order": m.OrderID,
				"asset": m.Asset,
			}).Error("release already settled before batch failure, ledger diverged")
			continue
		}
		if err := s.ledger.Transfer(ctx, s.account, m.Party, m.Asset, m.Amount); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"order": m.OrderID,
				"party": m.Party,
				"asset": m.Asset,
			}).Error("compensating transfer failed")
		}
	}
}

func (s *Service) record(m ports.Movement, now int64) {
	if s.escrow[m.OrderID] == nil {
		s.escrow[m.OrderID] = make(map[string]uint64)
	}
	switch m.Kind {
	case ports.MovementPull:
		s.escrow[m.OrderID][m.Asset] += m.Amount
	case ports.MovementRelease:
		s.escrow[m.OrderID][m.Asset] -= m.Amount
	}

	s.receipts[m.OrderID] = append(s.receipts[m.OrderID], Receipt{
		Id:        uuid.New().String(),
		Kind:      m.Kind,
		OrderID:   m.OrderID,
		Party:     m.Party,
		Asset:     m.Asset,
		Amount:    m.Amount,
		Timestamp: now,
	})
}
