package dbbadger

import (
	"context"
	"errors"

	"github.com/timshannon/badgerhold/v4"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type orderRepositoryImpl struct {
	db *DbManager
}

// NewOrderRepositoryImpl returns a badger-backed OrderRepository
// implementation.
func NewOrderRepositoryImpl(db *DbManager) domain.OrderRepository {
	return orderRepositoryImpl{db: db}
}

func (r orderRepositoryImpl) AddOrder(
	_ context.Context, order *domain.Order,
) error {
	var existing domain.Order
	err := r.db.OrderStore.Get(order.Id, &existing)
	switch {
	case err == nil:
		if !existing.IsCancelled {
			return domain.ErrOrderAlreadyExists
		}
		return r.db.OrderStore.Update(order.Id, *order)
	case errors.Is(err, badgerhold.ErrNotFound):
		return r.db.OrderStore.Insert(order.Id, *order)
	default:
		return err
	}
}

func (r orderRepositoryImpl) GetOrder(
	_ context.Context, id string,
) (*domain.Order, error) {
	return r.getOrder(id)
}

func (r orderRepositoryImpl) UpdateOrder(
	_ context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	current, err := r.getOrder(id)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	return r.db.OrderStore.Update(id, *updated)
}

func (r orderRepositoryImpl) GetAllOrders(
	_ context.Context,
) ([]*domain.Order, error) {
	return r.findOrders(&badgerhold.Query{})
}

func (r orderRepositoryImpl) GetOrdersByOwner(
	_ context.Context, owner string,
) ([]*domain.Order, error) {
	return r.findOrders(badgerhold.Where("Owner").Eq(owner))
}

func (r orderRepositoryImpl) getOrder(id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.OrderStore.Get(id, &order); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r orderRepositoryImpl) findOrders(
	query *badgerhold.Query,
) ([]*domain.Order, error) {
	var found []domain.Order
	if err := r.db.OrderStore.Find(&found, query); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(found))
	for i := range found {
		orders = append(orders, &found[i])
	}
	return orders, nil
}
