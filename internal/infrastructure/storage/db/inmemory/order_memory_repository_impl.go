package inmemory

import (
	"context"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type orderRepositoryImpl struct {
	store *orderInmemoryStore
}

// NewOrderRepositoryImpl returns a new inmemory OrderRepository
// implementation.
func NewOrderRepositoryImpl(db *DbManager) domain.OrderRepository {
	return &orderRepositoryImpl{db.orderStore}
}

func (r orderRepositoryImpl) AddOrder(_ context.Context, order *domain.Order) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if existing, ok := r.store.orders[order.Id]; ok && !existing.IsCancelled {
		return domain.ErrOrderAlreadyExists
	}
	r.store.orders[order.Id] = *order.Clone()
	return nil
}

func (r orderRepositoryImpl) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	return r.getOrder(id)
}

func (r orderRepositoryImpl) UpdateOrder(
	_ context.Context, id string,
	updateFn func(o *domain.Order) (*domain.Order, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	current, err := r.getOrder(id)
	if err != nil {
		return err
	}

	updated, err := updateFn(current)
	if err != nil {
		return err
	}

	r.store.orders[id] = *updated.Clone()
	return nil
}

func (r orderRepositoryImpl) GetAllOrders(_ context.Context) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	orders := make([]*domain.Order, 0, len(r.store.orders))
	for id := range r.store.orders {
		order := r.store.orders[id]
		orders = append(orders, order.Clone())
	}
	return orders, nil
}

func (r orderRepositoryImpl) GetOrdersByOwner(
	_ context.Context, owner string,
) ([]*domain.Order, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	orders := make([]*domain.Order, 0)
	for id := range r.store.orders {
		order := r.store.orders[id]
		if order.Owner == owner {
			orders = append(orders, order.Clone())
		}
	}
	return orders, nil
}

func (r orderRepositoryImpl) getOrder(id string) (*domain.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order.Clone(), nil
}
