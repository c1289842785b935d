package domain

import "context"

// OrderRepository persists Order records. Implementations must apply
// UpdateOrder atomically: the update function receives the stored order,
// and either its result replaces the record or, on error, nothing changes.
type OrderRepository interface {
	// AddOrder stores a new order. It fails with ErrOrderAlreadyExists if a
	// live (non-cancelled) order occupies the same id.
	AddOrder(ctx context.Context, order *Order) error
	// GetOrder returns the order or ErrOrderNotFound.
	GetOrder(ctx context.Context, id string) (*Order, error)
	// UpdateOrder loads the order, applies updateFn and stores the result.
	UpdateOrder(
		ctx context.Context, id string,
		updateFn func(o *Order) (*Order, error),
	) error
	// GetAllOrders returns every stored order, terminal ones included.
	GetAllOrders(ctx context.Context) ([]*Order, error)
	// GetOrdersByOwner returns the orders created by the given identity.
	GetOrdersByOwner(ctx context.Context, owner string) ([]*Order, error)
}
