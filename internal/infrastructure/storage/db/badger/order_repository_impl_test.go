package dbbadger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	dbbadger "github.com/otcmarsbase/contracts-v1/internal/infrastructure/storage/db/badger"
)

var ctx = context.Background()

func newTestDb(t *testing.T) *dbbadger.DbManager {
	t.Helper()

	db, err := dbbadger.NewDbManager(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestOrder(t *testing.T, id, owner string) *domain.Order {
	t.Helper()

	now := time.Now()
	order, err := domain.NewOrder(
		id, owner, "usdt", 20, now.Add(time.Hour).Unix(),
		"", 0, "", 0, 0, domain.OrderTypeBuy, false, now,
	)
	require.NoError(t, err)
	return order
}

func TestOrderRepository(t *testing.T) {
	repo := dbbadger.NewOrderRepositoryImpl(newTestDb(t))

	_, err := repo.GetOrder(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	order := newTestOrder(t, "order-1", "alice")
	order.AppendBid("bob", "usdt", 20)
	require.NoError(t, repo.AddOrder(ctx, order))

	// Ledgers and investors survive the roundtrip.
	found, err := repo.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	require.Equal(t, order.Owner, found.Owner)
	require.Len(t, found.InvestorBids, 1)
	require.Equal(t, uint64(20), found.InvestorBids[0].Remaining)
	require.Equal(t, []string{"bob"}, found.Investors)

	err = repo.AddOrder(ctx, newTestOrder(t, "order-1", "alice"))
	require.ErrorIs(t, err, domain.ErrOrderAlreadyExists)

	err = repo.UpdateOrder(ctx, "order-1", func(o *domain.Order) (*domain.Order, error) {
		o.InvestorBids[0].Remaining = 0
		o.IsSwapped = true
		return o, nil
	})
	require.NoError(t, err)

	found, err = repo.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	require.True(t, found.IsSwapped)
	require.Zero(t, found.InvestorBids[0].Remaining)
}

func TestOrderRepositoryReplacesCancelled(t *testing.T) {
	repo := dbbadger.NewOrderRepositoryImpl(newTestDb(t))

	order := newTestOrder(t, "order-1", "alice")
	require.NoError(t, repo.AddOrder(ctx, order))
	require.NoError(t, repo.UpdateOrder(ctx, "order-1", func(o *domain.Order) (*domain.Order, error) {
		o.IsCancelled = true
		return o, nil
	}))

	// A cancelled record frees its key for reuse.
	require.NoError(t, repo.AddOrder(ctx, newTestOrder(t, "order-1", "alice")))

	found, err := repo.GetOrder(ctx, "order-1")
	require.NoError(t, err)
	require.False(t, found.IsCancelled)
}

func TestGetOrdersByOwner(t *testing.T) {
	repo := dbbadger.NewOrderRepositoryImpl(newTestDb(t))

	require.NoError(t, repo.AddOrder(ctx, newTestOrder(t, "order-1", "alice")))
	require.NoError(t, repo.AddOrder(ctx, newTestOrder(t, "order-2", "alice")))
	require.NoError(t, repo.AddOrder(ctx, newTestOrder(t, "order-3", "carol")))

	orders, err := repo.GetOrdersByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	all, err := repo.GetAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestWhitelistRepository(t *testing.T) {
	repo := dbbadger.NewWhitelistRepositoryImpl(newTestDb(t))

	ok, err := repo.IsWhitelisted(ctx, "usdt")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.AddAsset(ctx, "usdt"))
	require.NoError(t, repo.AddAsset(ctx, "usdt"))
	require.NoError(t, repo.AddAsset(ctx, "wbtc"))

	ok, err = repo.IsWhitelisted(ctx, "usdt")
	require.NoError(t, err)
	require.True(t, ok)

	assets, err := repo.ListAssets(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"usdt", "wbtc"}, assets)
}
