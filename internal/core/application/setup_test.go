package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otcmarsbase/contracts-v1/internal/core/application"
	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/assetledger"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/storage/db/inmemory"
	"github.com/otcmarsbase/contracts-v1/internal/infrastructure/vault"
)

const (
	operator     = "operator"
	vaultAccount = "vault"

	owner    = "alice"
	investor = "bob"
	broker   = "dave"

	wbtc = "wbtc"
	usdt = "usdt"
)

var ctx = context.Background()

// testClock is a settable clock shared by the key deriver and the engine.
type testClock struct {
	mtx sync.Mutex
	t   time.Time
}

func (c *testClock) Now() time.Time {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	orderSvc    application.OrderService
	operatorSvc application.OperatorService
	manualSvc   application.ManualService
	ledger      *assetledger.InMemoryLedger
	vault       *vault.Service
	clock       *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &testClock{t: time.Unix(1700000000, 0)}
	db := inmemory.NewDbManager()
	ledger := assetledger.NewInMemoryLedger()
	custody := vault.NewService(ledger, vaultAccount)
	keys := domain.NewKeyDeriver(clock.Now, time.Hour)

	engine := application.NewEngine(
		inmemory.NewOrderRepositoryImpl(db),
		inmemory.NewWhitelistRepositoryImpl(db),
		ledger, custody, keys, operator, vaultAccount, clock.Now,
	)

	h := &harness{
		orderSvc:    application.NewOrderService(engine),
		operatorSvc: application.NewOperatorService(engine),
		manualSvc:   application.NewManualService(engine),
		ledger:      ledger,
		vault:       custody,
		clock:       clock,
	}
	require.NoError(t, h.operatorSvc.AddToWhitelist(ctx, operator, wbtc))
	require.NoError(t, h.operatorSvc.AddToWhitelist(ctx, operator, usdt))
	return h
}

// createBuyOrder opens the canonical fixture: a buy order for 20 usdt.
func (h *harness) createBuyOrder(t *testing.T, opts ...func(*application.CreateOrderParams)) string {
	t.Helper()

	params := application.CreateOrderParams{
		Owner:     owner,
		SideAsset: usdt,
		Quantity:  20,
		Expiry:    h.clock.Now().Add(24 * time.Hour).Unix(),
		OrderType: domain.OrderTypeBuy,
	}
	for _, opt := range opts {
		opt(&params)
	}

	info, err := h.orderSvc.CreateOrder(ctx, params)
	require.NoError(t, err)
	return info.Id
}

// fund mints tokens for the holder and approves the vault to pull them.
func (h *harness) fund(holder, asset string, amount uint64) {
	h.ledger.Mint(holder, asset, amount)
	if asset != domain.NativeAsset {
		h.ledger.Approve(holder, vaultAccount, asset, amount)
	}
}

// deposit funds the depositor and places the bid in one step.
func (h *harness) deposit(t *testing.T, id, depositor, asset string, amount uint64) {
	t.Helper()

	h.fund(depositor, asset, amount)
	var nativeValue uint64
	if asset == domain.NativeAsset {
		nativeValue = amount
	}
	require.NoError(t, h.orderSvc.Deposit(ctx, id, depositor, asset, amount, nativeValue))
}

func (h *harness) balance(t *testing.T, holder, asset string) uint64 {
	t.Helper()

	balance, err := h.ledger.BalanceOf(ctx, holder, asset)
	require.NoError(t, err)
	return balance
}
