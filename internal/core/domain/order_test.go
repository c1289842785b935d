package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

const (
	owner    = "alice"
	investor = "bob"

	wbtc = "wbtc"
	usdt = "usdt"
)

var now = time.Unix(1700000000, 0)

func newBuyOrder(t *testing.T) *domain.Order {
	t.Helper()

	o, err := domain.NewOrder(
		"order-1", owner, usdt, 20, now.Add(time.Hour).Unix(),
		"", 0, "", 0, 0, domain.OrderTypeBuy, false, now,
	)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	require.Equal(t, owner, o.Owner)
	require.Equal(t, usdt, o.SideAsset)
	require.True(t, o.IsLive())
	require.False(t, o.IsExpired(now))
	require.Empty(t, o.OwnerBids)
	require.Empty(t, o.InvestorBids)
	require.Empty(t, o.Investors)
}

func TestFailingNewOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		quantity      uint64
		expiry        int64
		ownerRate     uint64
		discount      uint64
		expectedError error
	}{
		{
			name:          "zero_quantity",
			quantity:      0,
			expiry:        now.Add(time.Hour).Unix(),
			expectedError: domain.ErrZeroQuantity,
		},
		{
			name:          "expiry_in_past",
			quantity:      10,
			expiry:        now.Add(-time.Hour).Unix(),
			expectedError: domain.ErrExpiryNotInFuture,
		},
		{
			name:          "expiry_at_now",
			quantity:      10,
			expiry:        now.Unix(),
			expectedError: domain.ErrExpiryNotInFuture,
		},
		{
			name:          "broker_rate_above_denominator",
			quantity:      10,
			expiry:        now.Add(time.Hour).Unix(),
			ownerRate:     domain.RateDenominator + 1,
			expectedError: domain.ErrRateTooHigh,
		},
		{
			name:          "discount_above_denominator",
			quantity:      10,
			expiry:        now.Add(time.Hour).Unix(),
			discount:      domain.RateDenominator + 1,
			expectedError: domain.ErrRateTooHigh,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := domain.NewOrder(
				"id", owner, usdt, tt.quantity, tt.expiry,
				"broker", tt.ownerRate, "", 0, tt.discount,
				domain.OrderTypeBuy, false, now,
			)
			require.Nil(t, o)
			require.ErrorIs(t, err, tt.expectedError)
		})
	}
}

func TestValidateDepositAsset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		orderType     int
		depositor     string
		asset         string
		whitelisted   bool
		expectedError error
	}{
		{
			name:      "buy_investor_must_deposit_side_asset",
			orderType: domain.OrderTypeBuy,
			depositor: investor,
			asset:     usdt,
		},
		{
			name:          "buy_investor_wrong_asset",
			orderType:     domain.OrderTypeBuy,
			depositor:     investor,
			asset:         wbtc,
			whitelisted:   true,
			expectedError: domain.ErrAssetNotAllowed,
		},
		{
			name:        "buy_owner_any_whitelisted_asset",
			orderType:   domain.OrderTypeBuy,
			depositor:   owner,
			asset:       wbtc,
			whitelisted: true,
		},
		{
			name:          "buy_owner_unwhitelisted_asset",
			orderType:     domain.OrderTypeBuy,
			depositor:     owner,
			asset:         wbtc,
			expectedError: domain.ErrAssetNotWhitelisted,
		},
		{
			name:      "sell_owner_must_deposit_side_asset",
			orderType: domain.OrderTypeSell,
			depositor: owner,
			asset:     usdt,
		},
		{
			name:          "sell_owner_wrong_asset",
			orderType:     domain.OrderTypeSell,
			depositor:     owner,
			asset:         wbtc,
			whitelisted:   true,
			expectedError: domain.ErrAssetNotAllowed,
		},
		{
			name:        "sell_investor_any_whitelisted_asset",
			orderType:   domain.OrderTypeSell,
			depositor:   investor,
			asset:       wbtc,
			whitelisted: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := domain.NewOrder(
				"id", owner, usdt, 20, now.Add(time.Hour).Unix(),
				"", 0, "", 0, 0, tt.orderType, false, now,
			)
			require.NoError(t, err)

			err = o.ValidateDepositAsset(tt.depositor, tt.asset, tt.whitelisted)
			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestAppendBid(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)

	ref := o.AppendBid(owner, wbtc, 10)
	require.Equal(t, domain.OwnerLedger, ref.Side)
	require.Equal(t, 0, ref.Index)
	require.Empty(t, o.Investors)

	ref = o.AppendBid(investor, usdt, 20)
	require.Equal(t, domain.InvestorLedger, ref.Side)
	require.Equal(t, 0, ref.Index)
	require.Equal(t, []string{investor}, o.Investors)

	// Repeated deposits append entries but never duplicate the investor.
	ref = o.AppendBid(investor, usdt, 5)
	require.Equal(t, 1, ref.Index)
	require.Equal(t, []string{investor}, o.Investors)
	require.Len(t, o.InvestorBids, 2)
}

func TestResolveBid(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	o.AppendBid(owner, wbtc, 10)
	o.AppendBid(investor, usdt, 20)

	ref, err := o.ResolveBid(owner, 0)
	require.NoError(t, err)
	require.Equal(t, domain.OwnerLedger, ref.Side)

	ref, err = o.ResolveBid(investor, 0)
	require.NoError(t, err)
	require.Equal(t, domain.InvestorLedger, ref.Side)

	_, err = o.ResolveBid("mallory", 0)
	require.ErrorIs(t, err, domain.ErrNotYourBid)

	_, err = o.ResolveBid(owner, 3)
	require.ErrorIs(t, err, domain.ErrBidNotFound)

	_, err = o.ResolveBid(owner, -1)
	require.ErrorIs(t, err, domain.ErrBidNotFound)
}

func TestConsumeFromOwnerPool(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	o.AppendBid(owner, wbtc, 4)
	o.AppendBid(owner, usdt, 7)
	o.AppendBid(owner, wbtc, 6)

	// Oldest entries drain first.
	require.NoError(t, o.ConsumeFromOwnerPool(wbtc, 5))
	require.Zero(t, o.OwnerBids[0].Remaining)
	require.Equal(t, uint64(7), o.OwnerBids[1].Remaining)
	require.Equal(t, uint64(5), o.OwnerBids[2].Remaining)

	// An oversized draw mutates nothing.
	err := o.ConsumeFromOwnerPool(wbtc, 6)
	require.ErrorIs(t, err, domain.ErrInsufficientRemaining)
	require.Equal(t, uint64(5), o.OwnerBids[2].Remaining)

	require.NoError(t, o.ConsumeFromOwnerPool(wbtc, 5))
	require.Zero(t, o.Raised(wbtc))
	require.Equal(t, uint64(7), o.Raised(usdt))
}

func TestDrainedAndSwapped(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	require.True(t, o.IsDrained())

	o.AppendBid(owner, wbtc, 10)
	o.AppendBid(investor, usdt, 20)
	require.False(t, o.IsDrained())
	require.False(t, o.MarkSwappedIfDrained())

	o.OwnerBids[0].Remaining = 0
	o.InvestorBids[0].Remaining = 0
	require.True(t, o.MarkSwappedIfDrained())
	require.True(t, o.IsSwapped)
	require.ErrorIs(t, o.StatusError(), domain.ErrOrderSwapped)
}

func TestReadAccessors(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	o.AppendBid(owner, wbtc, 10)
	o.AppendBid(investor, usdt, 20)
	o.AppendBid("carol", usdt, 5)

	require.Equal(t, uint64(25), o.Raised(usdt))
	require.Equal(t, uint64(20), o.InvestmentsOf(investor, usdt))
	require.Zero(t, o.InvestmentsOf(investor, wbtc))
	require.ElementsMatch(t, []string{wbtc, usdt}, o.Assets())
	require.Equal(t, []string{investor, "carol"}, o.Investors)
	require.Equal(t, 2, o.ActiveBids(domain.InvestorLedger))

	o.InvestorBids[1].Remaining = 0
	require.Equal(t, 1, o.ActiveBids(domain.InvestorLedger))
}

func TestClone(t *testing.T) {
	t.Parallel()

	o := newBuyOrder(t)
	o.AppendBid(investor, usdt, 20)

	cp := o.Clone()
	cp.InvestorBids[0].Remaining = 0
	cp.Investors = append(cp.Investors, "carol")

	require.Equal(t, uint64(20), o.InvestorBids[0].Remaining)
	require.Equal(t, []string{investor}, o.Investors)
}
