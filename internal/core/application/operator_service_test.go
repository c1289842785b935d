package application_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otcmarsbase/contracts-v1/internal/core/application"
	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

func TestMakeSwap(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	id := h.createBuyOrder(t)
	h.deposit(t, id, owner, wbtc, 10)
	h.deposit(t, id, investor, usdt, 20)

	plan := []application.SwapInstruction{
		{Recipient: investor, Asset: wbtc, Amount: 10},
	}
	require.NoError(t, h.operatorSvc.MakeSwap(ctx, operator, id, plan))

	// The owner pool went to the investor, the investor ledger flushed to
	// the owner, and the vault holds nothing.
	require.Equal(t, uint64(10), h.balance(t, investor, wbtc))
	require.Equal(t, uint64(20), h.balance(t, owner, usdt))
	require.Zero(t, h.balance(t, vaultAccount, wbtc))
	require.Zero(t, h.balance(t, vaultAccount, usdt))

	info, err := h.orderSvc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.True(t, info.IsSwapped)
	require.Zero(t, info.OwnerBids[0].Remaining)
	require.Zero(t, info.InvestorBids[0].Remaining)

	// A settled order accepts no further settlement.
	err = h.operatorSvc.MakeSwap(ctx, operator, id, plan)
	require.ErrorIs(t, err, domain.ErrOrderSwapped)
}

func TestMakeSwapWithBrokers(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	id := h.createBuyOrder(t, func(p *application.CreateOrderParams) {
		p.OwnerBroker = broker
		p.OwnerBrokerRate = 50
		p.InvestorBroker = broker
		p.InvestorBrokerRate = 25
	})
	h.deposit(t, id, owner, wbtc, 1000)
	h.deposit(t, id, investor, usdt, 20)

	plan := []application.SwapInstruction{
		{Recipient: investor, Asset: wbtc, Amount: 1000},
	}
	require.NoError(t, h.operatorSvc.MakeSwap(ctx, operator, id, plan))

	// Owner-ledger value to the investor is skimmed at the investor-broker
	// rate, investor-ledger value to the owner at the owner-broker rate.
	require.Equal(t, uint64(975), h.balance(t, investor, wbtc))
	require.Equal(t, uint64(25), h.balance(t, broker, wbtc))
	require.Equal(t, uint64(19), h.balance(t, owner, usdt))
	require.Equal(t, uint64(1), h.balance(t, broker, usdt))
	require.Zero(t, h.balance(t, vaultAccount, wbtc))
	require.Zero(t, h.balance(t, vaultAccount, usdt))
}

func TestFailingMakeSwap(t *testing.T) {
	t.Parallel()

	plan := []application.SwapInstruction{
		{Recipient: investor, Asset: wbtc, Amount: 10},
	}

	tests := []struct {
		name          string
		setup         func(h *harness, id string)
		caller        string
		plan          []application.SwapInstruction
		expectedError error
	}{
		{
			name:          "caller_not_operator",
			caller:        owner,
			plan:          plan,
			expectedError: application.ErrNotOperator,
		},
		{
			name:          "empty_plan",
			caller:        operator,
			expectedError: application.ErrEmptyPlan,
		},
		{
			name:   "no_investor_bids",
			caller: operator,
			setup: func(h *harness, id string) {
				h.fund(owner, wbtc, 10)
				require.NoError(t, h.orderSvc.Deposit(ctx, id, owner, wbtc, 10, 0))
			},
			plan:          plan,
			expectedError: domain.ErrNoInvestorBids,
		},
		{
			name:   "zero_amount_instruction",
			caller: operator,
			setup: func(h *harness, id string) {
				h.deposit(t, id, investor, usdt, 20)
			},
			plan: []application.SwapInstruction{
				{Recipient: investor, Asset: wbtc},
			},
			expectedError: domain.ErrZeroAmount,
		},
		{
			name:   "recipient_not_participant",
			caller: operator,
			setup: func(h *harness, id string) {
				h.deposit(t, id, owner, wbtc, 10)
				h.deposit(t, id, investor, usdt, 20)
			},
			plan: []application.SwapInstruction{
				{Recipient: "mallory", Asset: wbtc, Amount: 10},
			},
			expectedError: domain.ErrInvalidRecipient,
		},
		{
			name:   "owner_pool_exhausted",
			caller: operator,
			setup: func(h *harness, id string) {
				h.deposit(t, id, owner, wbtc, 5)
				h.deposit(t, id, investor, usdt, 20)
			},
			plan:          plan,
			expectedError: domain.ErrInsufficientRemaining,
		},
		{
			name:   "unconsumed_owner_remainder",
			caller: operator,
			setup: func(h *harness, id string) {
				h.deposit(t, id, owner, wbtc, 10)
				h.deposit(t, id, investor, usdt, 20)
			},
			plan: []application.SwapInstruction{
				{Recipient: investor, Asset: wbtc, Amount: 6},
			},
			expectedError: domain.ErrUnconsumedRemainder,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			id := h.createBuyOrder(t)
			if tt.setup != nil {
				tt.setup(h, id)
			}

			vaultBefore := h.balance(t, vaultAccount, wbtc)
			err := h.operatorSvc.MakeSwap(ctx, tt.caller, id, tt.plan)
			require.ErrorIs(t, err, tt.expectedError)

			// The failed settlement moved nothing.
			require.Equal(t, vaultBefore, h.balance(t, vaultAccount, wbtc))
			info, err := h.orderSvc.GetOrder(ctx, id)
			require.NoError(t, err)
			require.False(t, info.IsSwapped)
		})
	}
}

func TestMakePartialSwap(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	id := h.createBuyOrder(t)
	h.deposit(t, id, owner, wbtc, 10)
	h.deposit(t, id, investor, usdt, 20)

	// First slice: remainders stay escrowed, order stays live.
	plan := []application.SwapInstruction{
		{Recipient: investor, Asset: wbtc, Amount: 4},
		{Recipient: owner, Asset: usdt, Amount: 8, SourceDepositor: investor},
	}
	require.NoError(t, h.operatorSvc.MakePartialSwap(ctx, operator, id, plan))

	require.Equal(t, uint64(4), h.balance(t, investor, wbtc))
	require.Equal(t, uint64(8), h.balance(t, owner, usdt))
	require.Equal(t, uint64(6), h.balance(t, vaultAccount, wbtc))
	require.Equal(t, uint64(12), h.balance(t, vaultAccount, usdt))

	info, err := h.orderSvc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.False(t, info.IsSwapped)

	// Second slice drains both ledgers and closes the order.
	plan = []application.SwapInstruction{
		{Recipient: investor, Asset: wbtc, Amount: 6},
		{Recipient: owner, Asset: usdt, Amount: 12, SourceDepositor: investor},
	}
	require.NoError(t, h.operatorSvc.MakePartialSwap(ctx, operator, id, plan))

	require.Equal(t, uint64(10), h.balance(t, investor, wbtc))
	require.Equal(t, uint64(20), h.balance(t, owner, usdt))
	require.Zero(t, h.balance(t, vaultAccount, wbtc))
	require.Zero(t, h.balance(t, vaultAccount, usdt))

	info, err = h.orderSvc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.True(t, info.IsSwapped)
}

func TestMakePartialSwapNamedSource(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	id := h.createBuyOrder(t)
	h.deposit(t, id, owner, wbtc, 10)
	h.deposit(t, id, investor, usdt, 12)
	h.deposit(t, id, "carol", usdt, 8)

	// Drawing from a named depositor leaves the other entries untouched.
	plan := []application.SwapInstruction{
		{Recipient: owner, Asset: usdt, Amount: 8, SourceDepositor: "carol"},
	}
	require.NoError(t, h.operatorSvc.MakePartialSwap(ctx, operator, id, plan))

	info, err := h.orderSvc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.Equal(t, uint64(12), info.InvestorBids[0].Remaining)
	require.Zero(t, info.InvestorBids[1].Remaining)

	// The named source has nothing left to draw from.
	err = h.operatorSvc.MakePartialSwap(ctx, operator, id, plan)
	require.ErrorIs(t, err, domain.ErrBidNotFound)
}

func TestWhitelistAdministration(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	err := h.operatorSvc.AddToWhitelist(ctx, owner, "doge")
	require.ErrorIs(t, err, application.ErrNotOperator)

	require.NoError(t, h.operatorSvc.AddToWhitelist(ctx, operator, "doge"))
	// Re-adding is idempotent.
	require.NoError(t, h.operatorSvc.AddToWhitelist(ctx, operator, "doge"))

	ok, err := h.operatorSvc.IsWhitelisted(ctx, "doge")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.operatorSvc.IsWhitelisted(ctx, "shib")
	require.NoError(t, err)
	require.False(t, ok)

	assets, err := h.operatorSvc.ListWhitelist(ctx)
	require.NoError(t, err)
	require.Contains(t, assets, "doge")
}
