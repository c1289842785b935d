package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// SplitBrokerFee splits a payout between a broker and its principal
// recipient. The broker share is floor(amount * rate / RateDenominator) and
// the two shares always sum back to amount exactly.
func SplitBrokerFee(amount, rate uint64) (brokerShare, principal uint64) {
	if rate == 0 || amount == 0 {
		return 0, amount
	}

	share := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0).
		Mul(decimal.New(int64(rate), 0)).
		Div(decimal.New(RateDenominator, 0)).
		Floor()

	brokerShare = share.BigInt().Uint64()
	principal = amount - brokerShare
	return
}
