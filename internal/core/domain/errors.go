package domain

import "errors"

var (
	// ErrOrderNotFound ...
	ErrOrderNotFound = errors.New("order does not exist")
	// ErrOrderAlreadyExists is thrown when creating an order at a key that
	// already holds a live order.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderCancelled ...
	ErrOrderCancelled = errors.New("order is cancelled")
	// ErrOrderSwapped ...
	ErrOrderSwapped = errors.New("order is already swapped")
	// ErrOrderExpired ...
	ErrOrderExpired = errors.New("order is expired")
	// ErrExpiryNotInFuture is thrown at creation time if the expiration
	// timestamp has already passed.
	ErrExpiryNotInFuture = errors.New("expiration date must be in the future")
	// ErrZeroQuantity ...
	ErrZeroQuantity = errors.New("order quantity must be positive")
	// ErrZeroAmount ...
	ErrZeroAmount = errors.New("amount must be positive")
	// ErrRateTooHigh is thrown when a broker rate or the discount exceeds
	// the fixed denominator.
	ErrRateTooHigh = errors.New("rate exceeds denominator")

	// ErrNotOrderOwner ...
	ErrNotOrderOwner = errors.New("caller is not the order owner")
	// ErrNotAuthorized is thrown when the caller is neither the order owner
	// nor the settlement operator.
	ErrNotAuthorized = errors.New("caller is not allowed to perform this operation")
	// ErrNotYourBid is thrown by bid mutation when neither ledger records
	// the caller as the depositor at the given index.
	ErrNotYourBid = errors.New("bid does not belong to caller")
	// ErrBidNotFound ...
	ErrBidNotFound = errors.New("bid does not exist")

	// ErrAssetNotAllowed is thrown when the deposited asset matches neither
	// the order side asset nor the whitelist, per the side rules.
	ErrAssetNotAllowed = errors.New("asset cannot be deposited on this side of the order")
	// ErrPayableMismatch is thrown when the attached native value differs
	// from the declared amount of a native deposit.
	ErrPayableMismatch = errors.New("attached value must equal amount")
	// ErrPayableNotAllowed is thrown when native value is attached to a
	// non-native deposit.
	ErrPayableNotAllowed = errors.New("attached value not allowed here")
	// ErrInsufficientAllowance ...
	ErrInsufficientAllowance = errors.New("allowance must not be less than amount")

	// ErrNoInvestorBids is thrown by settlement on an order with an empty
	// investor ledger.
	ErrNoInvestorBids = errors.New("order has no investor bids")
	// ErrInsufficientRemaining is thrown when a settlement instruction
	// over-consumes the ledger entry it draws from.
	ErrInsufficientRemaining = errors.New("instruction exceeds remaining bid amount")
	// ErrUnconsumedRemainder is thrown by full settlement when the plan
	// leaves a nonzero remainder on any ledger entry.
	ErrUnconsumedRemainder = errors.New("plan leaves unconsumed remainder")
	// ErrInvalidRecipient is thrown when a plan instruction pays an identity
	// outside the order participant set.
	ErrInvalidRecipient = errors.New("recipient is not a participant of the order")
	// ErrNotManualOrder is thrown by owner-driven settlement on orders not
	// flagged manual.
	ErrNotManualOrder = errors.New("order is not flagged for manual settlement")

	// ErrAssetNotWhitelisted ...
	ErrAssetNotWhitelisted = errors.New("asset is not whitelisted")
)
