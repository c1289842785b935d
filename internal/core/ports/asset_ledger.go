package ports

import "context"

// AssetLedger is the external fungible-asset transfer primitive. Transfers
// are all-or-nothing: an error means no balance moved.
//
// The native value unit uses the domain.NativeAsset sentinel and moves via
// attached value instead of allowance, so Allowance and TransferFrom are
// meaningless for it; custody pulls it with Transfer.
type AssetLedger interface {
	// BalanceOf returns the holder's balance of the asset.
	BalanceOf(ctx context.Context, holder, asset string) (uint64, error)
	// Allowance returns how much of the asset the holder approved the
	// spender to pull.
	Allowance(ctx context.Context, holder, spender, asset string) (uint64, error)
	// Transfer moves amount from one identity to another on behalf of the
	// sender itself.
	Transfer(ctx context.Context, from, to, asset string, amount uint64) error
	// TransferFrom moves amount using the allowance the from identity
	// granted to the to identity.
	TransferFrom(ctx context.Context, from, to, asset string, amount uint64) error
}
