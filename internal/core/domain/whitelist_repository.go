package domain

import "context"

// WhitelistRepository tracks the assets usable as flexible collateral.
type WhitelistRepository interface {
	// AddAsset whitelists the asset. Adding twice is not an error.
	AddAsset(ctx context.Context, asset string) error
	// IsWhitelisted ...
	IsWhitelisted(ctx context.Context, asset string) (bool, error)
	// ListAssets returns every whitelisted asset.
	ListAssets(ctx context.Context) ([]string, error)
}
