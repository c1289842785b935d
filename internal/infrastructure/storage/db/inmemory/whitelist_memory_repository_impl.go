package inmemory

import (
	"context"
	"sort"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type whitelistRepositoryImpl struct {
	store *whitelistInmemoryStore
}

// NewWhitelistRepositoryImpl returns a new inmemory WhitelistRepository
// implementation.
func NewWhitelistRepositoryImpl(db *DbManager) domain.WhitelistRepository {
	return &whitelistRepositoryImpl{db.whitelistStore}
}

func (r whitelistRepositoryImpl) AddAsset(_ context.Context, asset string) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	r.store.assets[asset] = struct{}{}
	return nil
}

func (r whitelistRepositoryImpl) IsWhitelisted(_ context.Context, asset string) (bool, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	_, ok := r.store.assets[asset]
	return ok, nil
}

func (r whitelistRepositoryImpl) ListAssets(_ context.Context) ([]string, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	assets := make([]string, 0, len(r.store.assets))
	for asset := range r.store.assets {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets, nil
}
