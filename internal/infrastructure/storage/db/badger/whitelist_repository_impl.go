package dbbadger

import (
	"context"
	"errors"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type whitelistEntry struct {
	Asset string
}

type whitelistRepositoryImpl struct {
	db *DbManager
}

// NewWhitelistRepositoryImpl returns a badger-backed WhitelistRepository
// implementation.
func NewWhitelistRepositoryImpl(db *DbManager) domain.WhitelistRepository {
	return whitelistRepositoryImpl{db: db}
}

func (r whitelistRepositoryImpl) AddAsset(_ context.Context, asset string) error {
	err := r.db.WhitelistStore.Insert(asset, whitelistEntry{Asset: asset})
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return nil
	}
	return err
}

func (r whitelistRepositoryImpl) IsWhitelisted(
	_ context.Context, asset string,
) (bool, error) {
	var entry whitelistEntry
	err := r.db.WhitelistStore.Get(asset, &entry)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badgerhold.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (r whitelistRepositoryImpl) ListAssets(_ context.Context) ([]string, error) {
	var entries []whitelistEntry
	if err := r.db.WhitelistStore.Find(&entries, &badgerhold.Query{}); err != nil {
		return nil, err
	}

	assets := make([]string, 0, len(entries))
	for _, e := range entries {
		assets = append(assets, e.Asset)
	}
	sort.Strings(assets)
	return assets, nil
}
