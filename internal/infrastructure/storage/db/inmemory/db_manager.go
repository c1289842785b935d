package inmemory

import (
	"sync"

	"github.com/otcmarsbase/contracts-v1/internal/core/domain"
)

type orderInmemoryStore struct {
	locker *sync.Mutex
	orders map[string]domain.Order
}

type whitelistInmemoryStore struct {
	locker *sync.Mutex
	assets map[string]struct{}
}

// DbManager holds all the in-memory stores in a single data structure.
type DbManager struct {
	orderStore     *orderInmemoryStore
	whitelistStore *whitelistInmemoryStore
}

// NewDbManager returns a DbManager with empty stores.
func NewDbManager() *DbManager {
	return &DbManager{
		orderStore: &orderInmemoryStore{
			locker: &sync.Mutex{},
			orders: make(map[string]domain.Order),
		},
		whitelistStore: &whitelistInmemoryStore{
			locker: &sync.Mutex{},
			assets: make(map[string]struct{}),
		},
	}
}
