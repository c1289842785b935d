package assetledger

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInsufficientAllowance ...
	ErrInsufficientAllowance = errors.New("insufficient allowance")
)

// InMemoryLedger is a self-contained fungible-asset ledger implementing
// ports.AssetLedger. It backs the daemon in standalone mode and the test
// suites.
type InMemoryLedger struct {
	mtx sync.Mutex

	balances   map[string]map[string]uint64
	allowances map[string]map[string]map[string]uint64
}

// NewInMemoryLedger returns an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances:   make(map[string]map[string]uint64),
		allowances: make(map[string]map[string]map[string]uint64),
	}
}

// Mint credits the holder with the given amount out of thin air.
func (l *InMemoryLedger) Mint(holder, asset string, amount uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.credit(holder, asset, amount)
}

// Approve grants the spender an allowance over the holder's balance.
func (l *InMemoryLedger) Approve(holder, spender, asset string, amount uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if l.allowances[holder] == nil {
		l.allowances[holder] = make(map[string]map[string]uint64)
	}
	if l.allowances[holder][spender] == nil {
		l.allowances[holder][spender] = make(map[string]uint64)
	}
	l.allowances[holder][spender][asset] = amount
}

func (l *InMemoryLedger) BalanceOf(_ context.Context, holder, asset string) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.balances[holder][asset], nil
}

func (l *InMemoryLedger) Allowance(_ context.Context, holder, spender, asset string) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.allowances[holder][spender][asset], nil
}

func (l *InMemoryLedger) Transfer(_ context.Context, from, to, asset string, amount uint64) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.move(from, to, asset, amount)
}

func (l *InMemoryLedger) TransferFrom(_ context.Context, from, to, asset string, amount uint64) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	allowance := l.allowances[from][to][asset]
	if allowance < amount {
		return ErrInsufficientAllowance
	}
	if err := l.move(from, to, asset, amount); err != nil {
		return err
	}
	l.allowances[from][to][asset] = allowance - amount
	return nil
}

func (l *InMemoryLedger) move(from, to, asset string, amount uint64) error {
	if l.balances[from][asset] < amount {
		return ErrInsufficientBalance
	}
	l.balances[from][asset] -= amount
	l.credit(to, asset, amount)
	return nil
}

func (l *InMemoryLedger) credit(holder, asset string, amount uint64) {
	if l.balances[holder] == nil {
		l.balances[holder] = make(map[string]uint64)
	}
	l.balances[holder][asset] += amount
}
