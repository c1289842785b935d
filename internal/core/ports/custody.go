package ports

import "context"

// MovementKind discriminates custody movements.
type MovementKind int

const (
	// MovementPull escrows funds from a party into custody.
	MovementPull MovementKind = iota
	// MovementRelease pays escrowed funds out to a party.
	MovementRelease
)

// Movement is one custody instruction: escrow funds of a party against an
// order, or release escrowed funds of an order to a recipient.
type Movement struct {
	Kind    MovementKind
	OrderID string
	Party   string
	Asset   string
	Amount  uint64
	// NativeValue is the value attached to a pull of the native asset. It
	// must equal Amount for native pulls and be zero otherwise; the engine
	// validates this before instructing custody.
	NativeValue uint64
}

// Custody physically holds every escrowed balance and acts only on the
// engine's instructions. Apply executes a batch of movements atomically:
// either every movement settles on the asset ledger and in the escrow
// journal, or none does.
type Custody interface {
	Apply(ctx context.Context, movements []Movement) error
	// Escrowed returns the balance held for the (order, asset) pair. It
	// must equal the sum of remaining ledger amounts for that pair.
	Escrowed(ctx context.Context, orderID, asset string) (uint64, error)
}
