package domain

const (
	// OrderTypeBuy marks an order whose owner is acquiring the side asset.
	OrderTypeBuy = iota
	// OrderTypeSell marks an order whose owner is disposing of the side asset.
	OrderTypeSell
)

const (
	// NativeAsset is the reserved identifier of the natively-held value unit.
	// Deposits of it carry an attached value instead of consuming allowance.
	NativeAsset = "native"

	// RateDenominator is the fixed denominator for broker rates and the
	// order discount. A rate of 25 means 2.5%.
	RateDenominator = 1000
)
