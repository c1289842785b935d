package application

import "errors"

var (
	// ErrEmptyPlan is returned when a settlement call carries no
	// instructions.
	ErrEmptyPlan = errors.New("settlement plan is empty")
	// ErrNotOperator is returned when a caller other than the settlement
	// operator invokes an operator-only operation.
	ErrNotOperator = errors.New("caller is not the settlement operator")
)
