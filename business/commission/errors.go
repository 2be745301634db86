package commission

import "errors"

var (
	// ErrPlanInactive: resolving against a deactivated plan is a caller bug,
	// not a zero-amount outcome.
	ErrPlanInactive = errors.New("commission plan is inactive")

	// ErrInvalidSale: non-positive amount or no line items.
	ErrInvalidSale = errors.New("sale has no positive amount or line items")

	// ErrInvalidPlan: the plan carries no usable rate for its plan type.
	ErrInvalidPlan = errors.New("commission plan has no usable base rate")
)
