package listings

import "errors"

var (
	ErrNotFound          = errors.New("listing not found")
	ErrNotOwner          = errors.New("listing belongs to another seller")
	ErrAlreadySold       = errors.New("listing already sold")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNoMatch           = errors.New("no listings match")
	ErrBadAdjustment     = errors.New("exactly one of delta or percent must be set")
	ErrBadQuantity       = errors.New("quantity must be positive")
)
