package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the store, ledger, and order lifecycle.
// They are returned (never panicked) and matched with errors.Is/As.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("resource belongs to another seller")
	ErrDuplicateEmail = errors.New("email already registered")
)

// ValidationError reports malformed input, such as a non-positive
// line item quantity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientStockError names the first product whose available stock
// cannot cover the requested quantity.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s only has %d units available, %d requested",
		e.Name, e.Available, e.Requested)
}

// Shortfall is how many units the request exceeds the available stock by.
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}
