package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Services and
// handlers match on these with errors.Is; the wrapped message carries the
// human-readable detail.
var (
	// ErrNotFound means the requested cart, order, product or user does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrOutOfStock means a stock check or guarded decrement failed.
	ErrOutOfStock = errors.New("not enough stock")

	// ErrAlreadyPaid means a paid-state transition was attempted twice.
	ErrAlreadyPaid = errors.New("order has already been paid")

	// ErrNotPaid means a delivery transition was attempted on an unpaid order.
	ErrNotPaid = errors.New("order has not been paid")

	// ErrDuplicate means a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate record")
)
