package services

import "errors"

// Workflow precondition failures. Repository-level failures (NotFound,
// OutOfStock, AlreadyPaid, NotPaid, Duplicate) live in the repositories
// package; together they form the full error taxonomy handlers map to
// responses.
var (
	// ErrEmptyCart means an order was requested from an empty or missing cart.
	ErrEmptyCart = errors.New("your cart is empty")

	// ErrMissingAddress means the user has no shipping address on file.
	ErrMissingAddress = errors.New("no shipping address")

	// ErrMissingPaymentMethod means the user has no payment method on file.
	ErrMissingPaymentMethod = errors.New("no payment method")

	// ErrPaymentVerificationFailed means the gateway capture did not match
	// the recorded gateway order id or did not complete.
	ErrPaymentVerificationFailed = errors.New("payment verification failed")

	// ErrNoCartSession means the request carried neither a user identity nor
	// a session cart token.
	ErrNoCartSession = errors.New("cart session not found")

	// ErrNotAuthenticated means an operation requiring a signed-in user was
	// called without one.
	ErrNotAuthenticated = errors.New("user is not authenticated")

	// ErrInvalidPaymentMethod means the chosen payment method is not one the
	// store supports.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
