package repositories

import (
	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access.
//
// Mutate is the only write path for an existing cart: it loads the row,
// applies fn, and persists the result inside one transaction scoped to that
// cart's row, so concurrent mutations of the same cart cannot lose updates.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	GetBySessionCartID(sessionCartID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Mutate(cartID string, fn func(cart *models.Cart) error) error
}
