package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository. Each cart is
// a single row; its items live in a JSON column so a mutation is one row
// write and the four price fields can never drift from the item list.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the cart belonging to a signed-in user.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetBySessionCartID retrieves the cart belonging to an anonymous session.
func (r *GORMCartRepository) GetBySessionCartID(sessionCartID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "session_cart_id = ?", sessionCartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for session %s: %w", sessionCartID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for session %s: %w", sessionCartID, err)
	}
	return &cart, nil
}

// Create inserts a new cart row.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// Mutate reloads the cart under a row lock, applies fn, and saves the result,
// all in one transaction. A concurrent Mutate on the same cart waits for the
// lock instead of overwriting this one's changes.
func (r *GORMCartRepository) Mutate(cartID string, fn func(cart *models.Cart) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		// SQLite has no FOR UPDATE; its database-level write lock covers the
		// same hazard in tests.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var cart models.Cart
		if err := q.First(&cart, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
			}
			return fmt.Errorf("failed to load cart %s: %w", cartID, err)
		}

		if err := fn(&cart); err != nil {
			return err
		}

		if err := tx.Save(&cart).Error; err != nil {
			return fmt.Errorf("failed to save cart %s: %w", cartID, err)
		}
		return nil
	})
}
