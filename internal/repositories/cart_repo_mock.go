package repositories

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// MockCartRepository is an in-memory implementation of CartRepository. Mutate
// runs its callback under the repository lock, mirroring the row-scoped
// transaction of the GORM implementation.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByUserID returns the cart belonging to a signed-in user.
func (r *MockCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.carts {
		if c.UserID != nil && *c.UserID == userID {
			cart := c
			return &cart, nil
		}
	}
	return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
}

// GetBySessionCartID returns the cart belonging to an anonymous session.
func (r *MockCartRepository) GetBySessionCartID(sessionCartID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.carts {
		if c.SessionCartID == sessionCartID {
			cart := c
			return &cart, nil
		}
	}
	return nil, fmt.Errorf("cart for session %s: %w", sessionCartID, ErrNotFound)
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	r.carts[cart.ID] = *cart
	return nil
}

// Mutate applies fn to the cart under the repository lock and stores the
// result. The callback sees a copy, so a failing fn leaves the cart unchanged.
func (r *MockCartRepository) Mutate(cartID string, fn func(cart *models.Cart) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
	}
	if err := fn(&cart); err != nil {
		return err
	}
	r.carts[cartID] = cart
	return nil
}
