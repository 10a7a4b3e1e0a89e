package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"storefront/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Search returns products matching the query and category, paged.
func (r *MockProductRepository) Search(search ProductSearch) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if search.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search.Query)) {
			continue
		}
		if search.Category != "" && p.Category != search.Category {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	page := search.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * search.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + search.PageSize
	if search.PageSize <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetLatest returns the most recently created products.
func (r *MockProductRepository) GetLatest(limit int) ([]models.Product, error) {
	products, _, err := r.Search(ProductSearch{Page: 1, PageSize: limit})
	return products, err
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetBySlug returns a product by its slug.
func (r *MockProductRepository) GetBySlug(slug string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Slug == slug {
			product := p
			return &product, nil
		}
	}
	return nil, fmt.Errorf("product with slug %s: %w", slug, ErrNotFound)
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	for _, p := range r.products {
		if p.Slug == product.Slug {
			return fmt.Errorf("product slug %s: %w", product.Slug, ErrDuplicate)
		}
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrNotFound)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// Count returns the number of products.
func (r *MockProductRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// DecrementStock atomically subtracts quantity from a product's stock,
// failing with ErrOutOfStock if the product cannot cover it. Used by the
// in-memory order repository to mirror the guarded SQL decrement.
func (r *MockProductRepository) DecrementStock(productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", productID, ErrNotFound)
	}
	if product.Stock < quantity {
		return fmt.Errorf("product %s: %w", productID, ErrOutOfStock)
	}
	product.Stock -= quantity
	r.products[productID] = product
	return nil
}

// RestoreStock adds quantity back to a product's stock. Counterpart of
// DecrementStock for rolling back a partially applied order.
func (r *MockProductRepository) RestoreStock(productID string, quantity int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return
	}
	product.Stock += quantity
	r.products[productID] = product
}
