package repositories

import (
	"storefront/internal/models"
)

// ProductSearch narrows and pages a product listing.
type ProductSearch struct {
	Query    string
	Category string
	Page     int
	PageSize int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Search(search ProductSearch) ([]models.Product, int64, error)
	GetLatest(limit int) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Count() (int64, error)
}
