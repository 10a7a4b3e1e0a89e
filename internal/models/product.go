package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical source for price and stock. Cart and order line
// items snapshot its attributes at action time and reference it back by ID
// only for identity and stock checks.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Slug        string          `json:"slug" gorm:"uniqueIndex;type:varchar(120)" validate:"required,min=3,max=120"`
	Category    string          `json:"category" validate:"required,min=3,max=100"`
	Brand       string          `json:"brand" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	Images      []string        `json:"images" gorm:"serializer:json" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Rating      decimal.Decimal `json:"rating" gorm:"type:decimal(3,2)"`
	NumReviews  int             `json:"num_reviews"`
	IsFeatured  bool            `json:"is_featured"`
	Banner      *string         `json:"banner,omitempty"`
	gorm.Model  // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
