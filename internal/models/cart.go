package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. Price is a snapshot taken when the item was
// added, not a live reference to the product's current price.
type CartItem struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Slug      string          `json:"slug" validate:"required"`
	Image     string          `json:"image" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
}

// Cart holds the pending line items for one identity: an authenticated user
// or an anonymous session-cart token. The cart row is created lazily on first
// add and cleared, never deleted, when an order is made from it.
//
// Items and the four price fields are only ever written together; the prices
// are always the recomputed function of the items.
type Cart struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        *string         `json:"user_id,omitempty" gorm:"index;type:varchar(36)"`
	SessionCartID string          `json:"session_cart_id" gorm:"index;type:varchar(36)" validate:"required"`
	Items         []CartItem      `json:"items" gorm:"serializer:json"`
	ItemsPrice    decimal.Decimal `json:"items_price" gorm:"type:decimal(12,2)"`
	ShippingPrice decimal.Decimal `json:"shipping_price" gorm:"type:decimal(12,2)"`
	TaxPrice      decimal.Decimal `json:"tax_price" gorm:"type:decimal(12,2)"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2)"`
	gorm.Model    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// FindItem returns the line for productID, or nil if the cart has none.
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
