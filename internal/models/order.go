package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentResult records the gateway side of a payment. The ID is written when
// the remote gateway order is created; status, payer email and price paid are
// filled in when the capture completes.
type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	EmailAddress string `json:"email_address"`
	PricePaid    string `json:"price_paid"`
}

// OrderItem is an immutable snapshot of a cart line, taken when the order is
// created. It is owned exclusively by its order and never mutated afterwards.
type OrderItem struct {
	OrderID   string          `json:"order_id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"primaryKey;type:varchar(36)"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	Quantity  int             `json:"quantity"`
}

// Order is a frozen snapshot of a cart plus the payment and delivery state.
// The address, payment method and all four price fields are copied at
// creation time. IsPaid and IsDelivered only ever go from false to true.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36)"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"serializer:json"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(40)"`
	ItemsPrice      decimal.Decimal `json:"items_price" gorm:"type:decimal(12,2)"`
	ShippingPrice   decimal.Decimal `json:"shipping_price" gorm:"type:decimal(12,2)"`
	TaxPrice        decimal.Decimal `json:"tax_price" gorm:"type:decimal(12,2)"`
	TotalPrice      decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2)"`
	IsPaid          bool            `json:"is_paid" gorm:"default:false"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered" gorm:"default:false"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	PaymentResult   *PaymentResult  `json:"payment_result,omitempty" gorm:"serializer:json"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	gorm.Model      // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
