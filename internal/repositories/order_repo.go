package repositories

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// SalesBucket is one month of aggregated order totals.
type SalesBucket struct {
	Month      string          `json:"month"` // formatted MM/YY
	TotalSales decimal.Decimal `json:"total_sales"`
}

// OrderRepository defines the interface for order data access. The two
// multi-step operations, CreateFromCart and MarkPaid, are atomic units: every
// sub-step commits together or none does.
type OrderRepository interface {
	GetAll(page, pageSize int) ([]models.Order, int64, error)
	GetByUserID(userID string, page, pageSize int) ([]models.Order, int64, error)
	GetByID(id string) (*models.Order, error)

	// CreateFromCart inserts the order and its items and clears the source
	// cart (items emptied, prices zeroed) in one transaction.
	CreateFromCart(order *models.Order, cartID string) error

	// MarkPaid decrements stock for every order item and flips the order to
	// paid in one transaction. Fails with ErrAlreadyPaid if the order is
	// already paid, even under concurrent invocation, and with ErrOutOfStock
	// if any product cannot cover its quantity.
	MarkPaid(orderID string, result *models.PaymentResult, paidAt time.Time) error

	MarkDelivered(orderID string, deliveredAt time.Time) error

	// SetPaymentResult records gateway bookkeeping (such as the remote order
	// id) without touching the paid state.
	SetPaymentResult(orderID string, result *models.PaymentResult) error

	Delete(id string) error
	Count() (int64, error)
	TotalSales() (decimal.Decimal, error)
	SalesByMonth() ([]SalesBucket, error)
	GetLatest(limit int) ([]models.Order, error)
}
