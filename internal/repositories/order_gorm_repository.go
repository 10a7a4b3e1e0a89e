package repositories

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves a page of orders, newest first, with the total count.
func (r *GORMOrderRepository) GetAll(page, pageSize int) ([]models.Order, int64, error) {
	return r.page(r.db.Model(&models.Order{}), page, pageSize)
}

// GetByUserID retrieves a page of one user's orders, newest first.
func (r *GORMOrderRepository) GetByUserID(userID string, page, pageSize int) ([]models.Order, int64, error) {
	return r.page(r.db.Model(&models.Order{}).Where("user_id = ?", userID), page, pageSize)
}

func (r *GORMOrderRepository) page(q *gorm.DB, page, pageSize int) ([]models.Order, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if page < 1 {
		page = 1
	}
	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// CreateFromCart inserts the order and its items and clears the source cart
// in one transaction. A failure in any step rolls back all of them.
func (r *GORMOrderRepository) CreateFromCart(order *models.Order, cartID string) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// Struct update so the serializer on the items column applies.
		res := tx.Model(&models.Cart{}).Where("id = ?", cartID).
			Select("items", "items_price", "shipping_price", "tax_price", "total_price").
			Updates(models.Cart{
				Items:         []models.CartItem{},
				ItemsPrice:    decimal.Zero,
				ShippingPrice: decimal.Zero,
				TaxPrice:      decimal.Zero,
				TotalPrice:    decimal.Zero,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to clear cart %s: %w", cartID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
		}
		return nil
	})
}

// MarkPaid decrements stock for every order item and flips the order to paid
// in one transaction. The paid flip is a compare-and-set on is_paid, so a
// concurrent duplicate capture finds zero affected rows and fails with
// ErrAlreadyPaid before any of its stock decrements commit.
func (r *GORMOrderRepository) MarkPaid(orderID string, result *models.PaymentResult, paidAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var order models.Order
		if err := q.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("failed to load order %s: %w", orderID, err)
		}
		if order.IsPaid {
			return fmt.Errorf("order %s: %w", orderID, ErrAlreadyPaid)
		}

		for _, item := range order.Items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrOutOfStock)
			}
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND is_paid = ?", orderID, false).
			Select("is_paid", "paid_at", "payment_result").
			Updates(models.Order{IsPaid: true, PaidAt: &paidAt, PaymentResult: result})
		if res.Error != nil {
			return fmt.Errorf("failed to mark order %s paid: %w", orderID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %s: %w", orderID, ErrAlreadyPaid)
		}
		return nil
	})
}

// MarkDelivered sets the delivered flag and timestamp. The order must exist
// and already be paid.
func (r *GORMOrderRepository) MarkDelivered(orderID string, deliveredAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("failed to load order %s: %w", orderID, err)
		}
		if !order.IsPaid {
			return fmt.Errorf("order %s: %w", orderID, ErrNotPaid)
		}

		err := tx.Model(&models.Order{}).Where("id = ?", orderID).
			Select("is_delivered", "delivered_at").
			Updates(models.Order{IsDelivered: true, DeliveredAt: &deliveredAt}).Error
		if err != nil {
			return fmt.Errorf("failed to mark order %s delivered: %w", orderID, err)
		}
		return nil
	})
}

// SetPaymentResult records gateway bookkeeping on an order without touching
// the paid state.
func (r *GORMOrderRepository) SetPaymentResult(orderID string, result *models.PaymentResult) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", orderID).
		Select("payment_result").
		Updates(models.Order{PaymentResult: result})
	if res.Error != nil {
		return fmt.Errorf("failed to set payment result for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
	}
	return nil
}

// Delete removes an order and its items.
func (r *GORMOrderRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderItem{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete order items for order %s: %w", id, err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Count returns the number of orders.
func (r *GORMOrderRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// TotalSales sums total_price over all orders.
func (r *GORMOrderRepository) TotalSales() (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum sales: %w", err)
	}
	return row.Total, nil
}

// SalesByMonth buckets order totals by creation month. Bucketing happens in
// Go so the query stays portable between postgres and the sqlite tests.
func (r *GORMOrderRepository) SalesByMonth() ([]SalesBucket, error) {
	var rows []struct {
		CreatedAt  time.Time
		TotalPrice decimal.Decimal
	}
	err := r.db.Model(&models.Order{}).
		Select("created_at", "total_price").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load sales data: %w", err)
	}

	byMonth := make(map[string]decimal.Decimal)
	for _, row := range rows {
		month := row.CreatedAt.Format("01/06")
		byMonth[month] = byMonth[month].Add(row.TotalPrice)
	}

	buckets := make([]SalesBucket, 0, len(byMonth))
	for month, total := range byMonth {
		buckets = append(buckets, SalesBucket{Month: month, TotalSales: total})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets, nil
}

// GetLatest retrieves the most recent orders.
func (r *GORMOrderRepository) GetLatest(limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get latest orders: %w", err)
	}
	return orders, nil
}
