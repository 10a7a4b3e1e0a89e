package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository. Its
// multi-step operations hold the repository lock for their whole span, so
// they are atomic with respect to each other just like the GORM transactions.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository // stock ledger for MarkPaid; may be nil
	carts    *MockCartRepository    // cleared by CreateFromCart; may be nil
	mu       sync.Mutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository. The
// product and cart repositories participate in the simulated transactions and
// may be nil when a test does not care about those effects.
func NewMockOrderRepository(products *MockProductRepository, carts *MockCartRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
		carts:    carts,
	}
}

// GetAll returns a page of orders, newest first.
func (r *MockOrderRepository) GetAll(page, pageSize int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pageOrders(r.sorted(), page, pageSize)
}

// GetByUserID returns a page of one user's orders, newest first.
func (r *MockOrderRepository) GetByUserID(userID string, page, pageSize int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Order
	for _, o := range r.sorted() {
		if o.UserID == userID {
			matched = append(matched, o)
		}
	}
	return pageOrders(matched, page, pageSize)
}

func (r *MockOrderRepository) sorted() []models.Order {
	orders := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func pageOrders(orders []models.Order, page, pageSize int) ([]models.Order, int64, error) {
	total := int64(len(orders))
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > len(orders) {
		start = len(orders)
	}
	end := start + pageSize
	if pageSize <= 0 || end > len(orders) {
		end = len(orders)
	}
	return orders[start:end], total, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// CreateFromCart stores the order and clears the source cart.
func (r *MockOrderRepository) CreateFromCart(order *models.Order, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if r.carts != nil {
		err := r.carts.Mutate(cartID, func(cart *models.Cart) error {
			cart.Items = []models.CartItem{}
			cart.ItemsPrice = decimal.Zero
			cart.ShippingPrice = decimal.Zero
			cart.TaxPrice = decimal.Zero
			cart.TotalPrice = decimal.Zero
			return nil
		})
		if err != nil {
			return err
		}
	}

	r.orders[order.ID] = *order
	return nil
}

// MarkPaid decrements stock for every item and flips the order to paid. The
// repository lock makes the check-and-set atomic, so a second call always
// observes the first one's paid flag.
func (r *MockOrderRepository) MarkPaid(orderID string, result *models.PaymentResult, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
	}
	if order.IsPaid {
		return fmt.Errorf("order %s: %w", orderID, ErrAlreadyPaid)
	}

	if r.products != nil {
		for i, item := range order.Items {
			if err := r.products.DecrementStock(item.ProductID, item.Quantity); err != nil {
				// Roll back the decrements already applied.
				for j := 0; j < i; j++ {
					r.products.RestoreStock(order.Items[j].ProductID, order.Items[j].Quantity)
				}
				return err
			}
		}
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = result
	r.orders[orderID] = order
	return nil
}

// MarkDelivered sets the delivered flag on a paid order.
func (r *MockOrderRepository) MarkDelivered(orderID string, deliveredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
	}
	if !order.IsPaid {
		return fmt.Errorf("order %s: %w", orderID, ErrNotPaid)
	}
	order.IsDelivered = true
	order.DeliveredAt = &deliveredAt
	r.orders[orderID] = order
	return nil
}

// SetPaymentResult records gateway bookkeeping on an order.
func (r *MockOrderRepository) SetPaymentResult(orderID string, result *models.PaymentResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", orderID, ErrNotFound)
	}
	order.PaymentResult = result
	r.orders[orderID] = order
	return nil
}

// Delete removes an order by its ID.
func (r *MockOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}

// Count returns the number of orders.
func (r *MockOrderRepository) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

// TotalSales sums total_price over all orders.
func (r *MockOrderRepository) TotalSales() (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := decimal.Zero
	for _, o := range r.orders {
		total = total.Add(o.TotalPrice)
	}
	return total, nil
}

// SalesByMonth buckets order totals by creation month.
func (r *MockOrderRepository) SalesByMonth() ([]SalesBucket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMonth := make(map[string]decimal.Decimal)
	for _, o := range r.orders {
		month := o.CreatedAt.Format("01/06")
		byMonth[month] = byMonth[month].Add(o.TotalPrice)
	}
	buckets := make([]SalesBucket, 0, len(byMonth))
	for month, total := range byMonth {
		buckets = append(buckets, SalesBucket{Month: month, TotalSales: total})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month < buckets[j].Month })
	return buckets, nil
}

// GetLatest returns the most recent orders.
func (r *MockOrderRepository) GetLatest(limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.sorted()
	if limit < len(orders) {
		orders = orders[:limit]
	}
	return orders, nil
}
