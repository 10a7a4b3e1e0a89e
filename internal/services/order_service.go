package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/paypal"
	"storefront/pkg/rabbitmq"
)

// PaymentGateway is the contract the order workflow needs from the payment
// processor. The PayPal client satisfies it; tests substitute their own.
type PaymentGateway interface {
	CreateOrder(amount decimal.Decimal) (string, error)
	CapturePayment(gatewayOrderID string) (*paypal.Capture, error)
}

// OrderService orchestrates the cart-to-order conversion and the payment and
// delivery state machine: CREATED -> PAID -> DELIVERED, no transition
// reversing.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	gateway     PaymentGateway
	publisher   EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, cartRepo repositories.CartRepository, userRepo repositories.UserRepository, productRepo repositories.ProductRepository, gateway PaymentGateway, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		gateway:     gateway,
		publisher:   publisher,
	}
}

// CreateOrder snapshots the identity's cart into a new order. Preconditions
// fail fast without mutating anything: the user must exist, the cart must be
// non-empty, and the profile must carry a shipping address and a payment
// method. On success the order, its items, and the cart clear commit as one
// transaction.
func (s *OrderService) CreateOrder(identity models.Identity) (*models.Order, error) {
	if !identity.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.GetByID(identity.UserID)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUserID(identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if user.Address == nil {
		return nil, ErrMissingAddress
	}
	if user.PaymentMethod == "" {
		return nil, ErrMissingPaymentMethod
	}

	order := &models.Order{
		UserID:          user.ID,
		ShippingAddress: *user.Address,
		PaymentMethod:   user.PaymentMethod,
		ItemsPrice:      cart.ItemsPrice,
		ShippingPrice:   cart.ShippingPrice,
		TaxPrice:        cart.TaxPrice,
		TotalPrice:      cart.TotalPrice,
	}
	for _, item := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := s.orderRepo.CreateFromCart(order, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	publishEvent(s.publisher, rabbitmq.KeyOrderCreated, map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.TotalPrice.StringFixed(2),
	})
	return order, nil
}

// GetOrderByID retrieves a single order with its items.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// GetAllOrders retrieves a page of all orders.
func (s *OrderService) GetAllOrders(page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.GetAll(page, pageSize)
}

// GetUserOrders retrieves a page of one user's orders.
func (s *OrderService) GetUserOrders(userID string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.GetByUserID(userID, page, pageSize)
}

// DeleteOrder removes an order.
func (s *OrderService) DeleteOrder(id string) error {
	return s.orderRepo.Delete(id)
}

// MarkPaid transitions an order to paid and decrements stock for its items,
// both inside one transaction. Paying twice fails with ErrAlreadyPaid and
// decrements nothing, even when invoked concurrently.
func (s *OrderService) MarkPaid(orderID string, result *models.PaymentResult) error {
	if err := s.orderRepo.MarkPaid(orderID, result, time.Now()); err != nil {
		return err
	}

	event := map[string]interface{}{"order_id": orderID}
	if order, err := s.orderRepo.GetByID(orderID); err == nil {
		event["user_id"] = order.UserID
		event["total"] = order.TotalPrice.StringFixed(2)
		if result != nil {
			event["payer_email"] = result.EmailAddress
		}
	}
	publishEvent(s.publisher, rabbitmq.KeyOrderPaid, event)
	return nil
}

// MarkDelivered transitions a paid order to delivered.
func (s *OrderService) MarkDelivered(orderID string) error {
	return s.orderRepo.MarkDelivered(orderID, time.Now())
}

// CreatePayPalOrder creates the remote gateway order for an order's total and
// records the returned gateway id. It is idempotent per order: a recorded id
// is reused instead of creating a second remote order.
func (s *OrderService) CreatePayPalOrder(orderID string) (string, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if order.IsPaid {
		return "", fmt.Errorf("order %s: %w", orderID, repositories.ErrAlreadyPaid)
	}
	if order.PaymentResult != nil && order.PaymentResult.ID != "" {
		return order.PaymentResult.ID, nil
	}

	gatewayOrderID, err := s.gateway.CreateOrder(order.TotalPrice)
	if err != nil {
		return "", err
	}

	err = s.orderRepo.SetPaymentResult(orderID, &models.PaymentResult{ID: gatewayOrderID})
	if err != nil {
		return "", err
	}
	return gatewayOrderID, nil
}

// ApprovePayPalOrder captures the gateway payment and, when the capture
// checks out, transitions the order to paid. The capture must report the
// gateway order id recorded at creation time and status COMPLETED; anything
// else fails with ErrPaymentVerificationFailed and changes no state. The paid
// amount is taken from the capture matching the recorded id, never by
// position.
func (s *OrderService) ApprovePayPalOrder(orderID, gatewayOrderID string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}

	capture, err := s.gateway.CapturePayment(gatewayOrderID)
	if err != nil {
		return err
	}

	if capture == nil ||
		order.PaymentResult == nil ||
		capture.ID != order.PaymentResult.ID ||
		capture.Status != "COMPLETED" {
		return fmt.Errorf("order %s: %w", orderID, ErrPaymentVerificationFailed)
	}

	return s.MarkPaid(orderID, &models.PaymentResult{
		ID:           capture.ID,
		Status:       capture.Status,
		EmailAddress: capture.Payer.EmailAddress,
		PricePaid:    capture.AmountFor(capture.ID),
	})
}

// Summary aggregates the admin dashboard numbers.
type Summary struct {
	OrdersCount   int64                      `json:"orders_count"`
	ProductsCount int64                      `json:"products_count"`
	UsersCount    int64                      `json:"users_count"`
	TotalSales    decimal.Decimal            `json:"total_sales"`
	SalesData     []repositories.SalesBucket `json:"sales_data"`
	LatestSales   []models.Order             `json:"latest_sales"`
}

// GetSummary computes the admin dashboard aggregates.
func (s *OrderService) GetSummary(latestLimit int) (*Summary, error) {
	ordersCount, err := s.orderRepo.Count()
	if err != nil {
		return nil, err
	}
	productsCount, err := s.productRepo.Count()
	if err != nil {
		return nil, err
	}
	usersCount, err := s.userRepo.Count()
	if err != nil {
		return nil, err
	}
	totalSales, err := s.orderRepo.TotalSales()
	if err != nil {
		return nil, err
	}
	salesData, err := s.orderRepo.SalesByMonth()
	if err != nil {
		return nil, err
	}
	latestSales, err := s.orderRepo.GetLatest(latestLimit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		OrdersCount:   ordersCount,
		ProductsCount: productsCount,
		UsersCount:    usersCount,
		TotalSales:    totalSales,
		SalesData:     salesData,
		LatestSales:   latestSales,
	}, nil
}
