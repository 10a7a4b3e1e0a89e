package services_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/paypal"
)

// MockPaymentGateway is a mock implementation of services.PaymentGateway.
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(amount decimal.Decimal) (string, error) {
	args := m.Called(amount)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) CapturePayment(gatewayOrderID string) (*paypal.Capture, error) {
	args := m.Called(gatewayOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.Capture), args.Error(1)
}

// captureFixture builds a Capture the way the workflow receives one: decoded
// from a gateway response body.
func captureFixture(t *testing.T, id, status, email, amount string) *paypal.Capture {
	t.Helper()

	body := fmt.Sprintf(`{
		"id": %q,
		"status": %q,
		"payer": {"email_address": %q},
		"purchase_units": [{"payments": {"captures": [
			{"id": %q, "status": %q, "amount": {"currency_code": "USD", "value": %q}}
		]}}]
	}`, id, status, email, id, status, amount)

	var capture paypal.Capture
	require.NoError(t, json.Unmarshal([]byte(body), &capture))
	return &capture
}

type orderFixture struct {
	service  *services.OrderService
	orders   *repositories.MockOrderRepository
	carts    *repositories.MockCartRepository
	users    *repositories.MockUserRepository
	products *repositories.MockProductRepository
	gateway  *MockPaymentGateway
	user     *models.User
}

// newOrderFixture wires an order service over in-memory repositories with one
// user whose profile is checkout-ready and one product with the given stock.
func newOrderFixture(t *testing.T, stock int) *orderFixture {
	t.Helper()

	products := repositories.NewMockProductRepository()
	shirt := sampleShirt()
	shirt.Stock = stock
	require.NoError(t, products.Create(&shirt))

	users := repositories.NewMockUserRepository()
	user := &models.User{
		Name:          "Jane Doe",
		Email:         "jane@example.com",
		Password:      "hashed",
		Role:          models.RoleUser,
		PaymentMethod: "PayPal",
		Address: &models.ShippingAddress{
			FullName:      "Jane Doe",
			StreetAddress: "123 Main St",
			City:          "Anytown",
			PostalCode:    "12345",
			Country:       "USA",
		},
	}
	require.NoError(t, users.Create(user))

	carts := repositories.NewMockCartRepository()
	orders := repositories.NewMockOrderRepository(products, carts)
	gateway := new(MockPaymentGateway)

	return &orderFixture{
		service:  services.NewOrderService(orders, carts, users, products, gateway, nil),
		orders:   orders,
		carts:    carts,
		users:    users,
		products: products,
		gateway:  gateway,
		user:     user,
	}
}

// fillCart adds quantity units of the fixture product to the user's cart.
func (f *orderFixture) fillCart(t *testing.T, quantity int) {
	t.Helper()

	cartService := services.NewCartService(f.carts, f.products, pricing.NewCalculator(), nil)
	identity := models.Identity{UserID: f.user.ID, SessionCartID: "session-1"}
	for i := 0; i < quantity; i++ {
		_, err := cartService.AddItem(identity, "prod-1")
		require.NoError(t, err)
	}
}

func (f *orderFixture) identity() models.Identity {
	return models.Identity{UserID: f.user.ID, SessionCartID: "session-1"}
}

func TestOrderService_CreateOrder(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 2)

	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	assert.Equal(t, f.user.ID, order.UserID)
	assert.Equal(t, "Jane Doe", order.ShippingAddress.FullName)
	assert.Equal(t, "PayPal", order.PaymentMethod)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "119.98", order.ItemsPrice.StringFixed(2))
	assert.Equal(t, "0.00", order.ShippingPrice.StringFixed(2))
	assert.Equal(t, "18.00", order.TaxPrice.StringFixed(2))
	assert.Equal(t, "137.98", order.TotalPrice.StringFixed(2))
	assert.False(t, order.IsPaid)

	// The cart survives but is emptied, prices zeroed.
	cart, err := f.carts.GetByUserID(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.TotalPrice.StringFixed(2))

	// Stock is untouched until payment.
	product, err := f.products.GetByID("prod-1")
	require.NoError(t, err)
	assert.Equal(t, 5, product.Stock)
}

func TestOrderService_CreateOrder_Preconditions(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		_, err := f.service.CreateOrder(models.Identity{SessionCartID: "session-1"})
		assert.ErrorIs(t, err, services.ErrNotAuthenticated)
	})

	t.Run("no cart at all", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		_, err := f.service.CreateOrder(f.identity())
		assert.ErrorIs(t, err, services.ErrEmptyCart)
	})

	t.Run("cart emptied beforehand", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		f.fillCart(t, 1)

		cartService := services.NewCartService(f.carts, f.products, pricing.NewCalculator(), nil)
		_, err := cartService.RemoveItem(f.identity(), "prod-1")
		require.NoError(t, err)

		_, err = f.service.CreateOrder(f.identity())
		assert.ErrorIs(t, err, services.ErrEmptyCart)
	})

	t.Run("no shipping address", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		f.fillCart(t, 1)
		f.user.Address = nil
		require.NoError(t, f.users.Update(f.user))

		_, err := f.service.CreateOrder(f.identity())
		assert.ErrorIs(t, err, services.ErrMissingAddress)
	})

	t.Run("no payment method", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		f.fillCart(t, 1)
		f.user.PaymentMethod = ""
		require.NoError(t, f.users.Update(f.user))

		_, err := f.service.CreateOrder(f.identity())
		assert.ErrorIs(t, err, services.ErrMissingPaymentMethod)
	})

	// A failed precondition leaves the cart untouched.
	t.Run("failed precondition keeps cart", func(t *testing.T) {
		f := newOrderFixture(t, 5)
		f.fillCart(t, 2)
		f.user.PaymentMethod = ""
		require.NoError(t, f.users.Update(f.user))

		_, err := f.service.CreateOrder(f.identity())
		require.Error(t, err)

		cart, err := f.carts.GetByUserID(f.user.ID)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
	})
}

func TestOrderService_MarkPaid(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 2)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	require.NoError(t, f.service.MarkPaid(order.ID, nil))

	paid, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)

	product, err := f.products.GetByID("prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, product.Stock)

	// Paying again must fail and must not decrement stock a second time.
	err = f.service.MarkPaid(order.ID, nil)
	assert.ErrorIs(t, err, repositories.ErrAlreadyPaid)

	product, err = f.products.GetByID("prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, product.Stock)
}

func TestOrderService_MarkPaid_InsufficientStock(t *testing.T) {
	f := newOrderFixture(t, 2)
	f.fillCart(t, 2)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	// Stock drained between checkout and payment.
	product, err := f.products.GetByID("prod-1")
	require.NoError(t, err)
	product.Stock = 1
	require.NoError(t, f.products.Update(product))

	err = f.service.MarkPaid(order.ID, nil)
	assert.ErrorIs(t, err, repositories.ErrOutOfStock)

	// Nothing committed: the order stays unpaid and stock is unchanged.
	unpaid, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.False(t, unpaid.IsPaid)

	product, err = f.products.GetByID("prod-1")
	require.NoError(t, err)
	assert.Equal(t, 1, product.Stock)
}

func TestOrderService_MarkDelivered(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 1)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	// Delivery before payment is rejected.
	err = f.service.MarkDelivered(order.ID)
	assert.ErrorIs(t, err, repositories.ErrNotPaid)

	require.NoError(t, f.service.MarkPaid(order.ID, nil))
	require.NoError(t, f.service.MarkDelivered(order.ID))

	delivered, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestOrderService_CreatePayPalOrder(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 1)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	f.gateway.On("CreateOrder", mock.MatchedBy(func(amount decimal.Decimal) bool {
		return amount.Equal(order.TotalPrice)
	})).Return("PAYPAL-123", nil).Once()

	gatewayOrderID, err := f.service.CreatePayPalOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-123", gatewayOrderID)

	// A second call reuses the recorded id instead of creating another
	// remote order; the single .Once() expectation enforces that.
	gatewayOrderID, err = f.service.CreatePayPalOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAYPAL-123", gatewayOrderID)

	f.gateway.AssertExpectations(t)
}

func TestOrderService_CreatePayPalOrder_AlreadyPaid(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 1)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)
	require.NoError(t, f.service.MarkPaid(order.ID, nil))

	_, err = f.service.CreatePayPalOrder(order.ID)
	assert.ErrorIs(t, err, repositories.ErrAlreadyPaid)
	f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything)
}

func TestOrderService_ApprovePayPalOrder(t *testing.T) {
	f := newOrderFixture(t, 5)
	f.fillCart(t, 1)
	order, err := f.service.CreateOrder(f.identity())
	require.NoError(t, err)

	f.gateway.On("CreateOrder", mock.Anything).Return("PAYPAL-123", nil).Once()
	_, err = f.service.CreatePayPalOrder(order.ID)
	require.NoError(t, err)

	capture := captureFixture(t, "PAYPAL-123", "COMPLETED", "payer@example.com", "78.99")
	f.gateway.On("CapturePayment", "PAYPAL-123").Return(capture, nil).Once()

	require.NoError(t, f.service.ApprovePayPalOrder(order.ID, "PAYPAL-123"))

	paid, err := f.service.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, "PAYPAL-123", paid.PaymentResult.ID)
	assert.Equal(t, "COMPLETED", paid.PaymentResult.Status)
	assert.Equal(t, "payer@example.com", paid.PaymentResult.EmailAddress)
	assert.Equal(t, "78.99", paid.PaymentResult.PricePaid)
	f.gateway.AssertExpectations(t)
}

func TestOrderService_ApprovePayPalOrder_VerificationFails(t *testing.T) {
	tests := []struct {
		name    string
		capture func(t *testing.T) *paypal.Capture
	}{
		{
			"id mismatch",
			func(t *testing.T) *paypal.Capture {
				return captureFixture(t, "SOMEONE-ELSES-ORDER", "COMPLETED", "payer@example.com", "78.99")
			},
		},
		{
			"not completed",
			func(t *testing.T) *paypal.Capture {
				return captureFixture(t, "PAYPAL-123", "PENDING", "payer@example.com", "78.99")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t, 5)
			f.fillCart(t, 1)
			order, err := f.service.CreateOrder(f.identity())
			require.NoError(t, err)

			f.gateway.On("CreateOrder", mock.Anything).Return("PAYPAL-123", nil).Once()
			_, err = f.service.CreatePayPalOrder(order.ID)
			require.NoError(t, err)

			f.gateway.On("CapturePayment", "PAYPAL-123").Return(tt.capture(t), nil).Once()

			err = f.service.ApprovePayPalOrder(order.ID, "PAYPAL-123")
			assert.ErrorIs(t, err, services.ErrPaymentVerificationFailed)

			// Verification failure leaves the order unpaid and stock whole.
			unpaid, err := f.service.GetOrderByID(order.ID)
			require.NoError(t, err)
			assert.False(t, unpaid.IsPaid)

			product, err := f.products.GetByID("prod-1")
			require.NoError(t, err)
			assert.Equal(t, 5, product.Stock)
		})
	}
}

func TestOrderService_GetSummary(t *testing.T) {
	f := newOrderFixture(t, 50)
	identity := f.identity()

	for i := 0; i < 3; i++ {
		f.fillCart(t, 1)
		_, err := f.service.CreateOrder(identity)
		require.NoError(t, err)
	}

	summary, err := f.service.GetSummary(2)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.OrdersCount)
	assert.Equal(t, int64(1), summary.ProductsCount)
	assert.Equal(t, int64(1), summary.UsersCount)
	// 3 orders of 59.99 + 10.00 shipping + 9.00 tax each.
	assert.Equal(t, "236.97", summary.TotalSales.StringFixed(2))
	assert.Len(t, summary.LatestSales, 2)
	require.Len(t, summary.SalesData, 1)
	assert.Equal(t, "236.97", summary.SalesData[0].TotalSales.StringFixed(2))
}
