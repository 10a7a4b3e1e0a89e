package services_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func newCartFixture(t *testing.T, products ...models.Product) (*services.CartService, *repositories.MockCartRepository, *repositories.MockProductRepository) {
	t.Helper()

	productRepo := repositories.NewMockProductRepository()
	for i := range products {
		require.NoError(t, productRepo.Create(&products[i]))
	}
	cartRepo := repositories.NewMockCartRepository()
	service := services.NewCartService(cartRepo, productRepo, pricing.NewCalculator(), nil)
	return service, cartRepo, productRepo
}

func sampleShirt() models.Product {
	return models.Product{
		ID:       "prod-1",
		Name:     "Polo Sporting Stretch Shirt",
		Slug:     "polo-sporting-stretch-shirt",
		Images:   []string{"/images/p1-1.jpg"},
		Price:    decimal.RequireFromString("59.99"),
		Stock:    3,
		Category: "Men's Dress Shirts",
	}
}

func TestCartService_AddItem_CreatesCartLazily(t *testing.T) {
	service, cartRepo, _ := newCartFixture(t, sampleShirt())
	identity := models.Identity{SessionCartID: "session-1"}

	// No cart exists yet.
	cart, err := service.GetCart(identity)
	require.NoError(t, err)
	assert.Nil(t, cart)

	product, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "Polo Sporting Stretch Shirt", product.Name)

	cart, err = cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, "59.99", cart.ItemsPrice.StringFixed(2))
	assert.Equal(t, "10.00", cart.ShippingPrice.StringFixed(2))
	assert.Equal(t, "9.00", cart.TaxPrice.StringFixed(2))
	assert.Equal(t, "78.99", cart.TotalPrice.StringFixed(2))
}

func TestCartService_AddItem_SameProductIncrementsLine(t *testing.T) {
	service, cartRepo, _ := newCartFixture(t, sampleShirt())
	identity := models.Identity{SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)
	_, err = service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	cart, err := cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product must never appear as a second line")
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "119.98", cart.ItemsPrice.StringFixed(2))
	assert.Equal(t, "0.00", cart.ShippingPrice.StringFixed(2), "items total above 100 ships free")
}

func TestCartService_AddItem_OutOfStock(t *testing.T) {
	shirt := sampleShirt()
	shirt.Stock = 1
	service, cartRepo, _ := newCartFixture(t, shirt)
	identity := models.Identity{SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	// A second unit would exceed stock; the cart must stay at quantity one.
	_, err = service.AddItem(identity, "prod-1")
	assert.ErrorIs(t, err, repositories.ErrOutOfStock)

	cart, err := cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCartService_AddItem_ZeroStockProduct(t *testing.T) {
	shirt := sampleShirt()
	shirt.Stock = 0
	service, _, _ := newCartFixture(t, shirt)

	_, err := service.AddItem(models.Identity{SessionCartID: "session-1"}, "prod-1")
	assert.ErrorIs(t, err, repositories.ErrOutOfStock)
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	service, _, _ := newCartFixture(t, sampleShirt())

	_, err := service.AddItem(models.Identity{SessionCartID: "session-1"}, "no-such-product")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_AddItem_SnapshotsProductAttributes(t *testing.T) {
	service, cartRepo, productRepo := newCartFixture(t, sampleShirt())
	identity := models.Identity{SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	// Reprice the product after the add; the cart line keeps its snapshot.
	updated := sampleShirt()
	updated.Price = decimal.RequireFromString("79.99")
	require.NoError(t, productRepo.Update(&updated))

	cart, err := cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	assert.Equal(t, "59.99", cart.Items[0].Price.StringFixed(2))
	assert.Equal(t, "polo-sporting-stretch-shirt", cart.Items[0].Slug)
	assert.Equal(t, "/images/p1-1.jpg", cart.Items[0].Image)
}

func TestCartService_RemoveItem(t *testing.T) {
	service, cartRepo, _ := newCartFixture(t, sampleShirt())
	identity := models.Identity{SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)
	_, err = service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	// Quantity two: removal decrements the line.
	_, err = service.RemoveItem(identity, "prod-1")
	require.NoError(t, err)
	cart, err := cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// Quantity one: removal drops the line entirely, prices follow.
	_, err = service.RemoveItem(identity, "prod-1")
	require.NoError(t, err)
	cart, err = cartRepo.GetBySessionCartID("session-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.ItemsPrice.StringFixed(2))
	assert.Equal(t, "0.00", cart.ShippingPrice.StringFixed(2))
	assert.Equal(t, "0.00", cart.TotalPrice.StringFixed(2))
}

func TestCartService_RemoveItem_NotInCart(t *testing.T) {
	other := sampleShirt()
	other.ID = "prod-2"
	other.Slug = "other-shirt"
	service, _, _ := newCartFixture(t, sampleShirt(), other)
	identity := models.Identity{SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	_, err = service.RemoveItem(identity, "prod-2")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_RemoveItem_NoCart(t *testing.T) {
	service, _, _ := newCartFixture(t, sampleShirt())

	_, err := service.RemoveItem(models.Identity{SessionCartID: "session-1"}, "prod-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCartService_GetCart_ByUserID(t *testing.T) {
	service, _, _ := newCartFixture(t, sampleShirt())
	identity := models.Identity{UserID: "user-1", SessionCartID: "session-1"}

	_, err := service.AddItem(identity, "prod-1")
	require.NoError(t, err)

	// A signed-in identity resolves its cart by user ID, not session token.
	cart, err := service.GetCart(models.Identity{UserID: "user-1"})
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Len(t, cart.Items, 1)
}

func TestCartService_GetCart_NoSession(t *testing.T) {
	service, _, _ := newCartFixture(t)

	_, err := service.GetCart(models.Identity{})
	assert.True(t, errors.Is(err, services.ErrNoCartSession))
}
