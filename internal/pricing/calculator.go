package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

// Calculator computes the derived price fields of a cart or order from its
// line items. It is pure: no I/O, no clock, no shared state.
type Calculator struct {
	FreeShippingThreshold decimal.Decimal // items total at or above this ships free
	ShippingPrice         decimal.Decimal // flat rate below the threshold
	TaxRate               decimal.Decimal // e.g. 0.15
}

// Prices holds the four derived monetary fields, each rounded
// half-away-from-zero to two decimal places.
type Prices struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// NewCalculator returns a Calculator with the store's default policy:
// free shipping from 100.00, a 10.00 flat rate below, 15% tax.
func NewCalculator() Calculator {
	return Calculator{
		FreeShippingThreshold: decimal.NewFromInt(100),
		ShippingPrice:         decimal.NewFromInt(10),
		TaxRate:               decimal.NewFromFloat(0.15),
	}
}

// Calculate derives all four price fields from the given line items. An empty
// list yields all zeroes, including shipping, so a cleared cart reads 0.00
// across the board.
func (c Calculator) Calculate(items []models.CartItem) Prices {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	itemsPrice = round2(itemsPrice)

	shippingPrice := decimal.Zero
	if len(items) > 0 && itemsPrice.LessThan(c.FreeShippingThreshold) {
		shippingPrice = round2(c.ShippingPrice)
	}

	taxPrice := round2(c.TaxRate.Mul(itemsPrice))
	totalPrice := round2(itemsPrice.Add(shippingPrice).Add(taxPrice))

	return Prices{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    totalPrice,
	}
}

// round2 rounds half away from zero at two decimal places.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Fixed2 formats a monetary amount as a fixed two-decimal string, the only
// representation that crosses serialization boundaries.
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
