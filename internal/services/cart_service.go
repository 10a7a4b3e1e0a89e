package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// CartService owns one cart per identity. Every mutation recomputes the four
// derived price fields together with the item list, inside a single
// row-scoped write.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	calc        pricing.Calculator
	publisher   EventPublisher
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, calc pricing.Calculator, publisher EventPublisher) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		calc:        calc,
		publisher:   publisher,
	}
}

// GetCart fetches the identity's cart: by user ID when signed in, otherwise
// by the session cart token. A missing cart is not an error; it returns nil.
func (s *CartService) GetCart(identity models.Identity) (*models.Cart, error) {
	if !identity.Authenticated() && identity.SessionCartID == "" {
		return nil, ErrNoCartSession
	}

	var (
		cart *models.Cart
		err  error
	)
	if identity.Authenticated() {
		cart, err = s.cartRepo.GetByUserID(identity.UserID)
	} else {
		cart, err = s.cartRepo.GetBySessionCartID(identity.SessionCartID)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds one unit of a product to the identity's cart, creating the
// cart lazily on first add. A product already in the cart gets its quantity
// incremented by exactly one; it never appears as a second line. Stock is
// checked against the resulting quantity before anything is written.
//
// Returns the product so callers can build a user-facing message.
func (s *CartService) AddItem(identity models.Identity, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(identity)
	if err != nil {
		return nil, err
	}

	if cart == nil {
		if product.Stock < 1 {
			return nil, fmt.Errorf("product %s: %w", product.Name, repositories.ErrOutOfStock)
		}
		newCart := &models.Cart{
			SessionCartID: identity.SessionCartID,
			Items:         []models.CartItem{snapshotItem(product)},
		}
		if identity.Authenticated() {
			userID := identity.UserID
			newCart.UserID = &userID
		}
		s.applyPrices(newCart)
		if err := s.cartRepo.Create(newCart); err != nil {
			return nil, err
		}
	} else {
		err = s.cartRepo.Mutate(cart.ID, func(cart *models.Cart) error {
			if existing := cart.FindItem(productID); existing != nil {
				if product.Stock < existing.Quantity+1 {
					return fmt.Errorf("product %s: %w", product.Name, repositories.ErrOutOfStock)
				}
				existing.Quantity++
			} else {
				if product.Stock < 1 {
					return fmt.Errorf("product %s: %w", product.Name, repositories.ErrOutOfStock)
				}
				cart.Items = append(cart.Items, snapshotItem(product))
			}
			s.applyPrices(cart)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	publishEvent(s.publisher, rabbitmq.KeyCartUpdated, map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return product, nil
}

// RemoveItem removes one unit of a product from the identity's cart. A line
// at quantity one disappears entirely; a larger line is decremented.
func (s *CartService) RemoveItem(identity models.Identity, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(identity)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("cart: %w", repositories.ErrNotFound)
	}

	err = s.cartRepo.Mutate(cart.ID, func(cart *models.Cart) error {
		existing := cart.FindItem(productID)
		if existing == nil {
			return fmt.Errorf("item %s: %w", productID, repositories.ErrNotFound)
		}
		if existing.Quantity == 1 {
			kept := cart.Items[:0]
			for _, item := range cart.Items {
				if item.ProductID != productID {
					kept = append(kept, item)
				}
			}
			cart.Items = kept
		} else {
			existing.Quantity--
		}
		s.applyPrices(cart)
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.publisher, rabbitmq.KeyCartUpdated, map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return product, nil
}

// applyPrices recomputes all four derived price fields from the item list.
func (s *CartService) applyPrices(cart *models.Cart) {
	prices := s.calc.Calculate(cart.Items)
	cart.ItemsPrice = prices.ItemsPrice
	cart.ShippingPrice = prices.ShippingPrice
	cart.TaxPrice = prices.TaxPrice
	cart.TotalPrice = prices.TotalPrice
}

// snapshotItem freezes the product attributes a cart line displays. The line
// keeps this snapshot even if the product changes later.
func snapshotItem(product *models.Product) models.CartItem {
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	return models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Image:     image,
		Price:     product.Price,
		Quantity:  1,
	}
}
