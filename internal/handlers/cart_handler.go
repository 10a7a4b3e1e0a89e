package handlers

import (
	"fmt"
	"log"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. The routes
// serve both anonymous sessions and signed-in users.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// HandleGetCart returns the identity's cart. A visitor who has not added
// anything yet gets an empty payload, not an error.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(identityFrom(c))
	if err != nil {
		log.Printf("Error getting cart: %v", err)
		return respondError(c, err)
	}
	if cart == nil {
		return respondOK(c, "Cart is empty", nil)
	}
	return respondOK(c, "Cart retrieved", cart)
}

// AddItemRequest represents the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// HandleAddItem adds one unit of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-item request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	product, err := h.service.AddItem(identityFrom(c), req.ProductID)
	if err != nil {
		log.Printf("Error adding item %s to cart: %v", req.ProductID, err)
		return respondError(c, err)
	}
	return respondOK(c, fmt.Sprintf("%s added to cart", product.Name), nil)
}

// HandleRemoveItem removes one unit of a product from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	productID := c.Params("productId")

	product, err := h.service.RemoveItem(identityFrom(c), productID)
	if err != nil {
		log.Printf("Error removing item %s from cart: %v", productID, err)
		return respondError(c, err)
	}
	return respondOK(c, fmt.Sprintf("%s was removed from the cart", product.Name), nil)
}
