package handlers

import (
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service             *services.ProductService
	validate            *validator.Validate
	pageSize            int
	latestProductsLimit int
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, pageSize, latestProductsLimit int) *ProductHandler {
	return &ProductHandler{
		service:             service,
		validate:            validator.New(),
		pageSize:            pageSize,
		latestProductsLimit: latestProductsLimit,
	}
}

// RegisterRoutes registers the public catalog routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleSearch)
	productRoutes.Get("/latest", h.HandleGetLatest)
	productRoutes.Get("/slug/:slug", h.HandleGetBySlug)
}

// RegisterAdminRoutes registers the back-office product CRUD routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleCreate)
	productRoutes.Put("/:id", h.HandleUpdate)
	productRoutes.Delete("/:id", h.HandleDelete)
}

// HandleSearch lists products with optional query/category filters.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	products, total, err := h.service.SearchProducts(repositories.ProductSearch{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page", 1),
		PageSize: h.pageSize,
	})
	if err != nil {
		log.Printf("Error searching products: %v", err)
		return respondError(c, err)
	}
	return respondOK(c, "Products retrieved", fiber.Map{
		"products": products,
		"total":    total,
	})
}

// HandleGetLatest returns the most recently added products.
func (h *ProductHandler) HandleGetLatest(c *fiber.Ctx) error {
	products, err := h.service.GetLatestProducts(h.latestProductsLimit)
	if err != nil {
		log.Printf("Error getting latest products: %v", err)
		return respondError(c, err)
	}
	return respondOK(c, "Products retrieved", products)
}

// HandleGetBySlug returns a single product by its slug.
func (h *ProductHandler) HandleGetBySlug(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySlug(c.Params("slug"))
	if err != nil {
		log.Printf("Error getting product by slug %s: %v", c.Params("slug"), err)
		return respondError(c, err)
	}
	return respondOK(c, "Product retrieved", product)
}

// HandleCreate creates a new product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(product); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, err)
	}
	return respondCreated(c, "Product created", product)
}

// HandleUpdate updates an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return respondError(c, err)
	}
	return respondOK(c, "Product updated", product)
}

// HandleDelete deletes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %s: %v", id, err)
		return respondError(c, err)
	}
	return respondOK(c, "Product deleted", nil)
}
