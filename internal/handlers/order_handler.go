package handlers

import (
	"log"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders and payment capture.
type OrderHandler struct {
	service  *services.OrderService
	pageSize int
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, pageSize int) *OrderHandler {
	return &OrderHandler{
		service:  service,
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the customer order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/paypal", h.HandleCreatePayPalOrder)
	orderRoutes.Post("/:id/paypal/capture", h.HandleCapturePayPalOrder)
}

// RegisterAdminRoutes registers the back-office order routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Get("/summary", h.HandleGetSummary)
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetAllOrders)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Put("/:id/pay", h.HandleMarkPaid)
	orderRoutes.Put("/:id/deliver", h.HandleMarkDelivered)
}

// HandleCreateOrder converts the signed-in user's cart into an order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	order, err := h.service.CreateOrder(identityFrom(c))
	if err != nil {
		log.Printf("Error creating order: %v", err)
		return respondError(c, err)
	}
	return respondCreated(c, "Order created", order)
}

// HandleGetMyOrders lists the signed-in user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	identity := identityFrom(c)
	orders, total, err := h.service.GetUserOrders(identity.UserID, c.QueryInt("page", 1), h.pageSize)
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", identity.UserID, err)
		return respondError(c, err)
	}
	return respondOK(c, "Orders retrieved", fiber.Map{
		"orders": orders,
		"total":  total,
	})
}

// HandleGetOrderByID retrieves a single order. Customers may only see their
// own orders; admins may see any.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}

	identity := identityFrom(c)
	role, _ := c.Locals("role").(string)
	if order.UserID != identity.UserID && role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "Not your order",
		})
	}
	return respondOK(c, "Order retrieved", order)
}

// HandleCreatePayPalOrder creates the remote gateway order and returns its id.
func (h *OrderHandler) HandleCreatePayPalOrder(c *fiber.Ctx) error {
	gatewayOrderID, err := h.service.CreatePayPalOrder(c.Params("id"))
	if err != nil {
		log.Printf("Error creating PayPal order for order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "PayPal order created", fiber.Map{"paypal_order_id": gatewayOrderID})
}

// CaptureRequest carries the gateway order id the buyer approved.
type CaptureRequest struct {
	PayPalOrderID string `json:"paypal_order_id"`
}

// HandleCapturePayPalOrder captures the approved payment and marks the order
// paid when the capture verifies.
func (h *OrderHandler) HandleCapturePayPalOrder(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing capture request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if req.PayPalOrderID == "" {
		return respondBadRequest(c, "paypal_order_id is required")
	}

	if err := h.service.ApprovePayPalOrder(c.Params("id"), req.PayPalOrderID); err != nil {
		log.Printf("Error capturing PayPal order for order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "Payment successful", nil)
}

// HandleGetAllOrders lists every order for the back office.
func (h *OrderHandler) HandleGetAllOrders(c *fiber.Ctx) error {
	orders, total, err := h.service.GetAllOrders(c.QueryInt("page", 1), h.pageSize)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return respondError(c, err)
	}
	return respondOK(c, "Orders retrieved", fiber.Map{
		"orders": orders,
		"total":  total,
	})
}

// HandleDeleteOrder removes an order.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	if err := h.service.DeleteOrder(c.Params("id")); err != nil {
		log.Printf("Error deleting order %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "Order deleted", nil)
}

// HandleMarkPaid marks a cash-on-delivery order as paid.
func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	if err := h.service.MarkPaid(c.Params("id"), nil); err != nil {
		log.Printf("Error marking order %s paid: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "Order marked as paid", nil)
}

// HandleMarkDelivered marks a paid order as delivered.
func (h *OrderHandler) HandleMarkDelivered(c *fiber.Ctx) error {
	if err := h.service.MarkDelivered(c.Params("id")); err != nil {
		log.Printf("Error marking order %s delivered: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "Order marked as delivered", nil)
}

// HandleGetSummary returns the admin dashboard aggregates.
func (h *OrderHandler) HandleGetSummary(c *fiber.Ctx) error {
	summary, err := h.service.GetSummary(6)
	if err != nil {
		log.Printf("Error computing order summary: %v", err)
		return respondError(c, err)
	}
	return respondOK(c, "Summary retrieved", summary)
}
