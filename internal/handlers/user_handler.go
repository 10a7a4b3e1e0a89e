package handlers

import (
	"log"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user profiles and the admin user
// surface.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
	pageSize int
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, pageSize int) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
		pageSize: pageSize,
	}
}

// RegisterRoutes registers the profile routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Put("/address", h.HandleUpdateAddress)
	userRoutes.Put("/payment-method", h.HandleUpdatePaymentMethod)
}

// RegisterAdminRoutes registers the back-office user routes.
func (h *UserHandler) RegisterAdminRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetAllUsers)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleUpdateAddress sets the signed-in user's shipping address.
func (h *UserHandler) HandleUpdateAddress(c *fiber.Ctx) error {
	var address models.ShippingAddress
	if err := c.BodyParser(&address); err != nil {
		log.Printf("Error parsing address request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(address); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	identity := identityFrom(c)
	if err := h.service.UpdateAddress(identity.UserID, address); err != nil {
		log.Printf("Error updating address for user %s: %v", identity.UserID, err)
		return respondError(c, err)
	}
	return respondOK(c, "Address updated successfully", nil)
}

// PaymentMethodRequest represents the request body for choosing a payment method.
type PaymentMethodRequest struct {
	Type string `json:"type" validate:"required"`
}

// HandleUpdatePaymentMethod sets the signed-in user's payment method.
func (h *UserHandler) HandleUpdatePaymentMethod(c *fiber.Ctx) error {
	var req PaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing payment method request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	identity := identityFrom(c)
	if err := h.service.UpdatePaymentMethod(identity.UserID, req.Type); err != nil {
		log.Printf("Error updating payment method for user %s: %v", identity.UserID, err)
		return respondError(c, err)
	}
	return respondOK(c, "Payment method updated successfully", nil)
}

// HandleGetAllUsers lists users for the back office.
func (h *UserHandler) HandleGetAllUsers(c *fiber.Ctx) error {
	users, total, err := h.service.GetAllUsers(c.QueryInt("page", 1), h.pageSize)
	if err != nil {
		log.Printf("Error listing users: %v", err)
		return respondError(c, err)
	}
	for i := range users {
		users[i].Password = ""
	}
	return respondOK(c, "Users retrieved", fiber.Map{
		"users": users,
		"total": total,
	})
}

// UpdateUserRequest represents the admin request body for editing a user.
type UpdateUserRequest struct {
	Name string `json:"name" validate:"omitempty,min=3,max=100"`
	Role string `json:"role" validate:"omitempty,oneof=user admin"`
}

// HandleUpdateUser lets an admin change a user's name and role.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing user update request body: %v", err)
		return respondBadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return respondBadRequest(c, validationMessage(err))
	}

	user, err := h.service.UpdateUser(c.Params("id"), req.Name, req.Role)
	if err != nil {
		log.Printf("Error updating user %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	user.Password = ""
	return respondOK(c, "User updated successfully", user)
}

// HandleDeleteUser removes a user account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.service.DeleteUser(c.Params("id")); err != nil {
		log.Printf("Error deleting user %s: %v", c.Params("id"), err)
		return respondError(c, err)
	}
	return respondOK(c, "User deleted", nil)
}
