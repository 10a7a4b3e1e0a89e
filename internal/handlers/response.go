package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/paypal"
)

// Every endpoint answers with this uniform shape; failures carry a
// user-facing message instead of leaking through the handler boundary.
func respondOK(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

func respondCreated(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func respondBadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// statusFor maps the error taxonomy onto HTTP statuses. Unknown errors fall
// through as 500 with their message passed along.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, repositories.ErrAlreadyPaid),
		errors.Is(err, repositories.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, repositories.ErrOutOfStock),
		errors.Is(err, repositories.ErrNotPaid),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrMissingAddress),
		errors.Is(err, services.ErrMissingPaymentMethod),
		errors.Is(err, services.ErrPaymentVerificationFailed),
		errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, services.ErrNoCartSession):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotAuthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, paypal.ErrGatewayUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// validationMessage joins field-level validation failures into one
// user-facing message.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return strings.Join(messages, "; ")
}
