package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/models"
)

// identityFrom resolves the request's cart identity from the middleware
// locals: the user ID when a JWT was presented, the session-cart token
// otherwise.
func identityFrom(c *fiber.Ctx) models.Identity {
	identity := models.Identity{}
	if userID, ok := c.Locals("user_id").(string); ok {
		identity.UserID = userID
	}
	if sessionCartID, ok := c.Locals("session_cart_id").(string); ok {
		identity.SessionCartID = sessionCartID
	}
	return identity
}
