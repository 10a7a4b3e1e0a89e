package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCart ensures every request carries a session-cart token. A request
// without the cookie gets a fresh random UUID minted and attached to the
// response, so anonymous visitors keep the same cart across requests.
func SessionCart(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionCartID := c.Cookies(cookieName)
		if sessionCartID == "" {
			sessionCartID = uuid.New().String()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    sessionCartID,
				Expires:  time.Now().Add(30 * 24 * time.Hour),
				HTTPOnly: true,
				SameSite: "Lax",
			})
		}
		c.Locals("session_cart_id", sessionCartID)
		return c.Next()
	}
}
