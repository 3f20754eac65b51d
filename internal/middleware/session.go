package middleware

import (
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the Fiber locals key holding the current user id (uint, 0 = anonymous).
const UserIDLocal = "userID"

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(token string) (uint, error)
}

// Session resolves the current user from the Bearer header or the session cookie.
// Missing or invalid tokens leave the request anonymous.
func Session(parser TokenParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(UserIDLocal, uint(0))

		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(session.CookieName)
		}
		if token == "" {
			return c.Next()
		}

		if userID, err := parser.Parse(token); err == nil {
			c.Locals(UserIDLocal, userID)
		}
		return c.Next()
	}
}

// SessionRequired refuses anonymous requests with 401 and a login redirect.
func SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUserID(c) == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Please log in to continue"))
		}
		return c.Next()
	}
}

// CurrentUserID returns the session user, or 0 when anonymous.
func CurrentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals(UserIDLocal).(uint)
	return userID
}

func bearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
