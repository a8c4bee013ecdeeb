package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"lifelink-backend/internal/pkg/response"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. 401 with the standard error
// format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// CurrentUserID extracts the caller's user id from the session user.
// uuid.Nil means no authenticated caller.
func CurrentUserID(c *fiber.Ctx) uuid.UUID {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return uuid.Nil
	}
	s, _ := m["user_id"].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
