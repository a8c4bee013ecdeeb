package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lifelink-backend/internal/pkg/apperr"
	"lifelink-backend/internal/pkg/response"
)

// ErrorHandler is the global Fiber error handler. Returns the standard error
// format, preserving app error codes where present.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := err.(*fiber.Error); ok {
		return response.Error(c, string(apperr.CodeInternal), e.Message, e.Code, nil)
	}
	return response.AppError(c, err)
}
