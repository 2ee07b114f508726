package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"aegis-review-be/internal/pkg/logger"
)

// ErrorHandlerMiddleware turns any error escaping a handler into the
// standard envelope and logs 5xx ones.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= 500 && log != nil {
			log.Error("http", "request failed", map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
				"error":  err.Error(),
			})
		}

		return c.Status(code).JSON(ErrorResponse(message))
	}
}
