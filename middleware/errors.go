// middleware/errors.go
package middleware

import (
	"errors"
	"log"
	"runtime/debug"

	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrWindowClosed),
		errors.Is(err, services.ErrCapacityExceeded):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every error as {"success": false, "message": ...}. Service rule
// violations keep their message; anything else is a 500 whose detail is hidden in production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}

		var se *services.Error
		if errors.As(err, &se) {
			body := fiber.Map{"success": false, "message": se.Message}
			if len(se.Fields) > 0 {
				body["errors"] = se.Fields
			}
			return c.Status(statusFor(err)).JSON(body)
		}

		log.Printf("❌ %s %s: %v", c.Method(), c.Path(), err)
		body := fiber.Map{"success": false, "message": "Server Error"}
		if !production {
			body["error"] = err.Error()
			body["stack"] = string(debug.Stack())
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
