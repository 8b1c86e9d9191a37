// handlers/health.go
package handlers

import (
	"github.com/Sarthaklad1034/HackMatrix/database"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Health reports liveness and whether the database answers.
// GET /health
func Health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "up"
		if err := database.Ping(db); err != nil {
			status = "down"
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": status,
		})
	}
}
