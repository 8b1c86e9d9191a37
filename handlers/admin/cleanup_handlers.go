package admin

import (
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

type CleanupAdmin struct {
	Cleanup *services.CleanupService
}

// POST /api/admin/cleanup
func (h *CleanupAdmin) ManualCleanup(c *fiber.Ctx) error {
	res, err := h.Cleanup.RunOnce(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Cleanup completed", "data": res})
}

// GET /api/admin/cleanup/stats
func (h *CleanupAdmin) CleanupStats(c *fiber.Ctx) error {
	stats, err := h.Cleanup.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}
