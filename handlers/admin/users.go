package admin

import (
	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserAdmin struct {
	Users *services.UserService
}

// ListUsers returns all users with pagination
// GET /api/admin/users?page=&limit=&search=
func (h *UserAdmin) ListUsers(c *fiber.Ctx) error {
	page, err := h.Users.List(c.UserContext(), c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"users":   page.Users,
		"total":   page.Total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

// SetRole changes a user's role
// PUT /api/admin/users/:id/role
func (h *UserAdmin) SetRole(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := h.Users.SetRole(c.UserContext(), middleware.CurrentUser(c), id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}
