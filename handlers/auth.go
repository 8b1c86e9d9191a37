// handlers/auth.go - Registration, login and profile
package handlers

import (
	"log"

	"github.com/Sarthaklad1034/HackMatrix/middleware"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Users *services.UserService
}

type authResponse struct {
	Success bool `json:"success"`
	*services.AuthResult
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.Users.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	log.Printf("👤 Registered %s (%s)", res.Email, res.Role)
	return c.Status(fiber.StatusCreated).JSON(authResponse{Success: true, AuthResult: res})
}

// Login exchanges credentials for a token
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.Users.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(authResponse{Success: true, AuthResult: res})
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, middleware.CurrentUser(c))
}

// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.Users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, user)
}

// SearchUsers finds invitees by name or email
// GET /api/users/search?q=
func (h *AuthHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}
	return respondList(c, users, len(users))
}
