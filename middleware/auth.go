// middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/Sarthaklad1034/HackMatrix/models"
	"github.com/Sarthaklad1034/HackMatrix/services"
	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Auth requires a valid bearer token and stores the resolved user in the request locals.
func Auth(users Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return &services.Error{Kind: services.ErrUnauthorized, Message: "Not authorized, no token"}
		}
		user, err := users.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// RequireRoles allows the request only when the authenticated user holds one of roles.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return &services.Error{Kind: services.ErrUnauthorized, Message: "Not authorized"}
		}
		if !user.HasRole(roles...) {
			return &services.Error{
				Kind:    services.ErrForbidden,
				Message: "User role " + string(user.Role) + " is not authorized to access this route",
			}
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

// bearerToken reads the Authorization header. WebSocket clients cannot set headers,
// so a token query parameter is accepted on upgrade requests.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if strings.EqualFold(c.Get(fiber.HeaderUpgrade), "websocket") {
		return c.Query("token")
	}
	return ""
}
