package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/skill-bridge/skill_bridge/internal/auth"
	"github.com/skill-bridge/skill_bridge/internal/identity"
)

// Locals keys populated by SessionAuth.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserRole  = "user_role"
)

// SessionAuth validates bearer session tokens and exposes the verified
// subject and role to downstream handlers.
func SessionAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.ParseSession(tokenStr, secret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid session")
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserRole, claims.Role)
		return c.Next()
	}
}

// RequireRole gates a route group to sessions whose role claim is one of the
// allowed roles. Must run after SessionAuth.
func RequireRole(allowed ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalUserRole).(string)
		for _, want := range allowed {
			if role == string(want) {
				return c.Next()
			}
		}
		return fiber.NewError(http.StatusForbidden, "insufficient role")
	}
}
