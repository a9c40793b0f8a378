package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skill-bridge/skill_bridge/internal/auth"
)

// RegisterAuthRoutes wires the setup-token and login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/verify-setup-token", h.VerifySetupToken)
	group.Post("/create-account-from-token", h.CreateAccountFromToken)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}
