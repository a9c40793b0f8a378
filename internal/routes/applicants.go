package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/middleware"
	"github.com/skill-bridge/skill_bridge/internal/provisioning"
)

// RegisterApplicantRoutes wires the public application intake endpoint.
func RegisterApplicantRoutes(r fiber.Router, svc *provisioning.Service, logger *slog.Logger) {
	r.Post("/applicants", func(c *fiber.Ctx) error {
		var req struct {
			FullName string `json:"full_name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.FullName == "" || req.Email == "" {
			return fiber.NewError(http.StatusBadRequest, "full_name and email are required")
		}

		a, err := svc.Submit(c.UserContext(), req.FullName, req.Email, req.Role)
		if err != nil {
			if errors.Is(err, applicant.ErrEmailTaken) {
				return fiber.NewError(http.StatusConflict, "an application already exists for this email")
			}
			return fiber.NewError(http.StatusServiceUnavailable, "could not record application, please retry")
		}

		if logger != nil {
			logger.Info("application submitted", slog.String("application_id", a.ID), slog.String("role", string(a.Role)))
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"application_id": a.ID,
			"status":         string(a.Status),
		})
	})
}

// RegisterAdminRoutes wires operator endpoints; callers must already hold an
// admin session.
func RegisterAdminRoutes(r fiber.Router, svc *provisioning.Service, logger *slog.Logger) {
	r.Post("/applicants/:id/approve", func(c *fiber.Ctx) error {
		applicantID := c.Params("id")
		approverID, _ := c.Locals(middleware.LocalUserID).(string)

		err := svc.Approve(c.UserContext(), applicantID, approverID)
		if err != nil {
			switch {
			case errors.Is(err, applicant.ErrNotFound):
				return fiber.NewError(http.StatusNotFound, "application not found")
			case errors.Is(err, applicant.ErrNotPending):
				return fiber.NewError(http.StatusConflict, "application is not pending")
			default:
				return fiber.NewError(http.StatusServiceUnavailable, "could not approve application, please retry")
			}
		}

		if logger != nil {
			logger.Info("application approved",
				slog.String("application_id", applicantID),
				slog.String("approved_by", approverID),
			)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":   "approved",
			"delivery": "queued",
		})
	})
}
