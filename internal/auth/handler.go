package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skill-bridge/skill_bridge/internal/password"
	"github.com/skill-bridge/skill_bridge/internal/provisioning"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

const (
	invalidLinkMessage = "invalid or expired setup link"
	alreadySetUpMsg    = "an account already exists for this invitation, log in instead"
	unavailableMessage = "service temporarily unavailable, please retry"
)

// Handler exposes the setup-token and login endpoints.
type Handler struct {
	provisioner *provisioning.Service
	svc         *Service
	logger      *slog.Logger
}

// NewHandler wires the auth handler.
func NewHandler(provisioner *provisioning.Service, svc *Service, logger *slog.Logger) *Handler {
	return &Handler{provisioner: provisioner, svc: svc, logger: logger}
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

type verifyTokenResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// VerifySetupToken exchanges a setup token for the applicant identity it was
// issued to. All token failures collapse into one message here so the
// endpoint cannot be used to probe which links exist.
func (h *Handler) VerifySetupToken(c *fiber.Ctx) error {
	var req verifyTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}

	view, err := h.provisioner.Resolve(c.UserContext(), req.Token)
	if err != nil {
		if isTokenError(err) {
			return fiber.NewError(http.StatusGone, invalidLinkMessage)
		}
		return h.unavailable(c, "verify setup token", err)
	}

	return c.Status(http.StatusOK).JSON(verifyTokenResponse{FullName: view.FullName, Email: view.Email})
}

type createAccountRequest struct {
	Token        string `json:"token"`
	Password     string `json:"password"`
	Confirmation string `json:"confirmation"`
}

// CreateAccountFromToken redeems a setup token and creates the credential.
func (h *Handler) CreateAccountFromToken(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Token == "" {
		return fiber.NewError(http.StatusBadRequest, "token is required")
	}

	cred, err := h.provisioner.Provision(c.UserContext(), req.Token, req.Password, req.Confirmation)
	switch {
	case err == nil:
	case password.IsViolation(err):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, setuptoken.ErrAlreadyConsumed), errors.Is(err, provisioning.ErrAlreadyProvisioned):
		return fiber.NewError(http.StatusConflict, alreadySetUpMsg)
	case errors.Is(err, setuptoken.ErrNotFound), errors.Is(err, setuptoken.ErrExpired):
		return fiber.NewError(http.StatusGone, invalidLinkMessage)
	default:
		return h.unavailable(c, "create account from token", err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"email": cred.Email,
		"role":  string(cred.Role),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token      string    `json:"token"`
	User       userView  `json:"user"`
	ExpiresAt  time.Time `json:"expires_at"`
	RedirectTo string    `json:"redirect_to"`
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Login authenticates email+password+role and returns a session credential.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	session, err := h.svc.Authenticate(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return h.unavailable(c, "login", err)
	}

	return c.Status(http.StatusOK).JSON(loginResponse{
		Token: session.Token,
		User: userView{
			ID:       session.User.ID,
			Email:    session.User.Email,
			FullName: session.User.FullName,
			Role:     string(session.User.Role),
		},
		ExpiresAt:  session.ExpiresAt,
		RedirectTo: session.RedirectTo,
	})
}

func (h *Handler) unavailable(c *fiber.Ctx, op string, err error) error {
	if h.logger != nil {
		h.logger.Error(op+" failed", "error", err)
	}
	return fiber.NewError(http.StatusServiceUnavailable, unavailableMessage)
}

func isTokenError(err error) bool {
	return errors.Is(err, setuptoken.ErrNotFound) ||
		errors.Is(err, setuptoken.ErrExpired) ||
		errors.Is(err, setuptoken.ErrAlreadyConsumed)
}
