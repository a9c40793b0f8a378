package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/auth"
	"github.com/skill-bridge/skill_bridge/internal/config"
	"github.com/skill-bridge/skill_bridge/internal/identity"
	"github.com/skill-bridge/skill_bridge/internal/middleware"
	"github.com/skill-bridge/skill_bridge/internal/notification"
	"github.com/skill-bridge/skill_bridge/internal/provisioning"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories: Postgres in deployment, in-memory twins for local dev.
	var (
		applicantRepo applicant.Repository
		tokenRepo     setuptoken.Repository
		credRepo      identity.Repository
		finalizer     provisioning.Finalizer
	)
	if d.DB != nil {
		applicantRepo = applicant.NewPostgresRepository(d.DB)
		tokenRepo = setuptoken.NewPostgresRepository(d.DB)
		credRepo = identity.NewPostgresRepository(d.DB)
		finalizer = provisioning.NewPostgresFinalizer(d.DB)
	} else {
		applicantRepo = applicant.NewMemoryRepository()
		tokenRepo = setuptoken.NewMemoryRepository()
		credRepo = identity.NewMemoryRepository()
		finalizer = provisioning.NewMemoryFinalizer(tokenRepo, credRepo, applicantRepo)
	}

	if err := identity.SeedAdmin(context.Background(), credRepo, d.Cfg.AdminEmail, d.Cfg.AdminPassword, "Portal Administrator"); err != nil {
		return fmt.Errorf("seed admin credential: %w", err)
	}

	var notifier notification.Notifier
	if d.Cfg.SMTPAddr != "" {
		notifier = notification.NewSMTPNotifier(d.Cfg.SMTPAddr, d.Cfg.SMTPFrom)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	// Services and handlers
	tokenSvc := setuptoken.NewService(tokenRepo, applicantRepo)
	provisionSvc := provisioning.NewService(applicantRepo, tokenSvc, credRepo, finalizer,
		notifier, d.Cfg.SetupLink, d.Cfg.SetupTokenTTL, d.Logger)
	authSvc := auth.NewService(credRepo, []byte(d.Cfg.JWTSecret), d.Cfg.SessionTTL, d.Logger)
	authHandler := auth.NewHandler(provisionSvc, authSvc, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterApplicantRoutes(api, provisionSvc, d.Logger)

	// Protected routes
	sessionmw := middleware.SessionAuth([]byte(d.Cfg.JWTSecret))
	protected := api.Group("", sessionmw)
	protected.Get("/me", func(c *fiber.Ctx) error {
		email, _ := c.Locals(middleware.LocalUserEmail).(string)
		if email == "" {
			return c.SendStatus(http.StatusUnauthorized)
		}
		cred, err := credRepo.FindByEmail(c.UserContext(), email)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "credential not found")
		}
		return c.JSON(fiber.Map{
			"id":         cred.ID,
			"email":      cred.Email,
			"full_name":  cred.FullName,
			"role":       string(cred.Role),
			"dashboard":  cred.Role.Dashboard(),
			"created_at": cred.CreatedAt,
		})
	})

	admin := protected.Group("", middleware.RequireRole(identity.RoleAdmin))
	RegisterAdminRoutes(admin, provisionSvc, d.Logger)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
