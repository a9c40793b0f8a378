package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupRateLimitApp(t *testing.T, maxPerMin int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Post("/login", LoginRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func attemptLogin(t *testing.T, app *fiber.App, email string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"email":"`+email+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitBlocksAfterThreshold(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 3)
	defer cleanup()

	for i := 0; i < 3; i++ {
		if status := attemptLogin(t, app, "x@x.com"); status != fiber.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := attemptLogin(t, app, "x@x.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 after threshold, got %d", status)
	}
}

func TestLoginRateLimitKeysByEmail(t *testing.T) {
	app, cleanup := setupRateLimitApp(t, 1)
	defer cleanup()

	if status := attemptLogin(t, app, "a@x.com"); status != fiber.StatusOK {
		t.Fatalf("first email: expected 200, got %d", status)
	}
	if status := attemptLogin(t, app, "b@x.com"); status != fiber.StatusOK {
		t.Fatalf("second email should have its own budget, got %d", status)
	}
	if status := attemptLogin(t, app, "a@x.com"); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 for exhausted email, got %d", status)
	}
}

func TestLoginRateLimitNoopWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 5; i++ {
		if status := attemptLogin(t, app, "x@x.com"); status != fiber.StatusOK {
			t.Fatalf("expected pass-through without redis, got %d", status)
		}
	}
}
