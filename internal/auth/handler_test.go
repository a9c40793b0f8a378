package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/identity"
	"github.com/skill-bridge/skill_bridge/internal/logging"
	"github.com/skill-bridge/skill_bridge/internal/notification"
	"github.com/skill-bridge/skill_bridge/internal/provisioning"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

type linkCapture struct {
	raws []string
}

func (l *linkCapture) Send(_ context.Context, _ notification.Message) error { return nil }

func newTestApp(t *testing.T) (*fiber.App, *provisioning.Service, *linkCapture) {
	t.Helper()
	applicants := applicant.NewMemoryRepository()
	tokenRepo := setuptoken.NewMemoryRepository()
	tokens := setuptoken.NewService(tokenRepo, applicants)
	creds := identity.NewMemoryRepository()
	finalizer := provisioning.NewMemoryFinalizer(tokenRepo, creds, applicants)
	capture := &linkCapture{}

	link := func(raw string) string {
		capture.raws = append(capture.raws, raw)
		return "https://portal.test/setup?token=" + raw
	}
	provisionSvc := provisioning.NewService(applicants, tokens, creds, finalizer, capture, link, time.Hour, logging.Discard())
	authSvc := NewService(creds, testSecret, time.Hour, logging.Discard())
	handler := NewHandler(provisionSvc, authSvc, logging.Discard())

	app := fiber.New()
	group := app.Group("/auth")
	group.Post("/verify-setup-token", handler.VerifySetupToken)
	group.Post("/create-account-from-token", handler.CreateAccountFromToken)
	group.Post("/login", handler.Login)

	return app, provisionSvc, capture
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func approvedRawToken(t *testing.T, svc *provisioning.Service, capture *linkCapture, fullName, email, role string) string {
	t.Helper()
	ctx := context.Background()
	a, err := svc.Submit(ctx, fullName, email, role)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.Approve(ctx, a.ID, "admin-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return capture.raws[len(capture.raws)-1]
}

func TestSetupFlowOverHTTP(t *testing.T) {
	app, svc, capture := newTestApp(t)
	raw := approvedRawToken(t, svc, capture, "A", "a@x.com", "student")

	resp := postJSON(t, app, "/auth/verify-setup-token", fiber.Map{"token": raw})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", resp.StatusCode)
	}
	var view struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	resp.Body.Close()
	if view.Email != "a@x.com" || view.FullName != "A" {
		t.Fatalf("unexpected view: %+v", view)
	}

	resp = postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Abcd123!", "confirmation": "Abcd123!",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create account: expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, app, "/auth/login", fiber.Map{
		"email": "a@x.com", "password": "Abcd123!", "role": "student",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	var login struct {
		Token      string `json:"token"`
		RedirectTo string `json:"redirect_to"`
		User       struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	resp.Body.Close()
	if login.User.Role != "student" || login.RedirectTo != "/student/dashboard" {
		t.Fatalf("unexpected login response: %+v", login)
	}

	claims, err := ParseSession(login.Token, testSecret)
	if err != nil {
		t.Fatalf("parse issued session: %v", err)
	}
	if claims.Role != "student" {
		t.Fatalf("session role claim %q does not match credential role", claims.Role)
	}
}

func TestVerifyMergesTokenFailures(t *testing.T) {
	app, svc, capture := newTestApp(t)
	raw := approvedRawToken(t, svc, capture, "B", "b@x.com", "student")

	// Unknown token and consumed token must produce identical responses.
	unknown := postJSON(t, app, "/auth/verify-setup-token", fiber.Map{"token": "bogus"})
	if unknown.StatusCode != http.StatusGone {
		t.Fatalf("unknown token: expected 410, got %d", unknown.StatusCode)
	}
	unknown.Body.Close()

	resp := postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Abcd123!", "confirmation": "Abcd123!",
	})
	resp.Body.Close()

	consumed := postJSON(t, app, "/auth/verify-setup-token", fiber.Map{"token": raw})
	if consumed.StatusCode != http.StatusGone {
		t.Fatalf("consumed token: expected 410, got %d", consumed.StatusCode)
	}
	consumed.Body.Close()
}

func TestCreateAccountPolicyViolation(t *testing.T) {
	app, svc, capture := newTestApp(t)
	raw := approvedRawToken(t, svc, capture, "C", "c@x.com", "student")

	resp := postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Weak1", "confirmation": "Weak1",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The token survives a policy failure.
	resp = postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Str0ng!pwd", "confirmation": "Str0ng!pwd",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 after fixing password, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Replaying the consumed token reports the account as already set up.
	resp = postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Str0ng!pwd", "confirmation": "Str0ng!pwd",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on replay, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLoginFailuresShareOneResponse(t *testing.T) {
	app, svc, capture := newTestApp(t)
	raw := approvedRawToken(t, svc, capture, "D", "d@x.com", "recruiter")
	resp := postJSON(t, app, "/auth/create-account-from-token", fiber.Map{
		"token": raw, "password": "Abcd123!", "confirmation": "Abcd123!",
	})
	resp.Body.Close()

	attempts := []fiber.Map{
		{"email": "d@x.com", "password": "Wrong123!", "role": "recruiter"},
		{"email": "d@x.com", "password": "Abcd123!", "role": "admin"},
		{"email": "ghost@x.com", "password": "Abcd123!", "role": "recruiter"},
	}
	var bodies []string
	for _, attempt := range attempts {
		resp := postJSON(t, app, "/auth/login", attempt)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %v, got %d", attempt, resp.StatusCode)
		}
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			t.Fatalf("read body: %v", err)
		}
		resp.Body.Close()
		bodies = append(bodies, buf.String())
	}
	for _, body := range bodies[1:] {
		if body != bodies[0] {
			t.Fatalf("login failure responses differ: %q vs %q", bodies[0], body)
		}
	}
}
