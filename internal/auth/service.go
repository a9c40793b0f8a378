package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/skill-bridge/skill_bridge/internal/identity"
)

// ErrInvalidCredentials is the single error returned for every authentication
// failure. Unknown email, wrong password, and role mismatch are deliberately
// indistinguishable so callers cannot probe which accounts or roles exist.
var ErrInvalidCredentials = errors.New("invalid email, password, or role")

// Session is a time-bounded, role-scoped proof of authentication.
type Session struct {
	Token      string
	User       identity.Credential
	ExpiresAt  time.Time
	RedirectTo string
}

// Service authenticates credentials and issues sessions.
type Service struct {
	creds  identity.Repository
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewService creates an authentication service.
func NewService(creds identity.Repository, secret []byte, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{creds: creds, secret: secret, ttl: ttl, logger: logger}
}

// Authenticate verifies email, password, and claimed role, and issues a
// session bound to the credential's stored role. Internal logs record the
// failing step; the caller only ever sees ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, candidate, claimedRole string) (Session, error) {
	cred, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			s.logFailure("unknown email")
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(candidate)); err != nil {
		s.logFailure("password mismatch")
		return Session{}, ErrInvalidCredentials
	}

	role, ok := identity.ParseRole(claimedRole)
	if !ok || role != cred.Role {
		s.logFailure("role mismatch")
		return Session{}, ErrInvalidCredentials
	}

	token, exp, err := SignSession(cred, s.secret, s.ttl)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:      token,
		User:       cred,
		ExpiresAt:  exp,
		RedirectTo: cred.Role.Dashboard(),
	}, nil
}

func (s *Service) logFailure(cause string) {
	if s.logger != nil {
		s.logger.Info("login rejected", "cause", cause)
	}
}
