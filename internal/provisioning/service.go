package provisioning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/identity"
	"github.com/skill-bridge/skill_bridge/internal/notification"
	"github.com/skill-bridge/skill_bridge/internal/password"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

// SetupLinkFunc renders the out-of-band URL embedding a raw token value. The
// base URL comes from configuration; nothing in this package hardcodes one.
type SetupLinkFunc func(rawToken string) string

// Service manages the applicant lifecycle from submission to a provisioned
// credential.
type Service struct {
	applicants applicant.Repository
	tokens     *setuptoken.Service
	creds      identity.Repository
	finalizer  Finalizer
	notifier   notification.Notifier
	setupLink  SetupLinkFunc
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// NewService wires the provisioning service.
func NewService(applicants applicant.Repository, tokens *setuptoken.Service, creds identity.Repository,
	finalizer Finalizer, notifier notification.Notifier, setupLink SetupLinkFunc,
	tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		applicants: applicants,
		tokens:     tokens,
		creds:      creds,
		finalizer:  finalizer,
		notifier:   notifier,
		setupLink:  setupLink,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// Submit records a new application in the pending state. An unrecognized role
// defaults to student.
func (s *Service) Submit(ctx context.Context, fullName, email, role string) (applicant.Applicant, error) {
	parsed, ok := identity.ParseRole(role)
	if !ok {
		parsed = identity.RoleStudent
	}

	a := applicant.Applicant{
		ID:        uuid.New().String(),
		FullName:  fullName,
		Email:     email,
		Role:      parsed,
		Status:    applicant.StatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.applicants.Create(ctx, a); err != nil {
		return applicant.Applicant{}, err
	}

	return a, nil
}

// Approve flips a pending application to approved, issues a setup token, and
// hands the setup link to the notifier. Delivery failures are logged, not
// returned: the token is already issued and an operator can re-send it.
func (s *Service) Approve(ctx context.Context, applicantID, approverID string) error {
	if err := s.applicants.MarkApproved(ctx, applicantID, approverID, time.Now().UTC()); err != nil {
		return err
	}

	a, err := s.applicants.FindByID(ctx, applicantID)
	if err != nil {
		return err
	}

	raw, _, err := s.tokens.Issue(ctx, a.ID, s.tokenTTL)
	if err != nil {
		return err
	}

	msg := notification.SetupInvite(a.Email, a.FullName, s.setupLink(raw))
	if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
		s.logger.Warn("setup invite delivery failed", "applicant_id", a.ID, "error", err)
	}

	return nil
}

// Resolve exchanges a raw setup token for the applicant it authorizes.
func (s *Service) Resolve(ctx context.Context, rawToken string) (setuptoken.ApplicantView, error) {
	return s.tokens.Resolve(ctx, rawToken)
}

// Provision redeems a setup token and materializes a credential. The token is
// resolved, the password validated against the policy, and the terminal state
// changes are committed atomically through the finalizer.
func (s *Service) Provision(ctx context.Context, rawToken, candidate, confirmation string) (identity.Credential, error) {
	view, err := s.tokens.Resolve(ctx, rawToken)
	if err != nil {
		return identity.Credential{}, err
	}

	if err := password.Validate(candidate, confirmation); err != nil {
		return identity.Credential{}, err
	}

	if _, err := s.creds.FindByEmail(ctx, view.Email); err == nil {
		return identity.Credential{}, ErrAlreadyProvisioned
	} else if !errors.Is(err, identity.ErrNotFound) {
		return identity.Credential{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(candidate), bcrypt.DefaultCost)
	if err != nil {
		return identity.Credential{}, err
	}

	cred := identity.Credential{
		ID:           uuid.New().String(),
		Email:        view.Email,
		FullName:     view.FullName,
		PasswordHash: hash,
		Role:         view.Role,
		CreatedAt:    time.Now().UTC(),
	}

	input := FinalizeInput{
		Credential:  cred,
		TokenHash:   setuptoken.HashValue(rawToken),
		ApplicantID: view.ApplicantID,
	}
	if err := s.finalizer.Finalize(ctx, input); err != nil {
		return identity.Credential{}, err
	}

	if s.logger != nil {
		s.logger.Info("account provisioned", "applicant_id", view.ApplicantID, "role", string(cred.Role))
	}

	return cred, nil
}
