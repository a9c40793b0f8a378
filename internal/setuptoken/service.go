package setuptoken

import (
	"context"
	"time"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/identity"
)

// ApplicantView is the identity a valid token resolves to. It is the only
// applicant data exposed to an unauthenticated setup flow.
type ApplicantView struct {
	ApplicantID string
	FullName    string
	Email       string
	Role        identity.Role
}

// Service issues and redeems setup tokens.
type Service struct {
	repo       Repository
	applicants applicant.Repository
}

// NewService creates a token service.
func NewService(repo Repository, applicants applicant.Repository) *Service {
	return &Service{repo: repo, applicants: applicants}
}

// Issue mints a token for the applicant and persists its digest. The raw
// value is returned exactly once, for out-of-band delivery.
func (s *Service) Issue(ctx context.Context, applicantID string, ttl time.Duration) (string, Token, error) {
	raw, err := NewValue()
	if err != nil {
		return "", Token{}, err
	}

	now := time.Now().UTC()
	t := Token{
		Hash:        HashValue(raw),
		ApplicantID: applicantID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return "", Token{}, err
	}

	return raw, t, nil
}

// Resolve exchanges a raw token value for the applicant it authorizes without
// consuming it.
func (s *Service) Resolve(ctx context.Context, raw string) (ApplicantView, error) {
	t, err := s.repo.FindByHash(ctx, HashValue(raw))
	if err != nil {
		return ApplicantView{}, err
	}
	if t.Consumed {
		return ApplicantView{}, ErrAlreadyConsumed
	}
	if !time.Now().Before(t.ExpiresAt) {
		return ApplicantView{}, ErrExpired
	}

	a, err := s.applicants.FindByID(ctx, t.ApplicantID)
	if err != nil {
		return ApplicantView{}, err
	}

	return ApplicantView{ApplicantID: a.ID, FullName: a.FullName, Email: a.Email, Role: a.Role}, nil
}

// Consume redeems the token. At most one concurrent caller succeeds.
func (s *Service) Consume(ctx context.Context, raw string) error {
	return s.repo.Consume(ctx, HashValue(raw), time.Now().UTC())
}
