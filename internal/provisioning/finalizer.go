// Package provisioning turns approved applicants into credentialed users: it
// owns application intake, approval with token issuance, and the token →
// account exchange.
package provisioning

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/identity"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

// ErrAlreadyProvisioned indicates a credential already exists for the
// applicant's email; the caller should log in instead.
var ErrAlreadyProvisioned = errors.New("account already provisioned")

// FinalizeInput carries the state changes that must land together when a
// provisioning attempt commits.
type FinalizeInput struct {
	Credential  identity.Credential
	TokenHash   string
	ApplicantID string
}

// Finalizer applies the terminal provisioning steps atomically: consume the
// token, create the credential, and mark the applicant provisioned. Either
// all three become durable or none do, so a crash can never burn a token
// without a credential to show for it.
type Finalizer interface {
	Finalize(ctx context.Context, input FinalizeInput) error
}

// MemoryFinalizer composes the in-memory repositories under a single lock.
type MemoryFinalizer struct {
	mu         sync.Mutex
	tokens     setuptoken.Repository
	creds      identity.Repository
	applicants applicant.Repository
}

// NewMemoryFinalizer builds a finalizer over in-memory stores for testing.
func NewMemoryFinalizer(tokens setuptoken.Repository, creds identity.Repository, applicants applicant.Repository) *MemoryFinalizer {
	return &MemoryFinalizer{tokens: tokens, creds: creds, applicants: applicants}
}

// Finalize consumes the token, creates the credential, and flips the
// applicant, rolling the token back if the credential insert loses a race.
func (f *MemoryFinalizer) Finalize(ctx context.Context, input FinalizeInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.tokens.Consume(ctx, input.TokenHash, time.Now().UTC()); err != nil {
		return err
	}
	if err := f.creds.Create(ctx, input.Credential); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return ErrAlreadyProvisioned
		}
		return err
	}
	return f.applicants.MarkProvisioned(ctx, input.ApplicantID)
}
