package applicant

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu         sync.RWMutex
	applicants map[string]Applicant
}

// NewMemoryRepository builds an in-memory applicant store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{applicants: make(map[string]Applicant)}
}

func (r *memoryRepository) Create(_ context.Context, a Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.applicants {
		if strings.EqualFold(existing.Email, a.Email) {
			return ErrEmailTaken
		}
	}
	a.Email = strings.ToLower(a.Email)
	r.applicants[a.ID] = a
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Applicant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.applicants[id]
	if !ok {
		return Applicant{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) MarkApproved(_ context.Context, id, approverID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applicants[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusPending {
		return ErrNotPending
	}
	approvedAt := at.UTC()
	a.Status = StatusApproved
	a.ApprovedBy = approverID
	a.ApprovedAt = &approvedAt
	r.applicants[id] = a
	return nil
}

func (r *memoryRepository) MarkProvisioned(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applicants[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = StatusProvisioned
	r.applicants[id] = a
	return nil
}
