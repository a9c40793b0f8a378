package identity

import (
	"context"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

// NewMemoryRepository builds an in-memory credential store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{creds: make(map[string]Credential)}
}

func (r *memoryRepository) Create(_ context.Context, cred Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(cred.Email)
	if _, exists := r.creds[key]; exists {
		return ErrEmailTaken
	}
	cred.Email = key
	r.creds[key] = cred
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[strings.ToLower(email)]
	if !ok {
		return Credential{}, ErrNotFound
	}
	return cred, nil
}
