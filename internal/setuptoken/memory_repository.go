package setuptoken

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryRepository builds an in-memory token store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{tokens: make(map[string]Token)}
}

func (r *memoryRepository) Create(_ context.Context, t Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.Hash] = t
	return nil
}

func (r *memoryRepository) FindByHash(_ context.Context, hash string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return Token{}, ErrNotFound
	}
	return t, nil
}

func (r *memoryRepository) Consume(_ context.Context, hash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[hash]
	if !ok {
		return ErrNotFound
	}
	if t.Consumed {
		return ErrAlreadyConsumed
	}
	if !now.Before(t.ExpiresAt) {
		return ErrExpired
	}
	t.Consumed = true
	r.tokens[hash] = t
	return nil
}
