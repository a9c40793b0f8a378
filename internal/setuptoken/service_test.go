package setuptoken

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/identity"
)

func newTestService(t *testing.T) (*Service, applicant.Applicant) {
	t.Helper()
	applicants := applicant.NewMemoryRepository()
	a := applicant.Applicant{
		ID:        uuid.NewString(),
		FullName:  "Sam Okafor",
		Email:     "s@x.com",
		Role:      identity.RoleStudent,
		Status:    applicant.StatusApproved,
		CreatedAt: time.Now().UTC(),
	}
	if err := applicants.Create(context.Background(), a); err != nil {
		t.Fatalf("create applicant: %v", err)
	}
	return NewService(NewMemoryRepository(), applicants), a
}

func TestIssueAndResolve(t *testing.T) {
	svc, a := newTestService(t)
	ctx := context.Background()

	raw, tok, err := svc.Issue(ctx, a.ID, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if raw == "" || tok.Hash == HashValue("") {
		t.Fatal("expected a non-empty raw value")
	}
	if tok.Hash != HashValue(raw) {
		t.Fatal("persisted hash does not match raw value digest")
	}

	view, err := svc.Resolve(ctx, raw)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Email != "s@x.com" || view.FullName != "Sam Okafor" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestResolveUnknownValue(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Resolve(context.Background(), "never-issued"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected %v, got %v", ErrNotFound, err)
	}
}

func TestExpiredTokenNeverUsable(t *testing.T) {
	applicants := applicant.NewMemoryRepository()
	repo := NewMemoryRepository()
	svc := NewService(repo, applicants)
	ctx := context.Background()

	a := applicant.Applicant{ID: uuid.NewString(), FullName: "A", Email: "a@x.com", Role: identity.RoleStudent, Status: applicant.StatusApproved, CreatedAt: time.Now().UTC()}
	if err := applicants.Create(ctx, a); err != nil {
		t.Fatalf("create applicant: %v", err)
	}

	raw, err := NewValue()
	if err != nil {
		t.Fatalf("new value: %v", err)
	}
	past := time.Now().UTC().Add(-time.Minute)
	if err := repo.Create(ctx, Token{Hash: HashValue(raw), ApplicantID: a.ID, IssuedAt: past.Add(-time.Hour), ExpiresAt: past}); err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := svc.Resolve(ctx, raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("resolve: expected %v, got %v", ErrExpired, err)
	}
	if err := svc.Consume(ctx, raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("consume: expected %v, got %v", ErrExpired, err)
	}
}

func TestConsumedTokenStaysConsumed(t *testing.T) {
	svc, a := newTestService(t)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, a.ID, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := svc.Consume(ctx, raw); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := svc.Consume(ctx, raw); !errors.Is(err, ErrAlreadyConsumed) {
		t.Fatalf("second consume: expected %v, got %v", ErrAlreadyConsumed, err)
	}
	if _, err := svc.Resolve(ctx, raw); !errors.Is(err, ErrAlreadyConsumed) {
		t.Fatalf("resolve after consume: expected %v, got %v", ErrAlreadyConsumed, err)
	}
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	svc, a := newTestService(t)
	ctx := context.Background()

	raw, _, err := svc.Issue(ctx, a.ID, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const callers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		consumed  int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := svc.Consume(ctx, raw)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrAlreadyConsumed):
				consumed++
			default:
				t.Errorf("unexpected consume error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one winner, got %d", successes)
	}
	if consumed != callers-1 {
		t.Fatalf("expected %d losers, got %d", callers-1, consumed)
	}
}
