package applicant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skill-bridge/skill_bridge/internal/identity"
)

var (
	// ErrNotFound indicates no applicant exists for the given id.
	ErrNotFound = errors.New("applicant not found")
	// ErrEmailTaken indicates an application already exists for the email.
	ErrEmailTaken = errors.New("application already exists for email")
	// ErrNotPending indicates an approval was attempted on a non-pending application.
	ErrNotPending = errors.New("application is not pending")
)

// Repository persists pending applicants.
type Repository interface {
	Create(ctx context.Context, a Applicant) error
	FindByID(ctx context.Context, id string) (Applicant, error)
	MarkApproved(ctx context.Context, id, approverID string, at time.Time) error
	MarkProvisioned(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed applicant repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new pending application.
func (r *PostgresRepository) Create(ctx context.Context, a Applicant) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO pending_applicants (id, full_name, email, role, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, a.FullName, strings.ToLower(a.Email), string(a.Role), string(a.Status), a.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// FindByID fetches an applicant by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Applicant, error) {
	applicantID, err := uuid.Parse(id)
	if err != nil {
		return Applicant{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, full_name, email, role, status, approved_by, approved_at, created_at
        FROM pending_applicants WHERE id = $1`, applicantID)
	var (
		rowID      uuid.UUID
		role       string
		status     string
		approvedBy *uuid.UUID
		approvedAt *time.Time
		createdAt  time.Time
		a          Applicant
	)
	if err := row.Scan(&rowID, &a.FullName, &a.Email, &role, &status, &approvedBy, &approvedAt, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Applicant{}, ErrNotFound
		}
		return Applicant{}, err
	}
	a.ID = rowID.String()
	a.Role = identity.Role(role)
	a.Status = Status(status)
	if approvedBy != nil {
		a.ApprovedBy = approvedBy.String()
	}
	a.ApprovedAt = approvedAt
	a.CreatedAt = createdAt.UTC()
	return a, nil
}

// MarkApproved flips a pending application to approved and records the approver.
func (r *PostgresRepository) MarkApproved(ctx context.Context, id, approverID string, at time.Time) error {
	applicantID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE pending_applicants
        SET status = $1, approved_by = $2, approved_at = $3
        WHERE id = $4 AND status = $5`,
		string(StatusApproved), approverID, at.UTC(), applicantID, string(StatusPending))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrNotPending
	}
	return nil
}

// MarkProvisioned records that a credential was created for the applicant.
func (r *PostgresRepository) MarkProvisioned(ctx context.Context, id string) error {
	applicantID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE pending_applicants SET status = $1 WHERE id = $2`,
		string(StatusProvisioned), applicantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
