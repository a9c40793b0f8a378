package provisioning

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

	"github.com/skill-bridge/skill_bridge/internal/applicant"
	"github.com/skill-bridge/skill_bridge/internal/setuptoken"
)

// PostgresFinalizer commits the terminal provisioning steps in one transaction.
type PostgresFinalizer struct {
	db *pgxpool.Pool
}

// NewPostgresFinalizer constructs a Postgres-backed finalizer.
func NewPostgresFinalizer(db *pgxpool.Pool) *PostgresFinalizer {
	return &PostgresFinalizer{db: db}
}

// Finalize runs the guarded token consumption, credential insert, and
// applicant status flip inside a single transaction. The guarded UPDATE makes
// the database arbitrate concurrent redemptions of the same token.
func (f *PostgresFinalizer) Finalize(ctx context.Context, input FinalizeInput) error {
	credID, err := uuid.Parse(input.Credential.ID)
	if err != nil {
		return err
	}
	applicantID, err := uuid.Parse(input.ApplicantID)
	if err != nil {
		return err
	}

	tx, err := f.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	now := time.Now().UTC()
	cmd, err := tx.Exec(ctx, `UPDATE setup_tokens SET consumed = TRUE
        WHERE token_hash = $1 AND consumed = FALSE AND expires_at > $2`,
		input.TokenHash, now)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var consumed bool
		var expiresAt time.Time
		row := tx.QueryRow(ctx, `SELECT consumed, expires_at FROM setup_tokens WHERE token_hash = $1`, input.TokenHash)
		if err := row.Scan(&consumed, &expiresAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return setuptoken.ErrNotFound
			}
			return err
		}
		if consumed {
			return setuptoken.ErrAlreadyConsumed
		}
		return setuptoken.ErrExpired
	}

	_, err = tx.Exec(ctx, `INSERT INTO user_credentials (id, email, full_name, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		credID, strings.ToLower(input.Credential.Email), input.Credential.FullName,
		input.Credential.PasswordHash, string(input.Credential.Role), input.Credential.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyProvisioned
		}
		return err
	}

	cmd, err = tx.Exec(ctx, `UPDATE pending_applicants SET status = $1 WHERE id = $2`,
		string(applicant.StatusProvisioned), applicantID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return applicant.ErrNotFound
	}

	return tx.Commit(ctx)
}
