package setuptoken

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists setup tokens keyed by their digest.
type Repository interface {
	Create(ctx context.Context, t Token) error
	FindByHash(ctx context.Context, hash string) (Token, error)
	// Consume atomically flips the consumed flag from false to true. Under
	// concurrent calls for the same token at most one caller succeeds; the
	// rest receive ErrAlreadyConsumed.
	Consume(ctx context.Context, hash string, now time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed token repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new token row.
func (r *PostgresRepository) Create(ctx context.Context, t Token) error {
	_, err := r.db.Exec(ctx, `INSERT INTO setup_tokens (token_hash, applicant_id, issued_at, expires_at, consumed)
        VALUES ($1, $2, $3, $4, $5)`,
		t.Hash, t.ApplicantID, t.IssuedAt.UTC(), t.ExpiresAt.UTC(), t.Consumed)
	return err
}

// FindByHash fetches a token by its digest.
func (r *PostgresRepository) FindByHash(ctx context.Context, hash string) (Token, error) {
	row := r.db.QueryRow(ctx, `SELECT token_hash, applicant_id, issued_at, expires_at, consumed
        FROM setup_tokens WHERE token_hash = $1`, hash)
	var t Token
	if err := row.Scan(&t.Hash, &t.ApplicantID, &t.IssuedAt, &t.ExpiresAt, &t.Consumed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return t, nil
}

// Consume performs the single-use transition with a guarded UPDATE so the
// database arbitrates concurrent redemptions.
func (r *PostgresRepository) Consume(ctx context.Context, hash string, now time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE setup_tokens SET consumed = TRUE
        WHERE token_hash = $1 AND consumed = FALSE AND expires_at > $2`,
		hash, now.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	t, err := r.FindByHash(ctx, hash)
	if err != nil {
		return err
	}
	if t.Consumed {
		return ErrAlreadyConsumed
	}
	return ErrExpired
}
