package identity

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
)

var (
	// ErrNotFound indicates no credential exists for the given key.
	ErrNotFound = errors.New("credential not found")
	// ErrEmailTaken indicates the email is already bound to a credential.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists user credentials.
type Repository interface {
	Create(ctx context.Context, cred Credential) error
	FindByEmail(ctx context.Context, email string) (Credential, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new credential. Email uniqueness is enforced by the store.
func (r *PostgresRepository) Create(ctx context.Context, cred Credential) error {
	id, err := uuid.Parse(cred.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO user_credentials (id, email, full_name, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		id, strings.ToLower(cred.Email), cred.FullName, cred.PasswordHash, string(cred.Role), cred.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail fetches a credential by email, case-insensitively.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, full_name, password_hash, role, created_at
        FROM user_credentials WHERE email = lower($1)`, email)
	var (
		id        uuid.UUID
		role      string
		createdAt time.Time
		cred      Credential
	)
	if err := row.Scan(&id, &cred.Email, &cred.FullName, &cred.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	cred.ID = id.String()
	cred.Role = Role(role)
	cred.CreatedAt = createdAt.UTC()
	return cred, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
