package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const createAdminsTable = `
CREATE TABLE IF NOT EXISTS admins (
	id            UUID PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema creates the admins table when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createAdminsTable); err != nil {
		return fmt.Errorf("create admins table: %w", err)
	}
	return nil
}

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL admin repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateAdmin(ctx context.Context, admin *Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, admin.ID, admin.Email, admin.PasswordHash).
		Scan(&admin.CreatedAt, &admin.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func (r *postgresRepository) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	return scanAdmin(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresRepository) GetAdminByID(ctx context.Context, id string) (*Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAdminNotFound
	}
	return scanAdmin(r.db.QueryRowContext(ctx, query, parsedID))
}

func scanAdmin(row *sql.Row) (*Admin, error) {
	admin := &Admin{}
	err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return admin, nil
}
