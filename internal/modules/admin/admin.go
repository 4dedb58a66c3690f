package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAdminNotFound  = errors.New("admin not found")
	ErrEmailTaken     = errors.New("an admin with this email already exists")
	ErrInvalidAccount = errors.New("email and a password of at least 8 characters are required")
)

// Admin is an account allowed to manage the directory.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines the interface for admin account storage.
type Repository interface {
	CreateAdmin(ctx context.Context, admin *Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*Admin, error)
	GetAdminByID(ctx context.Context, id string) (*Admin, error)
}
