package admin

import "context"

// Service defines the interface for admin account business logic.
type Service interface {
	RegisterAdmin(ctx context.Context, email, password string) (*Admin, error)
	GetAdmin(ctx context.Context, id string) (*Admin, error)
	// EnsureAdmin creates the account unless one with this email exists. It
	// reports whether it created it.
	EnsureAdmin(ctx context.Context, email, password string) (bool, error)
}
