package auth

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Token is a signed admin session.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Token, error)
	// Verify checks a token and returns the admin ID it was issued to.
	Verify(token string) (string, error)
	// RequireAdmin rejects requests without a valid Bearer token.
	RequireAdmin(next http.Handler) http.Handler
}
