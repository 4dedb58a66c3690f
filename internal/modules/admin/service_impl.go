package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type service struct {
	repo Repository
}

// NewService creates a new admin service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// NormalizeEmail is how emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) RegisterAdmin(ctx context.Context, email, password string) (*Admin, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return nil, ErrInvalidAccount
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &Admin{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}

	return admin, nil
}

func (s *service) GetAdmin(ctx context.Context, id string) (*Admin, error) {
	return s.repo.GetAdminByID(ctx, id)
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.repo.GetAdminByEmail(ctx, NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrAdminNotFound) {
		return false, err
	}
	if _, err := s.RegisterAdmin(ctx, email, password); err != nil {
		return false, err
	}
	return true, nil
}
