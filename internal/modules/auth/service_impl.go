package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/promoled-directory/internal/modules/admin"
)

const issuer = "promoled-directory"

type service struct {
	adminRepo admin.Repository
	jwtKey    []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a new auth service signing HS256 tokens with secret.
func NewService(adminRepo admin.Repository, secret string, ttl time.Duration) Service {
	return &service{adminRepo: adminRepo, jwtKey: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (*Token, error) {
	account, err := s.adminRepo.GetAdminByEmail(ctx, admin.NormalizeEmail(email))
	if errors.Is(err, admin.ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expirationTime := now.Add(s.ttl)
	claims := &jwt.StandardClaims{
		Subject:   account.ID.String(),
		Issuer:    issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, err
	}

	return &Token{AccessToken: tokenString, TokenType: "Bearer", ExpiresAt: expirationTime}, nil
}

func (s *service) Verify(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != issuer || claims.Subject == "" || claims.ExpiresAt == 0 {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
