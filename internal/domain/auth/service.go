package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/core/apperror"
	"stockbook/pkg/logger"
)

// Credentials is the operator login configured at startup.
type Credentials struct {
	Username string
	// PasswordHash is a bcrypt hash of the operator password
	PasswordHash string
}

// Service authenticates the operator and issues tokens.
type Service struct {
	creds Credentials
	jwt   *JWTService
}

// NewService creates the auth service.
func NewService(creds Credentials, jwt *JWTService) *Service {
	return &Service{creds: creds, jwt: jwt}
}

// Login checks credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	if username != s.creds.Username {
		return "", time.Time{}, apperror.NewUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(username, username, "operator")
	if err != nil {
		return "", time.Time{}, apperror.NewInternal(err)
	}

	logger.Info(ctx, "operator logged in", "username", username)
	return token, expiresAt, nil
}

// HashPassword produces a bcrypt hash for configuration tooling.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
