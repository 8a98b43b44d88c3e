// Package auth implements admin authentication: bcrypt-hashed credentials
// stored alongside the rest of the data, and signed session tokens carried
// in an HTTP-only cookie.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth-token"

// Claims are the JWT claims embedded in a session token.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and verifies admin session tokens.
type Service struct {
	users    repositories.AdminUserRepository
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service.
func NewService(users repositories.AdminUserRepository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// EnsureAdminUser creates the admin account if it does not exist yet. The
// stored hash is never overwritten on subsequent startups.
func (s *Service) EnsureAdminUser(ctx context.Context, username, password string) error {
	_, err := s.users.Get(ctx, username)
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeNotFound {
		return fmt.Errorf("looking up admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	if err := s.users.Create(ctx, &entities.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	log.Info().Str("username", username).Msg("admin user created")
	return nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		// Uniform response for unknown user and bad password.
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.NewUnauthorizedError("invalid credentials")
	}

	now := time.Now()
	claims := Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperrors.NewInternalError("failed to sign session token", err)
	}
	return token, nil
}

// VerifyToken parses and validates a session token, returning the username.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.NewUnauthorizedError("invalid or expired session token")
	}
	return claims.Username, nil
}

// TokenTTL returns the configured session lifetime, for cookie expiry.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}
