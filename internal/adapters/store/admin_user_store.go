package store

import (
	"context"

	"github.com/veriscope/modelaudit/internal/domain/entities"
	"github.com/veriscope/modelaudit/internal/domain/repositories"
	redisclient "github.com/veriscope/modelaudit/internal/infrastructure/clients/redis"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

// AdminUserStore implements AdminUserRepository over Redis.
type AdminUserStore struct {
	base
}

// NewAdminUserStore creates a new admin user store.
func NewAdminUserStore(client *redisclient.Client) repositories.AdminUserRepository {
	return &AdminUserStore{base{client: client}}
}

// Get returns one admin user by username.
func (s *AdminUserStore) Get(ctx context.Context, username string) (*entities.AdminUser, error) {
	var user entities.AdminUser
	if err := s.getJSON(ctx, adminUserPrefix+username, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores an admin user.
func (s *AdminUserStore) Create(ctx context.Context, user *entities.AdminUser) error {
	if user.Username == "" {
		return apperrors.NewValidationError("username is required")
	}
	return s.setJSON(ctx, adminUserPrefix+user.Username, user)
}
