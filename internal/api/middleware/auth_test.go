package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriscope/modelaudit/internal/api/middleware"
	"github.com/veriscope/modelaudit/internal/auth"
	"github.com/veriscope/modelaudit/internal/domain/entities"
	apperrors "github.com/veriscope/modelaudit/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*entities.AdminUser
}

func (s *stubUserRepo) Get(ctx context.Context, username string) (*entities.AdminUser, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, apperrors.NewNotFoundError("admin user not found")
	}
	return user, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *entities.AdminUser) error {
	s.users[user.Username] = user
	return nil
}

func newAuthService(t *testing.T) *auth.Service {
	t.Helper()
	service := auth.NewService(&stubUserRepo{users: make(map[string]*entities.AdminUser)}, "test-secret", time.Hour)
	require.NoError(t, service.EnsureAdminUser(context.Background(), "admin", "0000"))
	return service
}

func TestAuthMiddleware_RejectsMissingCookie(t *testing.T) {
	service := newAuthService(t)
	handler := middleware.AuthMiddleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/admin/models", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RejectsInvalidToken(t *testing.T) {
	service := newAuthService(t)
	handler := middleware.AuthMiddleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/admin/models", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_PassesValidTokenAndSetsUsername(t *testing.T) {
	service := newAuthService(t)
	token, err := service.Login(context.Background(), "admin", "0000")
	require.NoError(t, err)

	var seen string
	handler := middleware.AuthMiddleware(service)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/admin/models", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", seen)
}
