package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geoattend/attendance-backend-go/internal/domain/user"
	"github.com/geoattend/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-middleware"

type memoryUserRepo struct {
	users map[string]user.User
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memoryUserRepo) Create(ctx context.Context, newUser user.User) (user.User, error) {
	m.users[newUser.ID] = newUser
	return newUser, nil
}

func (m *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

func (m *memoryUserRepo) List(ctx context.Context, req user.ListUsersRequest) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUserRepo) Update(ctx context.Context, req user.UpdateUserRequest) (user.User, error) {
	u, ok := m.users[req.ID]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	if req.IsBlocked != nil {
		u.IsBlocked = *req.IsBlocked
	}
	m.users[req.ID] = u
	return u, nil
}

func (m *memoryUserRepo) Delete(ctx context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memoryUserRepo) setBlocked(id string, blocked bool) {
	u := m.users[id]
	u.IsBlocked = blocked
	m.users[id] = u
}

func protectedRouter(jwtService jwt.Service, repo user.UserRepository) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
		r.Use(AuthRequired(jwtService, repo))
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func doRequest(t *testing.T, router *chi.Mux, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, "15m", "168h")
	repo := &memoryUserRepo{users: map[string]user.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Role: user.RoleUser, CreatedAt: time.Now()},
	}}
	router := protectedRouter(jwtService, repo)

	token, _, err := jwtService.GenerateAccessToken("user-1", "alice@example.com", user.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(t, router, token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, "garbage").Code)
}

func TestAuthRequired_BlockedAfterLogin(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, "15m", "168h")
	repo := &memoryUserRepo{users: map[string]user.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Role: user.RoleUser, CreatedAt: time.Now()},
	}}
	router := protectedRouter(jwtService, repo)

	token, _, err := jwtService.GenerateAccessToken("user-1", "alice@example.com", user.RoleUser)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, doRequest(t, router, token).Code)

	// Blocking cuts access on the very next request, with the token
	// still valid and unexpired
	repo.setBlocked("user-1", true)
	assert.Equal(t, http.StatusForbidden, doRequest(t, router, token).Code)

	repo.setBlocked("user-1", false)
	assert.Equal(t, http.StatusOK, doRequest(t, router, token).Code)
}

func TestAuthRequired_DeletedUser(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, "15m", "168h")
	repo := &memoryUserRepo{users: map[string]user.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Role: user.RoleUser},
	}}
	router := protectedRouter(jwtService, repo)

	token, _, err := jwtService.GenerateAccessToken("user-1", "alice@example.com", user.RoleUser)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(context.Background(), "user-1"))
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, token).Code)
}

func TestAuthRequired_RejectsRefreshToken(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, "15m", "168h")
	repo := &memoryUserRepo{users: map[string]user.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Role: user.RoleUser},
	}}
	router := protectedRouter(jwtService, repo)

	refresh, _, err := jwtService.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, refresh).Code)
}

func TestAuthRequired_RevokedToken(t *testing.T) {
	jwtService := jwt.NewJWTService(testSecret, "15m", "168h")
	repo := &memoryUserRepo{users: map[string]user.User{
		"user-1": {ID: "user-1", Email: "alice@example.com", Role: user.RoleUser},
	}}
	router := protectedRouter(jwtService, repo)

	token, _, err := jwtService.GenerateAccessToken("user-1", "alice@example.com", user.RoleUser)
	require.NoError(t, err)

	jwtService.RevokeToken(token)
	assert.Equal(t, http.StatusUnauthorized, doRequest(t, router, token).Code)
}
