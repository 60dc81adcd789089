package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/models"
	"github.com/flightdeck/gateway-api/internal/session"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "test",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestService(baseURL string, store *session.Store) *Service {
	cfg := &config.BackendConfig{
		BaseURL:      baseURL,
		LoginTimeout: 2 * time.Second,
		ListTimeout:  time.Second,
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewService(cfg, logger, func(context.Context) string {
		if u := store.Current(); u != nil {
			return u.Token
		}
		return ""
	})
}

func newTestClient(baseURL string, store *session.Store) *Client {
	return newTestService(baseURL, store).For(store)
}

func newStore(t *testing.T) (*session.Store, *session.MemoryStorage) {
	t.Helper()
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, logrus.New())
	store.Initialize(context.Background())
	return store, storage
}

// countingStorage tracks deletes so tests can assert the expiry clear happens
// exactly once.
type countingStorage struct {
	session.Storage
	deletes int
}

func (s *countingStorage) Delete(ctx context.Context, keys ...string) error {
	s.deletes++
	return s.Storage.Delete(ctx, keys...)
}

func TestLoginCreatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test", req.Username)
		assert.Equal(t, "pass", req.Password)

		json.NewEncoder(w).Encode(models.AuthResponse{
			Token:    "t",
			Username: "test",
			Email:    "test@test.com",
			Role:     models.RoleUser,
		})
	}))
	defer server.Close()

	store, storage := newStore(t)
	client := newTestClient(server.URL, store)

	resp, err := client.Login(context.Background(), "test", "pass")
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Token)

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, models.RoleUser, current.Role)
	assert.Equal(t, "test@test.com", current.Email)

	raw, ok, err := storage.Get(context.Background(), "currentUser")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"token":"t"`)
}

func TestLoginWithoutTokenLeavesSessionAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.AuthResponse{
			Message:         "Password expired",
			PasswordExpired: true,
		})
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)

	resp, err := client.Login(context.Background(), "test", "pass")
	require.NoError(t, err)
	assert.True(t, resp.PasswordExpired)
	assert.Nil(t, store.Current())
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Account locked"})
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)

	_, err := client.Login(context.Background(), "test", "pass")
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeUnauthenticated, appErr.Code)
	assert.Equal(t, "Account locked", appErr.Message)
	assert.Nil(t, store.Current())
}

func TestLoginFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)

	_, err := client.Login(context.Background(), "test", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid username or password", apperrors.AsAppError(err).Message)
}

func TestLoginTimeoutIsDistinct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)
	client.svc.loginTimeout = 50 * time.Millisecond

	_, err := client.Login(context.Background(), "test", "pass")
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
	assert.Contains(t, apperrors.AsAppError(err).Message, "timed out")
}

func TestRegisterThenIsAuthenticated(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/api/auth/register", r.URL.Path)
		json.NewEncoder(w).Encode(models.AuthResponse{
			Token:    makeToken(t, time.Now().Add(24*time.Hour)),
			Username: "new",
			Email:    "new@test.com",
			Role:     models.RoleUser,
		})
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)

	_, err := client.Register(context.Background(), &models.RegisterRequest{
		Username: "new",
		Email:    "new@test.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	// Authentication is derived locally; no further backend call happens.
	assert.True(t, client.IsAuthenticated(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestIsAuthenticatedExpiredTokenClearsExactlyOnce(t *testing.T) {
	storage := &countingStorage{Storage: session.NewMemoryStorage()}
	store := session.NewStore(storage, logrus.New())
	ctx := context.Background()
	store.Initialize(ctx)

	require.NoError(t, store.Set(ctx, &models.User{
		Username: "stale",
		Role:     models.RoleUser,
		Token:    makeToken(t, time.Now().Add(-time.Hour)),
	}))

	client := newTestClient("http://localhost:0", store)

	assert.False(t, client.IsAuthenticated(ctx))
	assert.Nil(t, store.Current())
	assert.Equal(t, 1, storage.deletes)

	// Idempotent: a second check finds no session and clears nothing.
	assert.False(t, client.IsAuthenticated(ctx))
	assert.Equal(t, 1, storage.deletes)
}

func TestIsAuthenticatedMalformedTokenClearsSilently(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, &models.User{
		Username: "broken",
		Role:     models.RoleUser,
		Token:    "not-a-jwt",
	}))

	client := newTestClient("http://localhost:0", store)

	assert.False(t, client.IsAuthenticated(ctx))
	assert.Nil(t, store.Current())
}

func TestIsAuthenticatedTokenWithoutExpiry(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "test"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, &models.User{
		Username: "noexp",
		Role:     models.RoleUser,
		Token:    signed,
	}))

	client := newTestClient("http://localhost:0", store)

	// A token carrying no expiry claim is treated as expired, not trusted.
	assert.False(t, client.IsAuthenticated(ctx))
	assert.Nil(t, store.Current())
}

func TestStoreBindingsShareBackendPlumbing(t *testing.T) {
	storeA, _ := newStore(t)
	storeB, _ := newStore(t)
	svc := newTestService("http://localhost:0", storeA)

	a := svc.For(storeA)
	b := svc.For(storeB)

	// Per-request bindings never rebuild the HTTP client; the transport and
	// its connection pool are shared.
	assert.Same(t, a.svc.backend, b.svc.backend)
	assert.NotSame(t, a.store, b.store)
}

func TestIsAuthenticatedNoSession(t *testing.T) {
	store, _ := newStore(t)
	client := newTestClient("http://localhost:0", store)
	assert.False(t, client.IsAuthenticated(context.Background()))
}

func TestRolePredicates(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	client := newTestClient("http://localhost:0", store)

	assert.False(t, client.IsAdmin())
	assert.False(t, client.IsUser())

	require.NoError(t, store.Set(ctx, &models.User{Username: "a", Role: models.RoleAdmin, Token: "t"}))
	assert.True(t, client.IsAdmin())
	assert.False(t, client.IsUser())

	require.NoError(t, store.Set(ctx, &models.User{Username: "u", Role: models.RoleUser, Token: "t"}))
	assert.False(t, client.IsAdmin())
	assert.True(t, client.IsUser())
}

func TestLogoutClearsSession(t *testing.T) {
	store, storage := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, &models.User{Username: "a", Role: models.RoleUser, Token: "t"}))
	require.NoError(t, store.SetExpiredPasswordUsername(ctx, "a"))

	client := newTestClient("http://localhost:0", store)
	require.NoError(t, client.Logout(ctx))

	assert.Nil(t, store.Current())
	_, ok, err := storage.Get(ctx, "currentUser")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = storage.Get(ctx, "expiredPasswordUsername")
	require.NoError(t, err)
	assert.False(t, ok)

	// Logging out twice is fine.
	require.NoError(t, client.Logout(ctx))
}

func TestChangePasswordDoesNotTouchSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/change-password", r.URL.Path)

		var req models.ChangePasswordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)

		json.NewEncoder(w).Encode(models.ChangePasswordResponse{Success: true, Message: "Password changed"})
	}))
	defer server.Close()

	store, _ := newStore(t)
	ctx := context.Background()
	user := &models.User{Username: "alice", Role: models.RoleUser, Token: "t"}
	require.NoError(t, store.Set(ctx, user))

	client := newTestClient(server.URL, store)
	resp, err := client.ChangePassword(ctx, "alice", "old", "newpassword", "newpassword")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "alice", current.Username)
}

func TestCheckPasswordExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/password-expiry-status", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))

		json.NewEncoder(w).Encode(models.PasswordExpiryStatus{
			Message:         "Password expires soon",
			PasswordExpired: false,
			DaysUntilExpiry: 5,
		})
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := newTestClient(server.URL, store)

	status, err := client.CheckPasswordExpiry(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, status.PasswordExpired)
	assert.Equal(t, 5, status.DaysUntilExpiry)
}
