// Package auth performs the credential exchange with the backend and keeps
// the session store synchronized with the outcome. The backend is the trust
// authority; this layer only caches its answers.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/flightdeck/gateway-api/internal/clients"
	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/metrics"
	"github.com/flightdeck/gateway-api/internal/models"
	"github.com/flightdeck/gateway-api/internal/session"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// Service owns the shared HTTP plumbing for the auth endpoints. It is built
// once at startup so the transport and its connection pool are reused across
// all callers.
type Service struct {
	backend      *clients.Backend
	loginTimeout time.Duration
	logger       *logrus.Logger
	now          func() time.Time
}

// NewService creates the auth service. tokenSource supplies the bearer token
// for authenticated calls and may be nil.
func NewService(cfg *config.BackendConfig, logger *logrus.Logger, tokenSource clients.TokenSource) *Service {
	return &Service{
		backend:      clients.NewBackend("auth", cfg.BaseURL, logger, tokenSource),
		loginTimeout: cfg.LoginTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// For binds the service to one caller's session store. The binding is cheap
// enough to create per request.
func (s *Service) For(store *session.Store) *Client {
	return &Client{svc: s, store: store}
}

// Client is the auth service bound to one session store.
type Client struct {
	svc   *Service
	store *session.Store
}

// Login exchanges credentials for a token. When the response carries a token
// the session store is updated before returning; the raw backend response is
// returned either way, so callers can see the password-expired flags.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.svc.loginTimeout)
	defer cancel()

	var resp models.AuthResponse
	err := c.svc.backend.Do(ctx, http.MethodPost, "/api/auth/login", nil,
		&models.LoginRequest{Username: username, Password: password},
		&resp, "Invalid username or password")
	if err != nil {
		if apperrors.IsTimeout(err) {
			return nil, apperrors.NewAppError(apperrors.CodeUpstreamTimeout,
				"Login request timed out. Please check your connection and try again.", err)
		}
		return nil, err
	}

	if resp.Token != "" {
		if err := c.store.Set(ctx, resp.SessionUser()); err != nil {
			return nil, err
		}
		c.svc.logger.WithField("username", resp.Username).Info("User logged in")
	}

	return &resp, nil
}

// Register creates an account. A successful response also creates a session,
// same as Login.
func (c *Client) Register(ctx context.Context, payload *models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.svc.backend.Do(ctx, http.MethodPost, "/api/auth/register", nil, payload,
		&resp, "Registration failed. Please try again.")
	if err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := c.store.Set(ctx, resp.SessionUser()); err != nil {
			return nil, err
		}
		c.svc.logger.WithField("username", resp.Username).Info("User registered")
	}

	return &resp, nil
}

// Logout clears the session. It is purely client-side; the backend still
// validates token expiry on every protected call, so no revocation request
// is made.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	metrics.RecordSessionCleared("logout")
	return nil
}

// IsAuthenticated reports whether a live, unexpired session exists. The token
// expiry is a best-effort hint read without signature verification. A
// malformed or expired token clears the session silently; navigation is left
// to the guard that asked, to avoid redirect loops.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	user := c.store.Current()
	if user == nil || user.Token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(user.Token, claims); err != nil {
		c.clearSilently(ctx, "token_malformed")
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(c.svc.now()) {
		c.clearSilently(ctx, "token_expired")
		return false
	}

	return true
}

// IsAdmin reports whether the current session belongs to an admin.
func (c *Client) IsAdmin() bool {
	u := c.store.Current()
	return u != nil && u.Role == models.RoleAdmin
}

// IsUser reports whether the current session belongs to a regular user.
func (c *Client) IsUser() bool {
	u := c.store.Current()
	return u != nil && u.Role == models.RoleUser
}

// Token returns the current bearer token, or "" when logged out.
func (c *Client) Token() string {
	if u := c.store.Current(); u != nil {
		return u.Token
	}
	return ""
}

// ChangePassword forwards a password change to the backend. The session is
// left untouched; the backend invalidates the old token, so callers log out
// afterwards.
func (c *Client) ChangePassword(ctx context.Context, username, currentPassword, newPassword, confirmPassword string) (*models.ChangePasswordResponse, error) {
	var resp models.ChangePasswordResponse
	err := c.svc.backend.Do(ctx, http.MethodPost, "/api/auth/change-password", nil,
		&models.ChangePasswordRequest{
			Username:        username,
			CurrentPassword: currentPassword,
			NewPassword:     newPassword,
			ConfirmPassword: confirmPassword,
		},
		&resp, "Password change failed. Please try again.")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckPasswordExpiry fetches the password expiry report for a username.
// Read-only; no local state changes.
func (c *Client) CheckPasswordExpiry(ctx context.Context, username string) (*models.PasswordExpiryStatus, error) {
	query := url.Values{"username": {username}}
	var status models.PasswordExpiryStatus
	err := c.svc.backend.Do(ctx, http.MethodGet, "/api/auth/password-expiry-status", query, nil,
		&status, "Unable to check password expiry.")
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) clearSilently(ctx context.Context, reason string) {
	if err := c.store.Clear(ctx); err != nil {
		c.svc.logger.WithError(err).Warn("Failed to clear stale session")
		return
	}
	metrics.RecordSessionCleared(reason)
}
