package routes

import (
	"github.com/flightdeck/gateway-api/internal/auth"
	"github.com/flightdeck/gateway-api/internal/guards"
	"github.com/flightdeck/gateway-api/internal/middleware"
	"github.com/flightdeck/gateway-api/internal/models"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth   *auth.Service
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *auth.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

// client binds the shared auth service to the caller's session store.
func (h *AuthHandler) client(c *fiber.Ctx) *auth.Client {
	return h.auth.For(middleware.StoreFrom(c))
}

// Login handles user login
// @Summary User login
// @Description Exchange credentials for a token and start a session
// @Tags Auth
// @Accept json
// @Produce json
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.client(c).Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	// An expired password pre-fills the forced change-password flow.
	if resp.PasswordExpired {
		store := middleware.StoreFrom(c)
		if err := store.SetExpiredPasswordUsername(c.UserContext(), req.Username); err != nil {
			h.logger.WithError(err).Warn("Failed to flag expired password username")
		}
	}

	return c.JSON(resp)
}

// Register handles user registration
// @Summary User registration
// @Description Create an account; a successful response also starts a session
// @Tags Auth
// @Accept json
// @Produce json
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.client(c).Register(c.UserContext(), &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Logout clears the session and sends the caller back to the login view.
// Purely client-side; no backend call is made.
// @Summary Logout
// @Tags Auth
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.client(c).Logout(c.UserContext()); err != nil {
		return err
	}

	if c.Accepts("text/html", "application/json") == "text/html" {
		return c.Redirect(guards.LoginPath, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"message":  "Logged out",
		"redirect": guards.LoginPath,
	})
}

// Me returns the current session record.
// @Summary Current session
// @Tags Auth
// @Produce json
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.StoreFrom(c).Current()
	if user == nil {
		return apperrors.NewAppError(apperrors.CodeUnauthenticated, "Please log in to continue", nil)
	}
	return c.JSON(user)
}

// ChangePassword forwards a password change. The session is not touched; the
// old token is invalidated backend-side, so clients log out afterwards.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Router /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req models.ChangePasswordRequest
	if err := parseAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.client(c).ChangePassword(c.UserContext(),
		req.Username, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// PasswordExpiryStatus reports whether a password is expired and how many
// days remain. Read-only.
// @Summary Password expiry status
// @Tags Auth
// @Produce json
// @Router /api/auth/password-expiry-status [get]
func (h *AuthHandler) PasswordExpiryStatus(c *fiber.Ctx) error {
	username := c.Query("username")
	if username == "" {
		return apperrors.NewAppError(apperrors.CodeBadRequest, "username is required", nil)
	}

	status, err := h.client(c).CheckPasswordExpiry(c.UserContext(), username)
	if err != nil {
		return err
	}

	return c.JSON(status)
}
