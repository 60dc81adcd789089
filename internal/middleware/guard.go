package middleware

import (
	"context"
	"strings"

	"github.com/flightdeck/gateway-api/internal/guards"
	apperrors "github.com/flightdeck/gateway-api/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type guardFunc func(ctx context.Context, a guards.Authenticator, path string) guards.Decision

// RequireAuth denies entry to unauthenticated sessions.
func (m *Manager) RequireAuth() fiber.Handler {
	return m.guard(guards.Auth)
}

// RequireAdmin denies entry to everyone but authenticated admins.
func (m *Manager) RequireAdmin() fiber.Handler {
	return m.guard(guards.Admin)
}

func (m *Manager) guard(fn guardFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		store := StoreFrom(c)
		if store == nil {
			return denied(c, guards.Decision{RedirectTo: guards.LoginPath})
		}

		checker := m.Auth.For(store)
		decision := fn(c.UserContext(), checker, c.OriginalURL())
		if decision.Allow {
			return c.Next()
		}
		return denied(c, decision)
	}
}

// denied turns a guard decision into a redirect for browsers and a coded
// JSON error for API callers; the redirect target travels along either way.
func denied(c *fiber.Ctx, decision guards.Decision) error {
	if c.Accepts("text/html", "application/json") == "text/html" {
		return c.Redirect(decision.RedirectTo, fiber.StatusFound)
	}

	code := apperrors.CodeForbidden
	message := "Admin access required"
	status := fiber.StatusForbidden
	if strings.HasPrefix(decision.RedirectTo, guards.LoginPath) {
		code = apperrors.CodeUnauthenticated
		message = "Please log in to continue"
		status = fiber.StatusUnauthorized
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":     code,
			"message":  message,
			"redirect": decision.RedirectTo,
		},
	})
}
