package middleware

import (
	"context"

	"github.com/flightdeck/gateway-api/internal/clients"
	"github.com/flightdeck/gateway-api/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type contextKey int

const storeContextKey contextKey = iota

const storeLocalKey = "session_store"

// SessionContext resolves the caller's session store from an opaque context
// cookie, minting a new context ID on first contact. The store rides on both
// fiber locals and the request context so backend clients can read the bearer
// token without knowing about fiber.
func (m *Manager) SessionContext() fiber.Handler {
	cookieName := m.Config.Session.CookieName
	return func(c *fiber.Ctx) error {
		id := c.Cookies(cookieName)
		if id == "" {
			id = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    id,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		store := m.Sessions.Context(c.UserContext(), id)
		c.Locals(storeLocalKey, store)
		c.SetUserContext(context.WithValue(c.UserContext(), storeContextKey, store))

		return c.Next()
	}
}

// StoreFrom extracts the request's session store from a fiber context.
func StoreFrom(c *fiber.Ctx) *session.Store {
	if store, ok := c.Locals(storeLocalKey).(*session.Store); ok {
		return store
	}
	return nil
}

// StoreFromContext extracts the session store from a request context.
func StoreFromContext(ctx context.Context) *session.Store {
	if store, ok := ctx.Value(storeContextKey).(*session.Store); ok {
		return store
	}
	return nil
}

// ContextTokenSource reads the bearer token from the session store riding on
// the request context. Backend clients built once at startup use it to pick
// up the caller's token per request.
func ContextTokenSource() clients.TokenSource {
	return func(ctx context.Context) string {
		if store := StoreFromContext(ctx); store != nil {
			if u := store.Current(); u != nil {
				return u.Token
			}
		}
		return ""
	}
}
