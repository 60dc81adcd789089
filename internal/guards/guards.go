// Package guards holds the navigation predicates evaluated before a protected
// view is entered. They are plain functions over the auth client's derived
// state, independent of any particular router.
package guards

import (
	"context"
	"net/url"
)

// Redirect targets.
const (
	LoginPath         = "/login"
	UserDashboardPath = "/user-dashboard"
)

// Authenticator is the slice of the auth client the guards consult. Guards
// never touch storage directly.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
	IsAdmin() bool
}

// Decision is the outcome of a guard: either entry is allowed, or it is
// denied with a redirect target.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Auth allows authenticated sessions and sends everyone else to the login
// view, carrying the attempted path as returnUrl.
func Auth(ctx context.Context, a Authenticator, path string) Decision {
	if a.IsAuthenticated(ctx) {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: loginRedirect(path)}
}

// Admin allows authenticated admins. Unauthenticated sessions go to login
// with returnUrl; authenticated non-admins land on the user dashboard.
func Admin(ctx context.Context, a Authenticator, path string) Decision {
	if !a.IsAuthenticated(ctx) {
		return Decision{RedirectTo: loginRedirect(path)}
	}
	if !a.IsAdmin() {
		return Decision{RedirectTo: UserDashboardPath}
	}
	return Decision{Allow: true}
}

func loginRedirect(path string) string {
	if path == "" {
		return LoginPath
	}
	return LoginPath + "?returnUrl=" + url.QueryEscape(path)
}
