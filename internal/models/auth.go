package models

// Roles as reported by the backend. Role is fixed for the lifetime of a
// session; there is no in-session elevation.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the locally cached session record representing "who is logged in".
// It is always replaced wholesale, never patched field by field.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents registration request payload
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResponse represents the backend's answer to login and register calls.
// PasswordExpired signals the forced password-change flow.
type AuthResponse struct {
	Token               string `json:"token"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	Message             string `json:"message"`
	PasswordExpired     bool   `json:"passwordExpired,omitempty"`
	ForcePasswordChange bool   `json:"forcePasswordChange,omitempty"`
}

// SessionUser builds the session record from a token-bearing auth response.
func (r *AuthResponse) SessionUser() *User {
	return &User{
		Username: r.Username,
		Email:    r.Email,
		Role:     r.Role,
		Token:    r.Token,
	}
}

// ChangePasswordRequest represents a password change payload
type ChangePasswordRequest struct {
	Username        string `json:"username" validate:"required"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ChangePasswordResponse represents the backend's password change result
type ChangePasswordResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PasswordExpiryStatus is the read-only password expiry report. Purely
// informational; fetching it never mutates local state.
type PasswordExpiryStatus struct {
	Message         string `json:"message"`
	PasswordExpired bool   `json:"passwordExpired"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
}
