// Package domain contains the core business entities for Storefront.
// These are plain Go structs representing the fundamental concepts of the
// commerce backend: principals, catalog entries and carts.
package domain

import (
	"time"
)

// Role is the authorization level of a principal.
type Role string

const (
	// RoleUser is the default role assigned at signup.
	RoleUser Role = "user"

	// RoleAdmin grants access to user, product and category management.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered principal.
// Users own carts and authenticate with a username and password.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Username is the unique login name and the subject of issued tokens.
	Username string `json:"username"`

	// Email is the unique email address for the user.
	Email string `json:"email"`

	// FullName is the display name.
	FullName string `json:"full_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This is never exposed in API responses.
	PasswordHash string `json:"-"`

	// Role controls access to administrative operations.
	Role Role `json:"role"`

	// IsActive indicates whether the user account is active.
	// Inactive users cannot authenticate.
	IsActive bool `json:"is_active"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new active User with the user role.
func NewUser(username, email, fullName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}

// IsAdmin returns true if the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasRole returns true if the user holds exactly the given role.
func (u *User) HasRole(role Role) bool {
	return u.Role == role
}
