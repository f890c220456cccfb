// Package domain contains the core business entities for Storefront.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Authentication Errors
	// ===========================================

	// ErrInvalidCredentials indicates login failed. It never says whether the
	// username or the password was wrong.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrInvalidToken indicates a bearer token is malformed, unsigned, tampered or expired.
	ErrInvalidToken = errors.New("could not validate credentials")

	// ErrUnauthorized indicates no authenticated principal could be resolved.
	ErrUnauthorized = errors.New("not authenticated")

	// ErrForbidden indicates the principal lacks the required role.
	ErrForbidden = errors.New("insufficient permissions")

	// ===========================================
	// Entity Errors
	// ===========================================

	// ErrNotFound is the base error for every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique field collides with an existing row.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation is the base error for every ValidationError.
	ErrValidation = errors.New("validation failed")
)

// Entity names used in error and response messages.
const (
	EntityUser     = "User"
	EntityProduct  = "Product"
	EntityCategory = "Category"
	EntityCart     = "Cart"
)

// NotFoundError reports a missing entity, or one not owned by the caller.
type NotFoundError struct {
	Entity string
	ID     any
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(entity string, id any) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v was not found", e.Entity, e.ID)
}

// Is reports whether target is ErrNotFound or an equal NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Entity == e.Entity && fmt.Sprint(t.ID) == fmt.Sprint(e.ID)
}

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Unwrap returns ErrValidation so callers can match with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// IsNotFound reports whether err is a not-found error for the given entity.
// An empty entity matches any not-found error.
func IsNotFound(err error, entity string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return entity == "" && errors.Is(err, ErrNotFound)
	}
	return entity == "" || nf.Entity == entity
}
