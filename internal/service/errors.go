// Package service provides the business logic of Storefront: authentication,
// account and user management, the catalog and the cart engine.
package service

import (
	"errors"
	"fmt"

	"github.com/prn-tf/storefront/internal/domain"
)

// ErrInternalError wraps every failure that is not a business rule violation.
// Handlers map it to 500 and never expose the cause.
var ErrInternalError = errors.New("internal server error")

// Validation errors shared by the user and account services.
var (
	errInvalidPassword = domain.NewValidationError("password", "must be at least 8 characters")
	errInvalidUsername = domain.NewValidationError("username", "must be 3-255 characters")
	errInvalidEmail    = domain.NewValidationError("email", "invalid email format")
)

// isDomainError reports whether err is a business rule violation that should
// reach the caller unchanged.
func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrInvalidCredentials)
}

// internal passes domain errors through and wraps anything else in ErrInternalError.
func internal(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternalError, err)
}
