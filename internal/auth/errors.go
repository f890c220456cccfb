package auth

import (
	"errors"
	"net/http"

	"github.com/prn-tf/storefront/internal/domain"
)

// Authentication errors.
var (
	// ErrMissingBearer indicates the request carries no bearer token.
	ErrMissingBearer = errors.New("missing bearer token")

	// ErrMalformedAuthorizationHeader indicates the Authorization header is not a bearer credential.
	ErrMalformedAuthorizationHeader = errors.New("malformed authorization header")

	// ErrEmptySecret indicates the token service was configured without a secret.
	ErrEmptySecret = errors.New("token signing secret is empty")

	// ErrUnsupportedAlgorithm indicates a non-HMAC signing algorithm was configured.
	ErrUnsupportedAlgorithm = errors.New("unsupported token signing algorithm")

	// ErrEmptySubject indicates Issue was called without a subject.
	ErrEmptySubject = errors.New("token subject is empty")
)

// ErrorCode is a machine readable authentication failure code.
type ErrorCode string

const (
	// CodeInvalidToken maps to HTTP 401
	CodeInvalidToken ErrorCode = "invalid_token"

	// CodeUnauthorized maps to HTTP 401
	CodeUnauthorized ErrorCode = "unauthorized"

	// CodeForbidden maps to HTTP 403
	CodeForbidden ErrorCode = "forbidden"

	// CodeInternal maps to HTTP 500
	CodeInternal ErrorCode = "internal_error"
)

// AuthError represents an authentication failure ready to be written to a client.
type AuthError struct {
	// Code is the machine readable code.
	Code ErrorCode

	// Message is the client facing message.
	Message string

	// HTTPStatus is the HTTP status code.
	HTTPStatus int
}

func (e *AuthError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewAuthError classifies an authentication failure.
func NewAuthError(err error) *AuthError {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return &AuthError{
			Code:       CodeForbidden,
			Message:    "Not enough permissions",
			HTTPStatus: http.StatusForbidden,
		}

	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, ErrMalformedAuthorizationHeader):
		return &AuthError{
			Code:       CodeInvalidToken,
			Message:    "Could not validate credentials",
			HTTPStatus: http.StatusUnauthorized,
		}

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, ErrMissingBearer):
		return &AuthError{
			Code:       CodeUnauthorized,
			Message:    "Not authenticated",
			HTTPStatus: http.StatusUnauthorized,
		}

	default:
		return &AuthError{
			Code:       CodeInternal,
			Message:    "Internal server error",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
}

// Reason returns a short label for metrics.
func (e *AuthError) Reason() string {
	return string(e.Code)
}
