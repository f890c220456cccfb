// Package auth provides bearer token authentication for Storefront.
package auth

import "time"

// =============================================================================
// Token Constants
// =============================================================================

const (
	// DefaultTokenTTL is the lifetime used when Issue is called without a TTL.
	DefaultTokenTTL = 15 * time.Minute

	// DefaultAlgorithm is the JWT signing algorithm.
	DefaultAlgorithm = "HS256"

	// TokenTypeBearer is the token_type returned at login.
	TokenTypeBearer = "Bearer"
)

// =============================================================================
// Header Constants
// =============================================================================

const (
	// AuthorizationHeader is the HTTP header carrying the bearer token.
	AuthorizationHeader = "Authorization"

	// WWWAuthenticateHeader is set on 401 responses.
	WWWAuthenticateHeader = "WWW-Authenticate"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "
)
