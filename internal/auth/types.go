package auth

import (
	"context"
	"time"

	"github.com/prn-tf/storefront/internal/domain"
)

// =============================================================================
// Clock
// =============================================================================

// Clock supplies the current time to the token service.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// =============================================================================
// Token Types
// =============================================================================

// IssuedToken is a freshly signed bearer token.
type IssuedToken struct {
	// Token is the compact JWT.
	Token string

	// ExpiresAt is the absolute expiry embedded in the token.
	ExpiresAt time.Time

	// TTL is the lifetime the token was issued with.
	TTL time.Duration
}

// =============================================================================
// Context Types
// =============================================================================

// principalContextKey is the context key for the authenticated user.
type principalContextKey struct{}

// WithPrincipal returns a copy of ctx carrying the authenticated user.
func WithPrincipal(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext returns the authenticated user stored by the middleware.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(principalContextKey{}).(*domain.User)
	return user, ok && user != nil
}

// RequirePrincipal returns the authenticated user or ErrUnauthorized.
func RequirePrincipal(ctx context.Context) (*domain.User, error) {
	user, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
