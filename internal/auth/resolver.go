package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
)

// TokenValidator validates a bearer token and returns its subject.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// UserLookup finds principals by username.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Resolver maps bearer tokens to stored principals.
type Resolver struct {
	tokens TokenValidator
	users  UserLookup
	logger zerolog.Logger
}

// NewResolver creates a new Resolver.
func NewResolver(tokens TokenValidator, users UserLookup, logger zerolog.Logger) *Resolver {
	return &Resolver{
		tokens: tokens,
		users:  users,
		logger: logger.With().Str("component", "identity_resolver").Logger(),
	}
}

// Resolve validates token and loads the principal named by its subject.
// A subject with no stored principal, or an inactive one, is ErrUnauthorized.
func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.User, error) {
	subject, err := r.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := r.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug().Str("subject", subject).Msg("token subject has no principal")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to resolve principal: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	if !user.CanAuthenticate() {
		r.logger.Debug().Str("subject", subject).Msg("token subject is inactive")
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// RequireRole resolves token and checks the principal holds role.
func (r *Resolver) RequireRole(ctx context.Context, token string, role domain.Role) (*domain.User, error) {
	user, err := r.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := CheckRole(user, role); err != nil {
		return nil, err
	}
	return user, nil
}

// RequireAdmin resolves token and checks the principal is an administrator.
func (r *Resolver) RequireAdmin(ctx context.Context, token string) (*domain.User, error) {
	return r.RequireRole(ctx, token, domain.RoleAdmin)
}

// CheckRole returns ErrForbidden unless user holds role.
func CheckRole(user *domain.User, role domain.Role) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if !user.HasRole(role) {
		return domain.ErrForbidden
	}
	return nil
}
