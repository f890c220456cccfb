package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/domain"
)

// PrincipalResolver resolves a bearer token to a principal.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Config contains configuration for the auth middleware.
type Config struct {
	// SkipPaths are paths that skip authentication.
	SkipPaths []string

	// OnFailure is called with the failure reason for every rejected request (optional).
	OnFailure func(reason string)

	// Logger receives debug logs for rejected requests.
	Logger zerolog.Logger
}

// DefaultConfig returns the default auth configuration.
func DefaultConfig() Config {
	return Config{
		SkipPaths: []string{"/health", "/ready", "/metrics"},
		Logger:    zerolog.Nop(),
	}
}

// Middleware authenticates the bearer token and stores the principal in the request context.
func Middleware(resolver PrincipalResolver, config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if r.URL.Path == path {
					next.ServeHTTP(w, r)
					return
				}
			}

			token, err := BearerFromRequest(r)
			if err != nil {
				reject(w, r, config, err)
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				reject(w, r, config, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// RequireRole rejects requests whose principal does not hold role.
// It must run after Middleware.
func RequireRole(role domain.Role, config Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := PrincipalFromContext(r.Context())
			if err := CheckRole(user, role); err != nil {
				reject(w, r, config, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole for the admin role.
func RequireAdmin(config Config) func(http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin, config)
}

func reject(w http.ResponseWriter, r *http.Request, config Config, err error) {
	authErr := NewAuthError(err)

	event := config.Logger.Debug()
	if authErr.HTTPStatus >= http.StatusInternalServerError {
		event = config.Logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Str("code", string(authErr.Code)).Msg("request rejected")

	if config.OnFailure != nil {
		config.OnFailure(authErr.Reason())
	}

	writeAuthError(w, authErr)
}

// writeAuthError writes a JSON error response.
func writeAuthError(w http.ResponseWriter, authErr *AuthError) {
	if authErr.HTTPStatus == http.StatusUnauthorized {
		w.Header().Set(WWWAuthenticateHeader, TokenTypeBearer)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authErr.HTTPStatus)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": authErr.Message,
		"code":    string(authErr.Code),
	})
}
