package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/domain"
)

// =============================================================================
// Mock Types
// =============================================================================

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// =============================================================================
// Helper Functions
// =============================================================================

func newTestResolver(t *testing.T) (*Resolver, *TokenService, *mockUserLookup) {
	t.Helper()
	tokens, _ := newTestTokenService(t)
	users := new(mockUserLookup)
	return NewResolver(tokens, users, zerolog.Nop()), tokens, users
}

func issueFor(t *testing.T, tokens *TokenService, username string) string {
	t.Helper()
	issued, err := tokens.Issue(username, time.Hour)
	require.NoError(t, err)
	return issued.Token
}

// =============================================================================
// Resolver Tests
// =============================================================================

func TestResolver_Resolve(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	alice := &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, IsActive: true}
	users.On("GetByUsername", mock.Anything, "alice").Return(alice, nil)

	user, err := resolver.Resolve(context.Background(), issueFor(t, tokens, "alice"))
	require.NoError(t, err)
	require.Equal(t, alice, user)
	users.AssertExpectations(t)
}

func TestResolver_Resolve_InvalidToken(t *testing.T) {
	resolver, _, users := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), "garbage")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	users.AssertNotCalled(t, "GetByUsername", mock.Anything, mock.Anything)
}

func TestResolver_Resolve_UnknownSubject(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	users.On("GetByUsername", mock.Anything, "ghost").
		Return(nil, domain.NewNotFoundError(domain.EntityUser, "ghost"))

	user, err := resolver.Resolve(context.Background(), issueFor(t, tokens, "ghost"))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Nil(t, user)
}

func TestResolver_Resolve_NilResult(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)

	user, err := resolver.Resolve(context.Background(), issueFor(t, tokens, "ghost"))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Nil(t, user)
}

func TestResolver_Resolve_InactiveUser(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	users.On("GetByUsername", mock.Anything, "dormant").
		Return(&domain.User{ID: 3, Username: "dormant", Role: domain.RoleUser, IsActive: false}, nil)

	_, err := resolver.Resolve(context.Background(), issueFor(t, tokens, "dormant"))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolver_Resolve_LookupFailure(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("connection reset"))

	_, err := resolver.Resolve(context.Background(), issueFor(t, tokens, "alice"))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUnauthorized)
	require.NotErrorIs(t, err, domain.ErrInvalidToken)
}

func TestResolver_RequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		wantErr error
	}{
		{name: "user role is forbidden", role: domain.RoleUser, wantErr: domain.ErrForbidden},
		{name: "admin role passes", role: domain.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, tokens, users := newTestResolver(t)
			principal := &domain.User{ID: 9, Username: "pat", Role: tt.role, IsActive: true}
			users.On("GetByUsername", mock.Anything, "pat").Return(principal, nil)

			user, err := resolver.RequireAdmin(context.Background(), issueFor(t, tokens, "pat"))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, user)
				return
			}
			require.NoError(t, err)
			require.Equal(t, principal, user)
		})
	}
}

func TestCheckRole(t *testing.T) {
	require.ErrorIs(t, CheckRole(nil, domain.RoleUser), domain.ErrUnauthorized)
	require.ErrorIs(t, CheckRole(&domain.User{Role: domain.RoleAdmin}, domain.RoleUser), domain.ErrForbidden)
	require.NoError(t, CheckRole(&domain.User{Role: domain.RoleUser}, domain.RoleUser))
}

// =============================================================================
// Middleware Tests
// =============================================================================

func TestMiddleware(t *testing.T) {
	resolver, tokens, users := newTestResolver(t)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, IsActive: true}, nil)
	users.On("GetByUsername", mock.Anything, "root").
		Return(&domain.User{ID: 2, Username: "root", Role: domain.RoleAdmin, IsActive: true}, nil)

	var failures []string
	cfg := DefaultConfig()
	cfg.OnFailure = func(reason string) { failures = append(failures, reason) }

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := RequirePrincipal(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(user.Username))
	})

	userChain := Middleware(resolver, cfg)(final)
	adminChain := Middleware(resolver, cfg)(RequireAdmin(cfg)(final))

	tests := []struct {
		name       string
		handler    http.Handler
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid bearer", handler: userChain, path: "/cart", header: "Bearer " + issueFor(t, tokens, "alice"), wantStatus: http.StatusOK, wantBody: "alice"},
		{name: "lowercase scheme", handler: userChain, path: "/cart", header: "bearer " + issueFor(t, tokens, "alice"), wantStatus: http.StatusOK, wantBody: "alice"},
		{name: "missing header", handler: userChain, path: "/cart", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", handler: userChain, path: "/cart", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", handler: userChain, path: "/cart", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "admin route as user", handler: adminChain, path: "/users", header: "Bearer " + issueFor(t, tokens, "alice"), wantStatus: http.StatusForbidden},
		{name: "admin route as admin", handler: adminChain, path: "/users", header: "Bearer " + issueFor(t, tokens, "root"), wantStatus: http.StatusOK, wantBody: "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			tt.handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				require.Equal(t, TokenTypeBearer, rec.Header().Get(WWWAuthenticateHeader))
			}
		})
	}

	require.Equal(t, []string{"unauthorized", "invalid_token", "invalid_token", "forbidden"}, failures)
}

func TestMiddleware_SkipPaths(t *testing.T) {
	resolver, _, _ := newTestResolver(t)

	handler := Middleware(resolver, DefaultConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header  string
		token   string
		wantErr error
	}{
		{header: "Bearer abc.def.ghi", token: "abc.def.ghi"},
		{header: "  Bearer   abc  ", token: "abc"},
		{header: "", wantErr: ErrMissingBearer},
		{header: "Bearer", wantErr: ErrMalformedAuthorizationHeader},
		{header: "Bearer ", wantErr: ErrMalformedAuthorizationHeader},
		{header: "Token abc", wantErr: ErrMalformedAuthorizationHeader},
		{header: "Bearer a b", wantErr: ErrMalformedAuthorizationHeader},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, err := ParseBearer(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.token, token)
		})
	}
}
