package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/metrics"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T, repo *mockUserRepository) (*AuthService, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	hasher := crypto.NewPasswordHasher(testBcryptCost)
	users := NewUserService(repo, hasher, testPaginator, zerolog.Nop())
	svc := NewAuthService(repo, users, hasher, tokens, AuthConfig{AccessTokenTTL: 30 * time.Minute}, metrics.New(), zerolog.Nop())
	return svc, tokens
}

func TestAuthService_IssueToken(t *testing.T) {
	hasher := crypto.NewPasswordHasher(testBcryptCost)
	digest, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	active := &domain.User{ID: 1, Username: "alice", PasswordHash: digest, Role: domain.RoleUser, IsActive: true}
	inactive := &domain.User{ID: 2, Username: "carol", PasswordHash: digest, Role: domain.RoleUser, IsActive: false}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid credentials", "alice", "correct-horse", nil},
		{"wrong password", "alice", "battery-staple", domain.ErrInvalidCredentials},
		{"unknown user", "mallory", "correct-horse", domain.ErrInvalidCredentials},
		{"inactive user", "carol", "correct-horse", domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepository)
			repo.On("GetByUsername", mock.Anything, "alice").Return(active, nil)
			repo.On("GetByUsername", mock.Anything, "carol").Return(inactive, nil)
			repo.On("GetByUsername", mock.Anything, "mallory").Return(nil, domain.NewNotFoundError(domain.EntityUser, "mallory"))

			svc, tokens := newTestAuthService(t, repo)

			resp, err := svc.IssueToken(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "Bearer", resp.TokenType)
			require.Equal(t, 30, resp.ExpiresIn)

			subject, err := tokens.Validate(resp.AccessToken)
			require.NoError(t, err)
			require.Equal(t, "alice", subject)
		})
	}
}

func TestAuthService_IssueToken_UniformCost(t *testing.T) {
	const cost = 10
	hasher := crypto.NewPasswordHasher(cost)
	digest, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	repo := new(mockUserRepository)
	repo.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", PasswordHash: digest, Role: domain.RoleUser, IsActive: true}, nil)
	repo.On("GetByUsername", mock.Anything, "carol").
		Return(&domain.User{ID: 2, Username: "carol", PasswordHash: digest, Role: domain.RoleUser, IsActive: false}, nil)
	repo.On("GetByUsername", mock.Anything, "mallory").
		Return(nil, domain.NewNotFoundError(domain.EntityUser, "mallory"))

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: testSecret})
	require.NoError(t, err)
	svc := NewAuthService(repo, NewUserService(repo, hasher, testPaginator, zerolog.Nop()), hasher, tokens,
		AuthConfig{AccessTokenTTL: time.Minute}, metrics.New(), zerolog.Nop())

	elapsed := func(username string) time.Duration {
		start := time.Now()
		_, err := svc.IssueToken(context.Background(), username, "battery-staple")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
		return time.Since(start)
	}

	elapsed("mallory")
	wrongPassword := elapsed("alice")

	for _, username := range []string{"mallory", "carol"} {
		require.Greater(t, elapsed(username), wrongPassword/4, "username=%s", username)
	}
}

func TestAuthService_IssueToken_LookupFailure(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("database is locked"))

	svc, _ := newTestAuthService(t, repo)

	_, err := svc.IssueToken(context.Background(), "alice", "whatever")
	require.ErrorIs(t, err, ErrInternalError)
	require.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Signup(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("ExistsByUsername", mock.Anything, "dave").Return(false, nil)
	repo.On("ExistsByEmail", mock.Anything, "dave@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "dave" && u.Role == domain.RoleUser && u.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 42
	}).Return(nil)

	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Signup(context.Background(), SignupInput{
		FullName: "Dave",
		Username: "dave",
		Email:    "dave@example.com",
		Password: "long-enough",
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), user.ID)
	require.Equal(t, "Dave", user.FullName)
	repo.AssertExpectations(t)
}
