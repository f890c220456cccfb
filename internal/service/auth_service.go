package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/storefront/internal/auth"
	"github.com/prn-tf/storefront/internal/domain"
	"github.com/prn-tf/storefront/internal/metrics"
	"github.com/prn-tf/storefront/internal/pkg/crypto"
	"github.com/prn-tf/storefront/internal/repository"
)

// TokenIssuer signs access tokens for a subject.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (*auth.IssuedToken, error)
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`

	// ExpiresIn is the token lifetime in minutes.
	ExpiresIn int `json:"expires_in"`
}

// AuthService handles login and signup.
type AuthService struct {
	userRepo repository.UserRepository
	users    *UserService
	hasher   *crypto.PasswordHasher
	tokens   TokenIssuer
	tokenTTL time.Duration
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	// AccessTokenTTL is the lifetime of issued tokens.
	AccessTokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	users *UserService,
	hasher *crypto.PasswordHasher,
	tokens TokenIssuer,
	config AuthConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: config.AccessTokenTTL,
		metrics:  m,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// IssueToken verifies the credentials and issues an access token.
// Unknown users, inactive users and wrong passwords all fail with
// domain.ErrInvalidCredentials.
func (s *AuthService) IssueToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !domain.IsNotFound(err, "") {
			s.logger.Error().Err(err).Str("username", username).Msg("failed to look up user")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		// Don't expose whether the username exists
		s.hasher.VerifyMissing(password)
		s.logger.Debug().Str("username", username).Msg("user not found during authentication")
		s.metrics.AuthFailure("invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if !user.CanAuthenticate() {
		s.hasher.VerifyMissing(password)
		s.logger.Debug().Str("username", username).Msg("inactive user attempted authentication")
		s.metrics.AuthFailure("inactive_user")
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		s.metrics.AuthFailure("invalid_credentials")
		return nil, domain.ErrInvalidCredentials
	}

	issued, err := s.tokens.Issue(user.Username, s.tokenTTL)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Time("expires_at", issued.ExpiresAt).
		Msg("token issued")

	return &TokenResponse{
		AccessToken: issued.Token,
		TokenType:   auth.TokenTypeBearer,
		ExpiresIn:   int(issued.TTL / time.Minute),
	}, nil
}

// SignupInput contains the self-registration fields.
type SignupInput struct {
	FullName string
	Username string
	Email    string
	Password string
}

// Signup registers a new active user with the user role.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	return s.users.Create(ctx, CreateUserInput{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Password: input.Password,
		Role:     domain.RoleUser,
	})
}
