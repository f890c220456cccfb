package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prn-tf/storefront/internal/domain"
)

// TokenConfig contains configuration for the token service.
type TokenConfig struct {
	// Secret is the shared HMAC key.
	Secret string

	// Algorithm is an HMAC JWT algorithm name (HS256, HS384, HS512).
	Algorithm string

	// DefaultTTL is used when Issue receives a non-positive TTL.
	DefaultTTL time.Duration

	// Clock overrides the system clock.
	Clock Clock
}

// TokenService issues and validates signed, time-bound bearer tokens.
// Tokens are stateless: validity is computed from the signature and the
// embedded expiry on every request.
type TokenService struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	defaultTTL time.Duration
	clock      Clock
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		method:     method,
		defaultTTL: ttl,
		clock:      clock,
	}, nil
}

// Issue signs a token for subject that expires ttl from now.
func (s *TokenService) Issue(subject string, ttl time.Duration) (*IssuedToken, error) {
	if subject == "" {
		return nil, ErrEmptySubject
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.clock.Now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IssuedToken{
		Token:     signed,
		ExpiresAt: expiresAt,
		TTL:       ttl,
	}, nil
}

// Validate verifies the signature and expiry of token and returns its subject.
// Every failure is reported as domain.ErrInvalidToken.
func (s *TokenService) Validate(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.clock.Now().UTC() }),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	return claims.Subject, nil
}

// DefaultTTL returns the lifetime used when none is given.
func (s *TokenService) DefaultTTL() time.Duration {
	return s.defaultTTL
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return s.secret, nil
}
