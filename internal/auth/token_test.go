package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/storefront/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeClock is a settable Clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTokenService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := NewTokenService(TokenConfig{Secret: testSecret, Clock: clock})
	require.NoError(t, err)
	return svc, clock
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc, _ := newTestTokenService(t)

	issued, err := svc.Issue("alice", 30*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.Equal(t, 30*time.Minute, issued.TTL)
	require.Equal(t, time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC), issued.ExpiresAt)

	subject, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", subject)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	svc, clock := newTestTokenService(t)

	issued, err := svc.Issue("alice", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTokenTTL, issued.TTL)

	clock.Advance(DefaultTokenTTL - time.Second)
	_, err = svc.Validate(issued.Token)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = svc.Validate(issued.Token)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_Expiry(t *testing.T) {
	tests := []struct {
		name    string
		advance time.Duration
		valid   bool
	}{
		{name: "immediately", advance: 0, valid: true},
		{name: "just before expiry", advance: 5*time.Minute - time.Second, valid: true},
		{name: "at expiry", advance: 5 * time.Minute, valid: false},
		{name: "after expiry", advance: 5*time.Minute + time.Second, valid: false},
		{name: "long after expiry", advance: 24 * time.Hour, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, clock := newTestTokenService(t)

			issued, err := svc.Issue("bob", 5*time.Minute)
			require.NoError(t, err)

			clock.Advance(tt.advance)
			subject, err := svc.Validate(issued.Token)
			if tt.valid {
				require.NoError(t, err)
				require.Equal(t, "bob", subject)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidToken)
			require.Empty(t, subject)
		})
	}
}

func TestTokenService_TamperedSignature(t *testing.T) {
	svc, _ := newTestTokenService(t)

	issued, err := svc.Issue("alice", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Validate(tampered)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_TamperedClaims(t *testing.T) {
	svc, _ := newTestTokenService(t)

	issued, err := svc.Issue("alice", time.Hour)
	require.NoError(t, err)

	other, err := svc.Issue("mallory", time.Hour)
	require.NoError(t, err)

	a := strings.Split(issued.Token, ".")
	m := strings.Split(other.Token, ".")
	spliced := a[0] + "." + m[1] + "." + a[2]

	_, err = svc.Validate(spliced)
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsInvalidTokens(t *testing.T) {
	svc, clock := newTestTokenService(t)

	otherSvc, err := NewTokenService(TokenConfig{Secret: "another-secret-another-secret-xx", Clock: clock})
	require.NoError(t, err)
	foreign, err := otherSvc.Issue("alice", time.Hour)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "two segments", token: "abc.def"},
		{name: "foreign secret", token: foreign.Token},
		{name: "missing subject", token: noSubject},
		{name: "missing expiry", token: noExpiry},
		{name: "alg none", token: unsigned},
		{name: "different algorithm", token: hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			require.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestNewTokenService_Config(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	require.ErrorIs(t, err, ErrEmptySecret)

	_, err = NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "RS256"})
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "bogus"})
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	svc, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "HS384", DefaultTTL: time.Hour})
	require.NoError(t, err)
	require.Equal(t, time.Hour, svc.DefaultTTL())

	issued, err := svc.Issue("carol", 0)
	require.NoError(t, err)
	subject, err := svc.Validate(issued.Token)
	require.NoError(t, err)
	require.Equal(t, "carol", subject)
}

func TestTokenService_IssueEmptySubject(t *testing.T) {
	svc, _ := newTestTokenService(t)

	_, err := svc.Issue("", time.Minute)
	require.ErrorIs(t, err, ErrEmptySubject)
}
