package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MinSecretLength is the minimum accepted length in bytes of a token signing secret.
const MinSecretLength = 32

// Key generation errors
var (
	// ErrWeakSecret indicates a signing secret shorter than MinSecretLength.
	ErrWeakSecret = errors.New("signing secret must be at least 32 bytes")
)

// GenerateSecret returns n random bytes encoded as hex.
// Used to bootstrap token signing secrets.
func GenerateSecret(n int) (string, error) {
	if n < MinSecretLength {
		n = MinSecretLength
	}
	key := make([]byte, n)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// GenerateToken returns a URL-safe random string with n bytes of entropy.
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidateSecret checks that a configured signing secret is long enough.
func ValidateSecret(secret string) error {
	if len(strings.TrimSpace(secret)) < MinSecretLength {
		return ErrWeakSecret
	}
	return nil
}
