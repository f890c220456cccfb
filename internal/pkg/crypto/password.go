// Package crypto provides cryptographic utilities for Storefront.
package crypto

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong indicates the plaintext exceeds bcrypt's 72 byte input limit.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// missingUserPassword seeds the digest VerifyMissing compares against.
const missingUserPassword = "storefront-missing-user"

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
// Costs outside bcrypt's range fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of the plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is a mismatch.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// VerifyMissing spends one bcrypt comparison at the hasher's cost and always
// reports false. Logins with no usable stored digest call it so that they take
// as long as a wrong password.
func (h *PasswordHasher) VerifyMissing(plaintext string) bool {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte(missingUserPassword), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
	return false
}

// HashPassword hashes with bcrypt.DefaultCost.
func HashPassword(plaintext string) (string, error) {
	return NewPasswordHasher(bcrypt.DefaultCost).Hash(plaintext)
}

// VerifyPassword reports whether plaintext matches digest.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
