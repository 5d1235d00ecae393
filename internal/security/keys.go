package security

import (
	"crypto/sha256"
	"errors"
)

// ErrEmptySecret is returned when the configured signing secret is empty.
var ErrEmptySecret = errors.New("signing secret must not be empty")

// DeriveSigningKey derives the HS256 signing key from the configured secret by
// taking its SHA-256 digest. The digest is always exactly 256 bits, so a
// human-chosen secret of any length yields key material of the size the
// algorithm requires, and a too-short raw secret is never used directly.
// Derive once at startup; the returned key is read-only for the process lifetime.
func DeriveSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}
