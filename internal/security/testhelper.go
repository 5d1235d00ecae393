package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a key derived from a fixed
// test secret and the given lifetime. For unit tests only.
func NewTestTokenProvider(ttl time.Duration) *TokenProvider {
	key, err := DeriveSigningKey("unit-test-secret")
	if err != nil {
		panic(err)
	}
	return NewTokenProvider(key, ttl)
}
