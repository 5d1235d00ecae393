package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Sentinel token errors. All of them mean "not authenticated" to the caller;
// the distinction is for logging only and must never reach the client.
var (
	// ErrTokenBadSignature: signature does not verify under the current key.
	ErrTokenBadSignature = errors.New("invalid token signature")
	// ErrTokenMalformed: not a well-formed token, or subject is not an account id.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenExpired: signature valid but past expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenUnsupported: well-formed but signed with an unsupported method.
	ErrTokenUnsupported = errors.New("unsupported token")
)

// SessionClaims holds the claims of a session token: subject (account id),
// issued-at, and expiry.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates self-contained HS256 session tokens.
// The key is derived once (see DeriveSigningKey) and read-only afterwards, so
// a single provider is safe for concurrent use.
type TokenProvider struct {
	key []byte
	ttl time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given derived key.
// ttl is the configured token lifetime.
func NewTokenProvider(key []byte, ttl time.Duration) *TokenProvider {
	return &TokenProvider{key: key, ttl: ttl}
}

// Issue signs a session token for accountID with issued-at now and expiry
// now+ttl. Pure function of its inputs, the key, and the configured lifetime.
func (p *TokenProvider) Issue(accountID string, now time.Time) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(p.key)
}

// Validate verifies the token's signature and expiry against now and returns
// the account id from the subject claim. Failures are one of the sentinel
// token errors above; none of them is fatal to the caller.
func (p *TokenProvider) Validate(tokenString string, now time.Time) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenUnsupported
		}
		return p.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil {
		return "", classifyTokenError(err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", ErrTokenMalformed
	}
	return subjectAccountID(claims)
}

// Decode extracts the account id from the subject claim without verifying the
// signature. Trusted-path variant: callers must have validated the token
// already or obtained it from a trusted source.
func (p *TokenProvider) Decode(tokenString string) (string, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", ErrTokenMalformed
	}
	return subjectAccountID(claims)
}

// subjectAccountID parses the subject claim back into an account id.
func subjectAccountID(claims *SessionClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrTokenMalformed
	}
	if _, err := uuid.Parse(sub); err != nil {
		return "", ErrTokenMalformed
	}
	return sub, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return ErrTokenUnsupported
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrTokenMalformed
	}
}
