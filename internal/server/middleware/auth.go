// Package middleware provides the HTTP middleware for protected routes.
package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/resourcetech/meajuda-auth/internal/security"
)

const bearerPrefix = "bearer "

// RequireAuth validates the Bearer token from the Authorization header and
// sets the account id in the request context. Any failure is a generic 401;
// the validation distinction (expired, bad signature, malformed, unsupported)
// is logged only.
func RequireAuth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				deny(w)
				return
			}
			accountID, err := tokens.Validate(token, time.Now().UTC())
			if err != nil {
				logValidation(err)
				deny(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
		})
	}
}

// extractBearer returns the Bearer token from the header value, or "" if
// missing or malformed. The scheme match is case-insensitive.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

func logValidation(err error) {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		log.Printf("auth: expired token")
	case errors.Is(err, security.ErrTokenBadSignature):
		log.Printf("auth: invalid token signature")
	case errors.Is(err, security.ErrTokenUnsupported):
		log.Printf("auth: unsupported token")
	default:
		log.Printf("auth: malformed token")
	}
}

func deny(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid authorization"})
}
