// Package server assembles the HTTP routes and middleware for the auth API.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
	"github.com/resourcetech/meajuda-auth/internal/identity/handler"
	"github.com/resourcetech/meajuda-auth/internal/identity/service"
	"github.com/resourcetech/meajuda-auth/internal/security"
	"github.com/resourcetech/meajuda-auth/internal/server/middleware"
)

// Deps holds the dependencies for the HTTP routes.
type Deps struct {
	// Auth is the auth service backing login, signup, and federated login.
	Auth *service.AuthService
	// Tokens validates Bearer tokens on protected routes.
	Tokens *security.TokenProvider
	// Provider is the federated-provider client. If nil, the OAuth2 routes are
	// not registered.
	Provider handler.ProviderClient
	// RedirectURI is the authorized post-login redirect base for the federated flow.
	RedirectURI string
	// DB is pinged by /healthz readiness. If nil, the ping is skipped.
	DB *sql.DB
}

// NewHandler builds the route tree: public auth endpoints, the health check,
// and the protected account routes behind RequireAuth.
func NewHandler(deps Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Provider, deps.RedirectURI)
	authHandler.Register(mux)

	mux.HandleFunc("GET /healthz", healthz(deps.DB))

	requireAuth := middleware.RequireAuth(deps.Tokens)
	mux.Handle("GET /api/me", requireAuth(currentAccount(deps.Auth)))

	return mux
}

func healthz(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

type accountResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"imageUrl,omitempty"`
	Provider      string `json:"provider,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// currentAccount returns the profile of the account behind the validated token.
func currentAccount(auth *service.AuthService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetAccountID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		account, err := auth.ResolveAccount(r.Context(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				http.Error(w, "account not found", http.StatusNotFound)
				return
			}
			log.Printf("resolve account: %v", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		writeAccount(w, account)
	})
}

func writeAccount(w http.ResponseWriter, a *domain.Account) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(accountResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		ImageURL:      a.ImageURL,
		Provider:      string(a.AuthProvider),
		EmailVerified: a.EmailVerified,
	})
}
