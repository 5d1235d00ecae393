// Package handler exposes the authentication flows over HTTP: local login and
// signup, and the Google federated login redirect/callback pair.
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resourcetech/meajuda-auth/internal/identity/service"
)

const stateCookie = "oauth2_state"

// ProviderClient is the federated-provider client the callback flow needs.
type ProviderClient interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (service.Profile, error)
}

// AuthHandler handles the authentication endpoints.
type AuthHandler struct {
	auth        *service.AuthService
	provider    ProviderClient
	redirectURI string // authorized post-login redirect base
}

// NewAuthHandler returns an AuthHandler. provider may be nil when federated
// login is not configured; its routes then respond 404.
func NewAuthHandler(auth *service.AuthService, provider ProviderClient, redirectURI string) *AuthHandler {
	return &AuthHandler{auth: auth, provider: provider, redirectURI: redirectURI}
}

// Register registers the auth routes on mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	if h.provider != nil {
		mux.HandleFunc("GET /oauth2/authorize/google", h.handleAuthorize)
		mux.HandleFunc("GET /oauth2/callback/google", h.handleCallback)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid_json")
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// Same response for unknown email and wrong password.
			unauthorized(w, "invalid_credentials")
			return
		}
		log.Printf("login: %v", err)
		serverErr(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid_json")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(w, "email and password are required")
		return
	}
	id, err := h.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "Email address already in use."})
			return
		}
		log.Printf("signup: %v", err)
		serverErr(w)
		return
	}
	w.Header().Set("Location", "/api/accounts/"+id)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleAuthorize starts the federated flow: it sets a state cookie and
// redirects the user agent to the provider's consent page.
func (h *AuthHandler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		serverErr(w)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/oauth2/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// handleCallback finishes the federated flow: state check, code exchange,
// reconciliation, token issuance, then a redirect carrying the token. Failures
// redirect with a generic error; provider or store details never reach the client.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || state == "" || cookie.Value != state {
		h.redirectError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "authentication_failed")
		return
	}

	profile, err := h.provider.FetchProfile(r.Context(), code)
	if err != nil {
		log.Printf("federated callback: %v", err)
		h.redirectError(w, r, "authentication_failed")
		return
	}

	token, err := h.auth.FederatedLogin(r.Context(), profile)
	if err != nil {
		log.Printf("federated login: %v", err)
		h.redirectError(w, r, "authentication_failed")
		return
	}

	http.Redirect(w, r, appendQuery(h.redirectURI, "token", token), http.StatusFound)
}

func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, reason string) {
	http.Redirect(w, r, appendQuery(h.redirectURI, "error", reason), http.StatusFound)
}

// appendQuery appends key=value to the configured redirect base, preserving
// any query it already carries.
func appendQuery(base, key, value string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// JSON response helpers.

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": msg})
}

func serverErr(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_server_error"})
}
