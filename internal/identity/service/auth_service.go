// Package service implements the authentication core: local email/password
// authentication, federated identity reconciliation, and session token
// issuance on top of the account store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
	"github.com/resourcetech/meajuda-auth/internal/account/repository"
	"github.com/resourcetech/meajuda-auth/internal/security"
	"github.com/resourcetech/meajuda-auth/internal/telemetry"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password, so a
	// caller cannot tell whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned by Register for an already-registered email.
	// It is the one auth error surfaced with specific wording.
	ErrEmailTaken = errors.New("email already registered")
	// ErrReconciliation wraps persistence failures during federated login.
	ErrReconciliation = errors.New("federated identity reconciliation failed")
	// ErrNotFound is returned when an otherwise-valid token references an
	// account that no longer resolves.
	ErrNotFound = errors.New("account not found")
)

// AuthService implements the local authenticator and the session issuance
// flows (login, signup, federated login). All operations are request-scoped;
// the only process-wide state is the token provider's derived key.
type AuthService struct {
	store      repository.Store
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	reconciler *Reconciler
	events     telemetry.AuthEventEmitter
	tracer     trace.Tracer
	logins     metric.Int64Counter
}

// NewAuthService returns an AuthService with the given dependencies. events
// may be nil; auth events are then dropped.
func NewAuthService(
	store repository.Store,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	reconciler *Reconciler,
	events telemetry.AuthEventEmitter,
) *AuthService {
	if events == nil {
		events = telemetry.NewAuthEventEmitter(nil)
	}
	logins, _ := otel.Meter("meajuda.auth").Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome"))
	return &AuthService{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		reconciler: reconciler,
		events:     events,
		tracer:     otel.Tracer("meajuda.auth"),
		logins:     logins,
	}
}

// Authenticate verifies email and password against the store and returns the
// account id. Unknown email, federated-only account, and wrong password all
// return ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	account, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("looking up account: %w", err)
	}
	if account == nil || account.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return account.ID, nil
}

// Register creates a local account with a freshly hashed password. Returns
// ErrEmailTaken when the email is already registered; the database's unique
// constraint remains the authoritative guard against concurrent duplicates.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", errors.New("email is required")
	}
	taken, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return "", ErrEmailTaken
	}
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	account := domain.NewLocal(strings.TrimSpace(name), email, hash, time.Now().UTC())
	saved, err := s.store.Save(ctx, account)
	if err != nil {
		return "", fmt.Errorf("creating account: %w", err)
	}
	return saved.ID, nil
}

// Login authenticates the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	accountID, err := s.Authenticate(ctx, email, password)
	if err != nil {
		s.recordLogin(ctx, "failure")
		s.events.Emit(ctx, telemetry.AuthEvent{
			Email:  normalizeEmail(email),
			Action: telemetry.ActionLoginFailure,
		})
		return "", err
	}

	token, err := s.tokens.Issue(accountID, time.Now().UTC())
	if err != nil {
		s.recordLogin(ctx, "failure")
		return "", fmt.Errorf("issuing token: %w", err)
	}
	s.recordLogin(ctx, "success")
	s.events.Emit(ctx, telemetry.AuthEvent{
		AccountID: accountID,
		Email:     normalizeEmail(email),
		Action:    telemetry.ActionLoginSuccess,
	})
	return token, nil
}

// Signup registers a local account. No token is issued; the caller must log in
// explicitly afterwards.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	accountID, err := s.Register(ctx, name, email, password)
	if err != nil {
		return "", err
	}
	s.events.Emit(ctx, telemetry.AuthEvent{
		AccountID: accountID,
		Email:     normalizeEmail(email),
		Action:    telemetry.ActionSignup,
	})
	return accountID, nil
}

// FederatedLogin reconciles the provider profile onto an account and issues a
// session token for it. The profile is trusted: the provider authenticated the
// user out-of-band before this is called.
func (s *AuthService) FederatedLogin(ctx context.Context, profile Profile) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.FederatedLogin")
	defer span.End()

	account, _, err := s.reconciler.Reconcile(ctx, profile)
	if err != nil {
		s.recordLogin(ctx, "failure")
		return "", err
	}
	token, err := s.tokens.Issue(account.ID, time.Now().UTC())
	if err != nil {
		s.recordLogin(ctx, "failure")
		return "", fmt.Errorf("issuing token: %w", err)
	}
	s.recordLogin(ctx, "success")
	s.events.Emit(ctx, telemetry.AuthEvent{
		AccountID: account.ID,
		Email:     account.Email,
		Action:    telemetry.ActionFederatedLogin,
		Provider:  string(profile.Provider),
	})
	return token, nil
}

// ResolveAccount returns the account for an id extracted from a validated
// token. ErrNotFound when the account no longer exists.
func (s *AuthService) ResolveAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if account == nil {
		return nil, ErrNotFound
	}
	return account, nil
}

func (s *AuthService) recordLogin(ctx context.Context, outcome string) {
	if s.logins != nil {
		s.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// normalizeEmail trims surrounding whitespace. Emails are matched exactly as
// stored; lookup is case-sensitive.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
