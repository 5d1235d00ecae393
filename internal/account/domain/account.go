package domain

import (
	"errors"
	"time"
)

// Account is the durable identity record, local or federated. Email is unique
// across all accounts regardless of origin.
type Account struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  string // empty for federated-only accounts
	AuthProvider  AuthProvider
	ProviderID    string // provider subject id; empty for local-only accounts
	ImageURL      string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AuthProvider names the authentication origin of an account.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// Origin classifies how an account can currently authenticate.
type Origin int

const (
	// OriginLocal: password hash only.
	OriginLocal Origin = iota
	// OriginFederated: provider-linked, no password.
	OriginFederated
	// OriginLinked: local signup later linked to a federated provider.
	OriginLinked
)

// NewLocal returns a local account created at signup. Email verification starts false.
func NewLocal(name, email, passwordHash string, now time.Time) *Account {
	return &Account{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		AuthProvider: AuthProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewFederated returns an account created on first federated login. The
// provider already verified the email, so EmailVerified is true.
func NewFederated(provider AuthProvider, subjectID, name, email, imageURL string, now time.Time) *Account {
	return &Account{
		Name:          name,
		Email:         email,
		AuthProvider:  provider,
		ProviderID:    subjectID,
		ImageURL:      imageURL,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Origin reports the account's identity-origin class. Callers branch on this
// instead of probing optional fields.
func (a *Account) Origin() Origin {
	switch {
	case a.PasswordHash != "" && a.ProviderID != "":
		return OriginLinked
	case a.ProviderID != "":
		return OriginFederated
	default:
		return OriginLocal
	}
}

// Validate validates the account for persistence. Returns an error describing
// the first violated invariant.
func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("email is required")
	}
	if a.AuthProvider == "" {
		a.AuthProvider = AuthProviderLocal
	}
	if a.PasswordHash == "" && a.ProviderID == "" {
		return errors.New("account must have a password hash or a provider link")
	}
	if a.AuthProvider != AuthProviderLocal && a.ProviderID == "" {
		return errors.New("federated account must have a provider subject id")
	}
	return nil
}
