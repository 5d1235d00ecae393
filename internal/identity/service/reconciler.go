package service

import (
	"context"
	"fmt"
	"time"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
	"github.com/resourcetech/meajuda-auth/internal/account/repository"
)

// Profile is the user profile asserted by a federated provider after it has
// authenticated the user.
type Profile struct {
	Provider  domain.AuthProvider
	SubjectID string
	Email     string
	Name      string
	ImageURL  string
}

// Outcome tags the result of a reconciliation so callers branch explicitly
// instead of re-checking the store.
type Outcome int

const (
	// OutcomeFound: an account with the profile's email already existed and
	// was refreshed.
	OutcomeFound Outcome = iota
	// OutcomeCreated: no account existed for the email; a federated one was created.
	OutcomeCreated
)

// Reconciler maps federated provider profiles onto local accounts with
// find-or-create-or-update semantics, keyed by email.
//
// Keying by email (not provider subject id) means a federated login after a
// prior local signup, or logins from two providers asserting the same email,
// resolve to the same account. If a provider ever reassigns an email to a
// different person, the identities merge; that is the inherited behavior of
// this design, kept deliberately.
type Reconciler struct {
	store repository.Store
}

// NewReconciler returns a Reconciler over the given store.
func NewReconciler(store repository.Store) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile resolves the profile to an account. An existing account gets its
// name and avatar refreshed (last login wins); password hash, verified flag,
// and an already-set provider linkage stay untouched. A new account is created
// with the provider linkage, no password, and the email pre-verified by the
// provider. Persistence failures are wrapped in ErrReconciliation and end the
// login attempt; there is no retry.
func (r *Reconciler) Reconcile(ctx context.Context, profile Profile) (*domain.Account, Outcome, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, 0, fmt.Errorf("%w: provider profile has no email", ErrReconciliation)
	}

	existing, err := r.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}

	if existing != nil {
		existing.Name = profile.Name
		existing.ImageURL = profile.ImageURL
		if existing.ProviderID == "" {
			existing.AuthProvider = profile.Provider
			existing.ProviderID = profile.SubjectID
		}
		saved, err := r.store.Save(ctx, existing)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrReconciliation, err)
		}
		return saved, OutcomeFound, nil
	}

	account := domain.NewFederated(profile.Provider, profile.SubjectID, profile.Name, email, profile.ImageURL, time.Now().UTC())
	saved, err := r.store.Save(ctx, account)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	return saved, OutcomeCreated, nil
}
