package service

import (
	"context"
	"errors"
	"testing"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
)

func googleProfile(sub, email, name, img string) Profile {
	return Profile{
		Provider:  domain.AuthProviderGoogle,
		SubjectID: sub,
		Email:     email,
		Name:      name,
		ImageURL:  img,
	}
}

func TestReconcile_CreatesFederatedAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := NewReconciler(store)

	account, outcome, err := r.Reconcile(ctx, googleProfile("sub-1", "ana@x.com", "Ana", "https://img/a"))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("outcome = %v, want OutcomeCreated", outcome)
	}
	if account.ID == "" {
		t.Error("created account must have an id")
	}
	if !account.EmailVerified {
		t.Error("federated account must be verified")
	}
	if account.PasswordHash != "" {
		t.Error("federated account must have no password hash")
	}
	if account.ProviderID != "sub-1" || account.AuthProvider != domain.AuthProviderGoogle {
		t.Errorf("provider linkage = (%q, %q), want (google, sub-1)", account.AuthProvider, account.ProviderID)
	}
	if len(store.byID) != 1 {
		t.Errorf("store has %d accounts, want 1", len(store.byID))
	}
}

func TestReconcile_UpdatesExistingAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := NewReconciler(store)

	first, _, err := r.Reconcile(ctx, googleProfile("sub-1", "ana@x.com", "Ana", "https://img/a"))
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	second, outcome, err := r.Reconcile(ctx, googleProfile("sub-1", "ana@x.com", "Ana Maria", "https://img/b"))
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if outcome != OutcomeFound {
		t.Errorf("outcome = %v, want OutcomeFound", outcome)
	}
	if second.ID != first.ID {
		t.Errorf("ids differ: %q vs %q; same email must resolve to the same account", first.ID, second.ID)
	}
	if second.Name != "Ana Maria" || second.ImageURL != "https://img/b" {
		t.Errorf("profile not refreshed: name=%q image=%q", second.Name, second.ImageURL)
	}
}

func TestReconcile_LinksLocalAccount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newTestService(store)
	r := NewReconciler(store)

	id, err := svc.Register(ctx, "Ana", "ana@x.com", "Secret123!")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	account, outcome, err := r.Reconcile(ctx, googleProfile("sub-7", "ana@x.com", "Ana G", ""))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if outcome != OutcomeFound {
		t.Errorf("outcome = %v, want OutcomeFound", outcome)
	}
	if account.ID != id {
		t.Errorf("reconciled onto %q, want local account %q", account.ID, id)
	}
	if account.PasswordHash == "" {
		t.Error("password hash must survive federation linking")
	}
	if account.Origin() != domain.OriginLinked {
		t.Errorf("Origin() = %v, want OriginLinked", account.Origin())
	}

	// Password login still works after linking.
	if _, err := svc.Authenticate(ctx, "ana@x.com", "Secret123!"); err != nil {
		t.Errorf("Authenticate after linking: %v", err)
	}
}

func TestReconcile_KeepsExistingLinkage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	r := NewReconciler(store)

	if _, _, err := r.Reconcile(ctx, googleProfile("sub-1", "ana@x.com", "Ana", "")); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	account, _, err := r.Reconcile(ctx, googleProfile("sub-other", "ana@x.com", "Ana", ""))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if account.ProviderID != "sub-1" {
		t.Errorf("ProviderID = %q; an existing linkage must not be overwritten", account.ProviderID)
	}
}

func TestReconcile_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.saveErr = errors.New("connection refused")
	r := NewReconciler(store)

	_, _, err := r.Reconcile(ctx, googleProfile("sub-1", "ana@x.com", "Ana", ""))
	if !errors.Is(err, ErrReconciliation) {
		t.Fatalf("Reconcile = %v, want ErrReconciliation", err)
	}
}

func TestReconcile_MissingEmail(t *testing.T) {
	ctx := context.Background()
	r := NewReconciler(newMemStore())

	_, _, err := r.Reconcile(ctx, googleProfile("sub-1", "  ", "Ana", ""))
	if !errors.Is(err, ErrReconciliation) {
		t.Fatalf("Reconcile = %v, want ErrReconciliation", err)
	}
}
