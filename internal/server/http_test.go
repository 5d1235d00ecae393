package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
	"github.com/resourcetech/meajuda-auth/internal/identity/service"
	"github.com/resourcetech/meajuda-auth/internal/security"
)

type stubStore struct {
	accounts map[string]*domain.Account // keyed by id
}

func (s *stubStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if a, ok := s.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (s *stubStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubStore) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	cp := *a
	s.accounts[cp.ID] = &cp
	return a, nil
}

func (s *stubStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	a, err := s.GetByEmail(ctx, email)
	return a != nil, err
}

func newTestDeps(store *stubStore) Deps {
	tokens := security.NewTestTokenProvider(time.Hour)
	auth := service.NewAuthService(store, security.NewHasher(4), tokens, service.NewReconciler(store), nil)
	return Deps{Auth: auth, Tokens: tokens}
}

func TestHealthz(t *testing.T) {
	h := NewHandler(newTestDeps(&stubStore{accounts: map[string]*domain.Account{}}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCurrentAccount(t *testing.T) {
	account := &domain.Account{
		ID:           uuid.New().String(),
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: "x",
		AuthProvider: domain.AuthProviderLocal,
	}
	store := &stubStore{accounts: map[string]*domain.Account{account.ID: account}}
	deps := newTestDeps(store)
	h := NewHandler(deps)

	token, err := deps.Tokens.Issue(account.ID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got accountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != account.ID || got.Email != "ana@x.com" {
		t.Errorf("body = %+v", got)
	}
}

func TestCurrentAccount_Unauthenticated(t *testing.T) {
	h := NewHandler(newTestDeps(&stubStore{accounts: map[string]*domain.Account{}}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCurrentAccount_Gone(t *testing.T) {
	deps := newTestDeps(&stubStore{accounts: map[string]*domain.Account{}})
	h := NewHandler(deps)

	token, err := deps.Tokens.Issue(uuid.New().String(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
