package domain

import (
	"testing"
	"time"
)

func TestNewLocal(t *testing.T) {
	now := time.Now().UTC()
	a := NewLocal("Ana", "ana@x.com", "$2a$12$hash", now)

	if a.AuthProvider != AuthProviderLocal {
		t.Errorf("AuthProvider = %q, want local", a.AuthProvider)
	}
	if a.EmailVerified {
		t.Error("local signup must start unverified")
	}
	if a.Origin() != OriginLocal {
		t.Errorf("Origin() = %v, want OriginLocal", a.Origin())
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewFederated(t *testing.T) {
	now := time.Now().UTC()
	a := NewFederated(AuthProviderGoogle, "sub-123", "Ana", "ana@x.com", "https://img", now)

	if !a.EmailVerified {
		t.Error("federated account must be verified")
	}
	if a.PasswordHash != "" {
		t.Error("federated account must not have a password hash")
	}
	if a.Origin() != OriginFederated {
		t.Errorf("Origin() = %v, want OriginFederated", a.Origin())
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestOrigin_Linked(t *testing.T) {
	a := &Account{
		Email:        "ana@x.com",
		PasswordHash: "$2a$12$hash",
		AuthProvider: AuthProviderLocal,
		ProviderID:   "sub-123",
	}
	if a.Origin() != OriginLinked {
		t.Errorf("Origin() = %v, want OriginLinked", a.Origin())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{"missing email", Account{PasswordHash: "h"}, true},
		{"no credentials at all", Account{Email: "a@x.com"}, true},
		{"federated without subject id", Account{Email: "a@x.com", AuthProvider: AuthProviderGoogle, PasswordHash: "h"}, true},
		{"valid local", Account{Email: "a@x.com", AuthProvider: AuthProviderLocal, PasswordHash: "h"}, false},
		{"valid federated", Account{Email: "a@x.com", AuthProvider: AuthProviderGoogle, ProviderID: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
