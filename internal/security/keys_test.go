package security

import (
	"bytes"
	"testing"
)

func TestDeriveSigningKey(t *testing.T) {
	k1, err := DeriveSigningKey("short")
	if err != nil {
		t.Fatalf("DeriveSigningKey: %v", err)
	}
	if len(k1) != 32 {
		t.Errorf("key length = %d, want 32", len(k1))
	}

	k2, err := DeriveSigningKey("short")
	if err != nil {
		t.Fatalf("DeriveSigningKey: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Error("derivation must be deterministic for the same secret")
	}

	k3, _ := DeriveSigningKey("a different secret of arbitrary length that is quite long indeed")
	if len(k3) != 32 {
		t.Errorf("key length = %d, want 32", len(k3))
	}
	if bytes.Equal(k1, k3) {
		t.Error("different secrets must derive different keys")
	}
}

func TestDeriveSigningKey_Empty(t *testing.T) {
	if _, err := DeriveSigningKey(""); err == nil {
		t.Fatal("empty secret must be rejected")
	}
}
