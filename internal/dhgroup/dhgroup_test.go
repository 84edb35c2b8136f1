package dhgroup

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// TestRoundTrip is invariant 3 from spec.md §8: shared_secret(A, B.public)
// == shared_secret(B, A.public) for any two locally-generated keypairs.
func TestRoundTrip(t *testing.T) {
	a, err := GenerateRandom()
	if err != nil {
		t.Fatalf("generate a: %v", err)
	}
	b, err := GenerateRandom()
	if err != nil {
		t.Fatalf("generate b: %v", err)
	}

	ssA, err := a.SharedSecret(b.PublicKey())
	if err != nil {
		t.Fatalf("shared secret a: %v", err)
	}
	ssB, err := b.SharedSecret(a.PublicKey())
	if err != nil {
		t.Fatalf("shared secret b: %v", err)
	}

	if !bytes.Equal(ssA, ssB) {
		t.Fatalf("shared secrets differ:\na=%x\nb=%x", ssA, ssB)
	}
}

func TestGenerateDeterministicFromZeroRNG(t *testing.T) {
	zero := bytes.NewReader(make([]byte, privateKeyLen))
	k, err := Generate(zero)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// private == 0 means public == generator^0 mod prime == 1.
	if len(k.public) != 1 || k.public[0] != 1 {
		t.Fatalf("expected public key [1] for zero private key, got %x", k.public)
	}
}

func TestPublicKeyNotPadded(t *testing.T) {
	k, err := Generate(rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(k.PublicKey()) > 96 {
		t.Fatalf("public key longer than prime: %d bytes", len(k.PublicKey()))
	}
}

func TestSharedSecretRejectsEmptyRemote(t *testing.T) {
	k, err := GenerateRandom()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := k.SharedSecret(nil); err == nil {
		t.Fatal("expected error for empty remote public value")
	}
}
