package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/scrypt"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	// MinCost keeps bcrypt fast enough for tests.
	return NewPasswordHasher(4, zap.NewNop())
}

func TestHashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	hashed := h.Hash("secret123")
	if hashed == "secret123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hashed, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hashed)
	}

	if !h.Verify("secret123", hashed) {
		t.Error("correct password should verify")
	}
	if h.Verify("wrong", hashed) {
		t.Error("wrong password should not verify")
	}
}

func TestVerifyDistinctPasswords(t *testing.T) {
	h := newTestHasher(t)

	h1 := h.Hash("password-one")
	h2 := h.Hash("password-two")

	if h.Verify("password-one", h2) {
		t.Error("password-one should not verify against hash of password-two")
	}
	if h.Verify("password-two", h1) {
		t.Error("password-two should not verify against hash of password-one")
	}
}

func TestVerifyLegacyScryptFormat(t *testing.T) {
	h := newTestHasher(t)

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	derived, err := scrypt.Key([]byte("legacy-pass"), salt, legacyScryptN, legacyScryptR, legacyScryptP, 64)
	if err != nil {
		t.Fatalf("failed to derive scrypt key: %v", err)
	}
	stored := hex.EncodeToString(derived) + "." + hex.EncodeToString(salt)

	if !h.Verify("legacy-pass", stored) {
		t.Error("legacy scrypt hash should verify without migration")
	}
	if h.Verify("not-the-password", stored) {
		t.Error("wrong password should not verify against legacy hash")
	}
}

func TestVerifyFallbackSHA256(t *testing.T) {
	h := newTestHasher(t)

	stored := sha256Hex("fallback-pass")
	if !h.Verify("fallback-pass", stored) {
		t.Error("sha256 fallback hash should verify")
	}
	if h.Verify("other", stored) {
		t.Error("wrong password should not verify against fallback hash")
	}
}

func TestVerifyPlaintextLastResort(t *testing.T) {
	h := newTestHasher(t)

	// Legacy shim: a stored value that was never hashed still matches by
	// exact equality, and only by exact equality.
	if !h.Verify("plain-value", "plain-value") {
		t.Error("exact plaintext equality should match as last resort")
	}
	if h.Verify("plain-value", "different") {
		t.Error("non-equal plaintext should not match")
	}
}
