package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestTokenManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager("test-secret", "HS256", ttl)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}
	return tm
}

func TestIssueAndVerify(t *testing.T) {
	tm := newTestTokenManager(t, 30*time.Minute)

	token, expiresAt, err := tm.Issue("admin-1", "alice", 0)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if until := time.Until(expiresAt); until < 29*time.Minute || until > 31*time.Minute {
		t.Errorf("expiry not near configured ttl: %v", until)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("fresh token should verify: %v", err)
	}
	if claims.Subject != "admin-1" {
		t.Errorf("subject = %q, want admin-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Errorf("username = %q, want alice", claims.Username)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	tm := newTestTokenManager(t, time.Nanosecond)

	token, _, err := tm.Issue("admin-1", "alice", 0)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := tm.Verify(token); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestVerifyForeignSecret(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	other, err := NewTokenManager("different-secret", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}

	token, _, err := other.Issue("admin-1", "alice", 0)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	if _, err := tm.Verify("not-a-token"); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestSharedSecretInterop(t *testing.T) {
	issuer := newTestTokenManager(t, time.Hour)
	verifier := newTestTokenManager(t, time.Hour)

	token, _, err := issuer.Issue("admin-1", "alice", 0)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if _, err := verifier.Verify(token); err != nil {
		t.Errorf("token should verify in a second process sharing the secret: %v", err)
	}
}

func TestPasswordResetToken(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)

	token, err := tm.IssuePasswordReset("alice@example.com")
	if err != nil {
		t.Fatalf("failed to issue reset token: %v", err)
	}

	email, err := tm.VerifyPasswordReset(token)
	if err != nil {
		t.Fatalf("fresh reset token should verify: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("email = %q, want alice@example.com", email)
	}
}

func TestPasswordResetRejectsAccessToken(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)

	// A validly signed, unexpired access token has no reset purpose tag
	// and must not pass the reset verifier.
	token, _, err := tm.Issue("admin-1", "alice", 0)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if _, err := tm.VerifyPasswordReset(token); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Errorf("expected ErrInvalidOrExpiredToken, got %v", err)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := NewTokenManager("secret", "HS9000", time.Hour); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
