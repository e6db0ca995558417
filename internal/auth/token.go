package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Purpose tag claimed by password reset tokens. Reset verification
// rejects tokens carrying any other purpose, even when otherwise valid.
const passwordResetPurpose = "password_reset"

const passwordResetTTL = time.Hour

// TokenManager issues and validates signed admin tokens. It is stateless:
// any process configured with the same secret and algorithm can issue and
// verify tokens for the same identity.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewTokenManager builds a manager for the given secret, signing algorithm
// name (e.g. "HS256") and default access-token lifetime.
func NewTokenManager(secret, algorithm string, ttl time.Duration) (*TokenManager, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// Claims describes the access token payload.
type Claims struct {
	Username string `json:"username,omitempty"`
	Purpose  string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Issue builds and signs an access token for the admin. A non-positive ttl
// selects the configured default lifetime.
func (tm *TokenManager) Issue(adminID, username string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = tm.ttl
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(tm.method, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify validates the signature and expiry and returns the claims. Every
// failure mode collapses into ErrInvalidOrExpiredToken so callers cannot
// tell a bad signature from an expired token.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != tm.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// IssuePasswordReset signs a short-lived token whose subject is the email
// address a reset was requested for.
func (tm *TokenManager) IssuePasswordReset(email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Purpose: passwordResetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(passwordResetTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(tm.method, claims).SignedString(tm.secret)
}

// VerifyPasswordReset validates a reset token and returns the email it was
// issued for. Tokens missing the reset purpose tag are rejected even when
// their signature and expiry are valid.
func (tm *TokenManager) VerifyPasswordReset(tokenStr string) (string, error) {
	claims, err := tm.Verify(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Purpose != passwordResetPurpose {
		return "", ErrInvalidOrExpiredToken
	}
	return claims.Subject, nil
}
