package auth

import "errors"

// Failure kinds for authentication. Callers map every one of these to the
// same unauthenticated response; the distinction exists for logging and
// tests only, never for the client.
var (
	ErrMalformedHeader         = errors.New("malformed authorization header")
	ErrMissingSubject          = errors.New("token has no subject claim")
	ErrAdminNotFound           = errors.New("admin not found")
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrInvalidOrExpiredToken   = errors.New("invalid or expired token")
	ErrInvalidOrExpiredSession = errors.New("invalid or expired session")
)

// ErrUsernameTaken is a directory-level conflict, surfaced distinctly to
// admin-creation callers rather than folded into the kinds above.
var ErrUsernameTaken = errors.New("username already exists")

// IsAuthFailure reports whether err is one of the authentication failure
// kinds (ErrUsernameTaken is not one).
func IsAuthFailure(err error) bool {
	for _, kind := range []error{
		ErrMalformedHeader,
		ErrMissingSubject,
		ErrAdminNotFound,
		ErrNotAuthenticated,
		ErrInvalidOrExpiredToken,
		ErrInvalidOrExpiredSession,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
