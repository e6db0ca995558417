package session

import (
	"context"
	"time"
)

// Store holds authenticated admin sessions keyed by an opaque random
// identifier. The identifier is safe to use verbatim as a cookie value.
//
// Sessions expire on a sliding window: a lookup within maxAge of the last
// access refreshes the window, and a lookup past it removes the record.
type Store interface {
	// Create registers a new session for the admin and returns its identifier.
	Create(ctx context.Context, adminID string) (string, error)

	// Lookup resolves a session to its admin ID, refreshing the sliding
	// window. ok is false when the session does not exist or has expired;
	// err reports backend failures only, never a miss.
	Lookup(ctx context.Context, sessionID string, maxAge time.Duration) (adminID string, ok bool, err error)

	// Delete removes the session, reporting whether it existed.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// Sweep removes every session idle for longer than maxAge and returns
	// how many were removed.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}
