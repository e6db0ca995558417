package domain

import "time"

// Session maps an opaque identifier to an admin with sliding expiry.
// Sessions live only in the session store; they are not persisted and a
// process restart invalidates all of them.
type Session struct {
	ID             string    `json:"id"`
	AdminID        string    `json:"admin_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// ExpiredAt reports whether the session has outlived maxAge measured from
// its last access, relative to now.
func (s *Session) ExpiredAt(now time.Time, maxAge time.Duration) bool {
	if s == nil {
		return true
	}
	return now.Sub(s.LastAccessedAt) > maxAge
}
