package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nowest-interior/admin-auth/internal/domain"
)

// MemoryStore keeps sessions in a process-local map. All mutation goes
// through the store's mutex; the map is never handed out. State does not
// survive a restart, which invalidates all sessions by design of the
// original backend.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	logger   *zap.Logger
	now      func() time.Time
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		logger:   logger,
		now:      time.Now,
	}
}

// Create registers a fresh session for the admin.
func (s *MemoryStore) Create(_ context.Context, adminID string) (string, error) {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.sessions[id] = &domain.Session{
		ID:             id,
		AdminID:        adminID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	s.mu.Unlock()

	s.logger.Info("session created", zap.String("admin_id", adminID))
	return id, nil
}

// Lookup resolves a session, refreshing its sliding window. An expired
// record is deleted on the spot.
func (s *MemoryStore) Lookup(_ context.Context, sessionID string, maxAge time.Duration) (string, bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.sessions[sessionID]
	if !exists {
		return "", false, nil
	}
	if record.ExpiredAt(now, maxAge) {
		delete(s.sessions, sessionID)
		s.logger.Info("session expired", zap.String("admin_id", record.AdminID))
		return "", false, nil
	}

	record.LastAccessedAt = now
	return record.AdminID, true, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return false, nil
	}
	delete(s.sessions, sessionID)
	return true, nil
}

// Sweep drops every session idle past maxAge.
func (s *MemoryStore) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, record := range s.sessions {
		if record.ExpiredAt(now, maxAge) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.logger.Info("swept expired sessions", zap.Int("count", removed))
	}
	return removed, nil
}

// Len reports how many sessions are currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
