package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nowest-interior/admin-auth/internal/domain"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis so multiple instances can share them.
// The key TTL is the sliding window: create sets it, every lookup
// refreshes it, and Redis drops idle keys itself. The stored payload is
// written once at creation; the TTL, not the record's timestamps, is
// authoritative for expiry.
type RedisStore struct {
	client *redis.Client
	maxAge time.Duration
}

// NewRedisStore builds a store over an existing client. maxAge bounds the
// TTL applied when a session is created, before any lookup refreshes it.
func NewRedisStore(client *redis.Client, maxAge time.Duration) *RedisStore {
	return &RedisStore{client: client, maxAge: maxAge}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Create registers a fresh session for the admin.
func (s *RedisStore) Create(ctx context.Context, adminID string) (string, error) {
	id := uuid.NewString()
	now := time.Now()

	record := &domain.Session{
		ID:             id,
		AdminID:        adminID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(id), data, s.maxAge).Err(); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup resolves a session and refreshes its TTL. The read and the
// refresh are a single GETEX so a concurrent Delete can never be undone
// by a lookup writing the session back.
func (s *RedisStore) Lookup(ctx context.Context, sessionID string, maxAge time.Duration) (string, bool, error) {
	val, err := s.client.GetEx(ctx, redisKey(sessionID), maxAge).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	var record domain.Session
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return "", false, fmt.Errorf("unmarshal session: %w", err)
	}
	return record.AdminID, true, nil
}

// Delete removes the session if present.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) (bool, error) {
	removed, err := s.client.Del(ctx, redisKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// Sweep is a no-op: Redis expires idle keys on its own.
func (s *RedisStore) Sweep(_ context.Context, _ time.Duration) (int, error) {
	return 0, nil
}
