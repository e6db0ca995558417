package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T, maxAge time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, maxAge), mr
}

func TestRedisCreateAndLookup(t *testing.T) {
	store, _ := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	id, err := store.Create(ctx, "admin-1")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	for i := 0; i < 3; i++ {
		adminID, ok, err := store.Lookup(ctx, id, time.Hour)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !ok || adminID != "admin-1" {
			t.Fatalf("lookup = (%q, %v), want (admin-1, true)", adminID, ok)
		}
	}
}

func TestRedisLookupUnknownSession(t *testing.T) {
	store, _ := newRedisTestStore(t, time.Hour)

	_, ok, err := store.Lookup(context.Background(), "no-such-session", time.Hour)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ok {
		t.Error("unknown session should miss")
	}
}

func TestRedisSlidingExpiry(t *testing.T) {
	maxAge := 100 * time.Second
	store, mr := newRedisTestStore(t, maxAge)
	ctx := context.Background()

	id, _ := store.Create(ctx, "admin-1")

	// An access inside the window pushes the TTL out again.
	mr.FastForward(60 * time.Second)
	if _, ok, _ := store.Lookup(ctx, id, maxAge); !ok {
		t.Fatal("session should survive an access inside the window")
	}
	mr.FastForward(80 * time.Second)
	if _, ok, _ := store.Lookup(ctx, id, maxAge); !ok {
		t.Fatal("refreshed session should still be alive 80s after last access")
	}

	// Idle past the window: the key is gone.
	mr.FastForward(maxAge + time.Second)
	if _, ok, _ := store.Lookup(ctx, id, maxAge); ok {
		t.Fatal("idle session should have expired")
	}
}

func TestRedisDelete(t *testing.T) {
	store, _ := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	id, _ := store.Create(ctx, "admin-1")

	existed, err := store.Delete(ctx, id)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !existed {
		t.Error("delete should report the session existed")
	}

	existed, _ = store.Delete(ctx, id)
	if existed {
		t.Error("second delete should report a miss")
	}
}

func TestRedisDeletedSessionStaysDeleted(t *testing.T) {
	store, mr := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	id, _ := store.Create(ctx, "admin-1")

	// Lookups racing a logout must never write the session back: the
	// refresh is a single GETEX, so once the key is deleted no lookup
	// can recreate it.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = store.Lookup(ctx, id, time.Hour)
		}()
	}
	if _, err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	wg.Wait()

	if adminID, ok, _ := store.Lookup(ctx, id, time.Hour); ok {
		t.Fatalf("deleted session resolved to %q after logout", adminID)
	}
	if mr.Exists(redisKey(id)) {
		t.Fatal("deleted session key was recreated by a concurrent lookup")
	}
}

func TestRedisSweepIsNoop(t *testing.T) {
	store, _ := newRedisTestStore(t, time.Hour)

	removed, err := store.Sweep(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("sweep removed %d, want 0", removed)
	}
}
