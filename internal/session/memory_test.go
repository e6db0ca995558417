package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeClock lets tests drive the store's notion of time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(zap.NewNop())
	store.now = clock.Now
	return store, clock
}

func TestCreateAndLookup(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()

	id, err := store.Create(ctx, "admin-1")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if id == "" {
		t.Fatal("session id must not be empty")
	}

	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		adminID, ok, err := store.Lookup(ctx, id, time.Hour)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if !ok || adminID != "admin-1" {
			t.Fatalf("lookup = (%q, %v), want (admin-1, true)", adminID, ok)
		}
	}
}

func TestLookupUnknownSession(t *testing.T) {
	store, _ := newTestStore()

	_, ok, err := store.Lookup(context.Background(), "no-such-session", time.Hour)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ok {
		t.Error("unknown session should miss")
	}
}

func TestSlidingExpiry(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	maxAge := time.Hour

	id, _ := store.Create(ctx, "admin-1")

	// Accesses inside the window keep the session alive past its
	// original max age.
	for i := 0; i < 4; i++ {
		clock.Advance(40 * time.Minute)
		if _, ok, _ := store.Lookup(ctx, id, maxAge); !ok {
			t.Fatalf("session should survive access %d within the window", i)
		}
	}

	// Idle past the window: the lookup itself removes the record.
	clock.Advance(maxAge + time.Second)
	if _, ok, _ := store.Lookup(ctx, id, maxAge); ok {
		t.Fatal("idle session should have expired")
	}
	if _, ok, _ := store.Lookup(ctx, id, maxAge); ok {
		t.Fatal("expired session must stay gone")
	}
	if store.Len() != 0 {
		t.Errorf("store should be empty, holds %d", store.Len())
	}
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore()
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
	if _, ok, _ := store.Lookup(ctx, id, time.Hour); ok {
		t.Error("deleted session should not resolve")
	}
}

func TestSweep(t *testing.T) {
	store, clock := newTestStore()
	ctx := context.Background()
	maxAge := time.Hour

	stale1, _ := store.Create(ctx, "admin-1")
	stale2, _ := store.Create(ctx, "admin-2")
	clock.Advance(2 * time.Hour)
	fresh, _ := store.Create(ctx, "admin-3")

	removed, err := store.Sweep(ctx, maxAge)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("sweep removed %d, want 2", removed)
	}

	if _, ok, _ := store.Lookup(ctx, stale1, maxAge); ok {
		t.Error("stale session 1 should be gone")
	}
	if _, ok, _ := store.Lookup(ctx, stale2, maxAge); ok {
		t.Error("stale session 2 should be gone")
	}
	if _, ok, _ := store.Lookup(ctx, fresh, maxAge); !ok {
		t.Error("fresh session should survive the sweep")
	}
}

func TestConcurrentAccess(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	id, _ := store.Create(ctx, "admin-1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			_, _, _ = store.Lookup(ctx, id, time.Hour)
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, "admin-2")
		}()
		go func() {
			defer wg.Done()
			_, _ = store.Sweep(ctx, time.Hour)
		}()
	}
	wg.Wait()

	if adminID, ok, _ := store.Lookup(ctx, id, time.Hour); !ok || adminID != "admin-1" {
		t.Errorf("session should survive concurrent access, got (%q, %v)", adminID, ok)
	}
}
