package observability

import (
	"sync"
	"testing"
)

func TestRecordAuth(t *testing.T) {
	m := NewMetrics()

	m.RecordAuth("login_ok")
	m.RecordAuth("login_ok")
	m.RecordAuth("login_failed")

	if got := m.AuthCount("login_ok"); got != 2 {
		t.Errorf("login_ok = %d, want 2", got)
	}
	if got := m.AuthCount("login_failed"); got != 1 {
		t.Errorf("login_failed = %d, want 1", got)
	}
	if got := m.AuthCount("never_recorded"); got != 0 {
		t.Errorf("unrecorded outcome = %d, want 0", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	m.RecordAuth("login_ok")
	if m.AuthCount("login_ok") != 0 {
		t.Error("nil metrics should read zero")
	}
}

func TestConcurrentCounters(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.RecordAuth("login_ok")
				m.RecordRequest("/api/admin/login", "POST", 200)
			}
		}()
	}
	wg.Wait()

	if got := m.AuthCount("login_ok"); got != 1000 {
		t.Errorf("login_ok = %d, want 1000", got)
	}
}
