package bot

import (
	"fmt"
	"sync"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/voxpage/voxpage/internal/observe"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return NewSessionStore(m)
}

func TestSessionStore_PutGetEvict(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	if _, ok := s.Get(42); ok {
		t.Fatal("empty store should have no session")
	}

	if replaced := s.Put(42, "/tmp/a"); replaced != nil {
		t.Fatalf("first Put replaced %+v", replaced)
	}
	sess, ok := s.Get(42)
	if !ok || sess.FilePath != "/tmp/a" {
		t.Fatalf("Get = %+v, %v", sess, ok)
	}

	evicted, ok := s.Evict(42)
	if !ok || evicted.FilePath != "/tmp/a" {
		t.Fatalf("Evict = %+v, %v", evicted, ok)
	}
	if _, ok := s.Get(42); ok {
		t.Error("session should be gone after Evict")
	}
	if _, ok := s.Evict(42); ok {
		t.Error("second Evict should report absence")
	}
}

func TestSessionStore_PutReturnsReplaced(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	s.Put(7, "/tmp/old")
	replaced := s.Put(7, "/tmp/new")
	if replaced == nil || replaced.FilePath != "/tmp/old" {
		t.Fatalf("replaced = %+v, want the old session", replaced)
	}
	sess, _ := s.Get(7)
	if sess.FilePath != "/tmp/new" {
		t.Errorf("FilePath = %q, want /tmp/new", sess.FilePath)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSessionStore_UsersAreIsolated(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	const users = 50
	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := int64(i)
			s.Put(id, fmt.Sprintf("/tmp/file-%d", i))
			sess, ok := s.Get(id)
			if !ok {
				t.Errorf("user %d lost its session", i)
				return
			}
			if want := fmt.Sprintf("/tmp/file-%d", i); sess.FilePath != want {
				t.Errorf("user %d sees %q, want %q", i, sess.FilePath, want)
			}
		}()
	}
	wg.Wait()

	if s.Len() != users {
		t.Errorf("Len = %d, want %d", s.Len(), users)
	}
}
