package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// fakeStore counts calls and fails deletions a configurable number of times
// per key.
type fakeStore struct {
	mu          sync.Mutex
	deleted     []string
	failures    map[string]int
	deleteCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{failures: make(map[string]int)}
}

func (f *fakeStore) Upload(ctx context.Context, filename, contentType string, size int64, content io.Reader) (*Object, error) {
	return &Object{URL: "https://media.test/" + filename, Key: filename}, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.failures[key] > 0 {
		f.failures[key]--
		return errors.New("remote unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.deleted...)
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

func newTestJanitor(store Store) *Janitor {
	j := NewJanitor(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	// No real backoff in tests
	j.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return j
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestJanitor_DeletesEnqueuedKeys(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	j := newTestJanitor(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.Enqueue("users/2026/01/01/a.png")
	j.Enqueue("users/2026/01/01/b.png")

	waitFor(t, func() bool { return len(store.deletedKeys()) == 2 })

	keys := store.deletedKeys()
	if keys[0] != "users/2026/01/01/a.png" || keys[1] != "users/2026/01/01/b.png" {
		t.Errorf("unexpected deletion order: %v", keys)
	}
}

func TestJanitor_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failures["flaky-key"] = 2
	j := newTestJanitor(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.Enqueue("flaky-key")

	waitFor(t, func() bool { return len(store.deletedKeys()) == 1 })

	// 2 failures + 1 success
	if got := store.calls(); got != 3 {
		t.Errorf("expected 3 delete calls, got %d", got)
	}
}

func TestJanitor_AbandonsAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.failures["dead-key"] = 100
	j := newTestJanitor(store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.Enqueue("dead-key")

	waitFor(t, func() bool { return store.calls() >= DefaultMaxAttempts })

	// Give it a moment to confirm no further attempts happen
	time.Sleep(20 * time.Millisecond)
	if got := store.calls(); got != DefaultMaxAttempts {
		t.Errorf("expected exactly %d attempts, got %d", DefaultMaxAttempts, got)
	}
	if len(store.deletedKeys()) != 0 {
		t.Error("abandoned key should not be reported deleted")
	}
}

func TestJanitor_EnqueueEmptyKeyIgnored(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	j := newTestJanitor(store)

	j.Enqueue("")

	if len(j.queue) != 0 {
		t.Error("empty key should not be queued")
	}
}

func TestJanitor_ShutdownDrainsQueue(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	j := newTestJanitor(store)

	// Not running; enqueue then drain via Shutdown
	j.Enqueue("k1")
	j.Enqueue("k2")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := j.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if len(store.deletedKeys()) != 2 {
		t.Errorf("expected 2 drained deletions, got %d", len(store.deletedKeys()))
	}

	// After shutdown, enqueue is a no-op
	j.Enqueue("k3")
	if len(j.queue) != 0 {
		t.Error("enqueue after shutdown should drop the key")
	}
}

func TestJanitor_RunTwiceFails(t *testing.T) {
	t.Parallel()

	j := newTestJanitor(newFakeStore())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	// Second Run must refuse
	waitFor(t, func() bool {
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.started
	})
	if err := j.Run(ctx); err == nil {
		t.Error("expected error starting janitor twice")
	}
}
