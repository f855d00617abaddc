package media

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultQueueSize bounds the number of pending deletions.
	DefaultQueueSize = 256
)

// deletion is one queued remote-object removal.
type deletion struct {
	key      string
	attempts int
}

// Janitor deletes replaced and orphaned remote objects in the background.
// Record mutations enqueue keys and move on; deletion failures are retried
// a bounded number of times and logged, never surfaced to the request that
// caused them.
type Janitor struct {
	store       Store
	logger      *slog.Logger
	queue       chan deletion
	maxAttempts int
	sleep       func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewJanitor creates a Janitor draining deletions against the given store.
func NewJanitor(store Store, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:       store,
		logger:      logger.With("component", "media.janitor"),
		queue:       make(chan deletion, DefaultQueueSize),
		maxAttempts: DefaultMaxAttempts,
		sleep:       sleepCtx,
		done:        make(chan struct{}),
	}
}

// Enqueue schedules a remote object for deletion. Never blocks: when the
// queue is full the key is dropped with a logged warning, which matches the
// delete-is-best-effort contract.
func (j *Janitor) Enqueue(key string) {
	if key == "" {
		return
	}

	j.mu.Lock()
	closed := j.closed
	j.mu.Unlock()
	if closed {
		j.logger.Warn("deletion dropped, janitor stopped", "object_key", key)
		return
	}

	select {
	case j.queue <- deletion{key: key}:
	default:
		j.logger.Warn("deletion dropped, queue full", "object_key", key)
	}
}

// Run processes queued deletions until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return errors.New("janitor already started")
	}
	j.started = true
	j.mu.Unlock()

	j.logger.Info("media janitor started")
	defer close(j.done)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("media janitor stopping")
			return ctx.Err()
		case d := <-j.queue:
			j.process(ctx, d)
		}
	}
}

// Shutdown stops intake and drains remaining deletions until the context
// expires. Registered with the server's shutdown hooks.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	j.closed = true
	j.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			if n := len(j.queue); n > 0 {
				j.logger.Warn("shutdown with pending deletions", "pending", n)
			}
			return nil
		case d := <-j.queue:
			j.process(ctx, d)
		default:
			return nil
		}
	}
}

// process attempts one deletion with bounded retries.
func (j *Janitor) process(ctx context.Context, d deletion) {
	for {
		err := j.store.Delete(ctx, d.key)
		if err == nil {
			j.logger.Info("remote object deleted",
				"object_key", d.key,
				"attempts", d.attempts+1,
			)
			return
		}

		d.attempts++
		if d.attempts >= j.maxAttempts {
			j.logger.Error("remote deletion abandoned",
				"object_key", d.key,
				"attempts", d.attempts,
				"error", err,
			)
			return
		}

		j.logger.Warn("remote deletion failed, will retry",
			"object_key", d.key,
			"attempt", d.attempts,
			"error", err,
		)

		if err := j.sleep(ctx, nextRetryDelay(d.attempts-1)); err != nil {
			// Context cancelled mid-backoff; the object stays orphaned,
			// which the best-effort contract allows.
			j.logger.Warn("remote deletion interrupted",
				"object_key", d.key,
				"error", err,
			)
			return
		}
	}
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
