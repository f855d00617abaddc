package media

import (
	"math/rand"
	"time"
)

// Retry delays for failed remote deletions. Deletions are best-effort and
// cheap to repeat, so the ladder is short.
var retryDelays = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
}

const (
	// DefaultMaxAttempts is the default maximum deletion attempts per object.
	DefaultMaxAttempts = 4

	// JitterFactor is the ±percentage of jitter applied to delays.
	JitterFactor = 0.2 // ±20%
)

// nextRetryDelay calculates the next retry delay with backoff + jitter.
// attemptCount is 0-indexed (after the first failed attempt, attemptCount = 0).
func nextRetryDelay(attemptCount int) time.Duration {
	if attemptCount < 0 {
		attemptCount = 0
	}
	if attemptCount >= len(retryDelays) {
		attemptCount = len(retryDelays) - 1
	}

	base := retryDelays[attemptCount]

	// ±20% jitter to avoid synchronized retries
	jitterRange := float64(base) * JitterFactor
	jitter := (rand.Float64()*2 - 1) * jitterRange

	return time.Duration(float64(base) + jitter)
}
