package ratelimit

import (
	"sync"
	"time"

	"github.com/streampay/sdk-go/core/telemetry"
)

// Limiter is sliding-window admission control keyed by an arbitrary string.
// State is local to one process: multiple client instances sharing a logical
// key are not coordinated, which is acceptable for a client-side abuse guard
// but not for server-side enforcement.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
	tracker  *telemetry.Tracker
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithTracker(t *telemetry.Tracker) Option {
	return func(l *Limiter) { l.tracker = t }
}

// NewLimiter creates an empty limiter.
func NewLimiter(opts ...Option) *Limiter {
	l := &Limiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// IsAllowed prunes attempts older than the window from the key's history,
// then admits (recording the current time) only if fewer than maxAttempts
// remain. Denied attempts are not recorded.
func (l *Limiter) IsAllowed(key string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.attempts[key][:0]
	for _, t := range l.attempts[key] {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= maxAttempts {
		l.attempts[key] = valid
		l.tracker.IncRateLimitDenial()
		return false
	}

	l.attempts[key] = append(valid, now)
	return true
}

// Reset clears the history for a key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
