package session

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned for a message that exceeds the per-user
// flood threshold. The message is dropped; the connection is not closed.
var ErrRateLimited = errors.New("rate limited")

// Default flood-control tuning: at most 50 inbound frames per 10s window.
const (
	DefaultRateThreshold = 50
	DefaultRateWindow    = 10 * time.Second
)

// RateLimiter is a fixed-window counter over inbound frames, binary and
// text alike. The counter resets on window rollover, so a throttled
// client recovers by itself.
type RateLimiter struct {
	mu          sync.Mutex
	threshold   int
	window      time.Duration
	count       int
	windowStart time.Time

	now func() time.Time // test hook
}

// NewRateLimiter creates a limiter allowing threshold frames per window.
func NewRateLimiter(threshold int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// Allow counts one inbound frame and reports whether it may be handled.
func (l *RateLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
	l.count++
	return l.count <= l.threshold
}
