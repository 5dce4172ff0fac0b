package session

import (
	"testing"
	"time"
)

func TestRateLimiterThreshold(t *testing.T) {
	current := time.Unix(1000, 0)
	l := NewRateLimiter(50, 10*time.Second)
	l.now = func() time.Time { return current }

	for i := 1; i <= 50; i++ {
		if !l.Allow() {
			t.Fatalf("Expected frame %d to pass", i)
		}
	}
	if l.Allow() {
		t.Error("Expected frame 51 in the same window to be rejected")
	}
	if l.Allow() {
		t.Error("Expected frame 52 in the same window to be rejected")
	}
}

func TestRateLimiterWindowRollover(t *testing.T) {
	current := time.Unix(1000, 0)
	l := NewRateLimiter(50, 10*time.Second)
	l.now = func() time.Time { return current }

	for i := 0; i < 51; i++ {
		l.Allow()
	}

	// Inside the window the client stays throttled.
	current = current.Add(9 * time.Second)
	if l.Allow() {
		t.Error("Expected rejection before the window rolls over")
	}

	// After rollover the counter resets and the client recovers.
	current = current.Add(2 * time.Second)
	if !l.Allow() {
		t.Error("Expected the first frame of a new window to pass")
	}
}

func TestRateLimiterSlowSenderNeverThrottled(t *testing.T) {
	current := time.Unix(1000, 0)
	l := NewRateLimiter(50, 10*time.Second)
	l.now = func() time.Time { return current }

	// One frame per second stays far under the threshold forever.
	for i := 0; i < 200; i++ {
		if !l.Allow() {
			t.Fatalf("Expected frame %d of a slow sender to pass", i)
		}
		current = current.Add(time.Second)
	}
}
