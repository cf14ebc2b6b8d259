// Package throttle implements a fixed-window request limiter keyed by client.
package throttle

import (
	"sync"
	"time"
)

// window counts the hits of one key until its absolute expiration timestamp.
type window struct {
	hits      int
	expiresAt time.Time
}

// Limiter allows at most limit hits per key within each window. It is safe for
// concurrent use. Expired windows are dropped lazily and by PurgeExpired.
type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]window
}

// New returns a Limiter. A limit <= 0 disables limiting.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]window),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Allow records a hit for key and reports whether it is within the limit.
// When it is not, retryAfter is the time until the current window closes.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	if l.limit <= 0 {
		return true, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := now()
	w, found := l.windows[key]
	if !found || !ts.Before(w.expiresAt) {
		w = window{expiresAt: ts.Add(l.period)}
	}
	if w.hits >= l.limit {
		return false, w.expiresAt.Sub(ts)
	}
	w.hits++
	l.windows[key] = w
	return true, 0
}

// Len returns the number of keys with an open window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := now()
	count := 0
	for _, w := range l.windows {
		if ts.Before(w.expiresAt) {
			count++
		}
	}
	return count
}

// PurgeExpired removes closed windows and returns how many it removed.
func (l *Limiter) PurgeExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := now()
	purged := 0
	for k, w := range l.windows {
		if !ts.Before(w.expiresAt) {
			delete(l.windows, k)
			purged++
		}
	}
	return purged
}
