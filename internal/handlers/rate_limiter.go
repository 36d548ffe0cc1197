package handlers

import (
	"strings"
	"sync"
	"time"
)

// rateLimiter throttles suggestion submissions per client address so a
// single visitor cannot flood the mail relay.
type rateLimiter interface {
	Allow(key string) bool
}

type submitLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]submitWindow
}

type submitWindow struct {
	count   int
	expires time.Time
}

func newSimpleRateLimiter(limit int, window time.Duration, clock func() time.Time) rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &submitLimiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		windows: make(map[string]submitWindow),
	}
}

func (l *submitLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	win, ok := l.windows[key]
	if !ok || now.After(win.expires) {
		l.dropStaleLocked(now)
		l.windows[key] = submitWindow{count: 1, expires: now.Add(l.window)}
		return true
	}
	if win.count >= l.limit {
		return false
	}
	win.count++
	l.windows[key] = win
	return true
}

// dropStaleLocked evicts expired windows so the map stays bounded by the
// number of clients active within one window.
func (l *submitLimiter) dropStaleLocked(now time.Time) {
	for key, win := range l.windows {
		if now.After(win.expires) {
			delete(l.windows, key)
		}
	}
}
