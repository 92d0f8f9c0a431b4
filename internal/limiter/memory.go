package limiter

import (
	"context"
	"strings"
	"sync"
	"time"
)

type entry struct {
	fails        int
	blockedUntil time.Time
	updatedAt    time.Time
}

// Memory is an in-process limiter with a sliding failure window and lockout.
// State is lost on restart and is not shared between portal replicas.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

// NewMemory constructs an in-memory limiter: maxFails failures within window block for blockFor.
func NewMemory(window time.Duration, maxFails int, blockFor time.Duration) *Memory {
	return &Memory{
		entries:  make(map[string]*entry),
		window:   window,
		maxFails: maxFails,
		blockFor: blockFor,
		now:      time.Now,
	}
}

func key(email string, ipHash []byte) string {
	return strings.ToLower(strings.TrimSpace(email)) + "\x00" + string(ipHash)
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *Memory) Allow(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key(email, ipHash)]
	if !ok {
		return true, 0, nil
	}
	if now := l.now(); e.blockedUntil.After(now) {
		return false, e.blockedUntil.Sub(now), nil
	}
	return true, 0, nil
}

// Success resets counters for (email, ip).
func (l *Memory) Success(_ context.Context, email string, ipHash []byte) error {
	l.mu.Lock()
	delete(l.entries, key(email, ipHash))
	l.mu.Unlock()
	return nil
}

// Failure records a failed attempt; may set a block until a future time.
func (l *Memory) Failure(_ context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	k := key(email, ipHash)
	e, ok := l.entries[k]
	// a lapsed block starts a fresh count
	if !ok || now.Sub(e.updatedAt) > l.window || (!e.blockedUntil.IsZero() && !e.blockedUntil.After(now)) {
		e = &entry{}
		l.entries[k] = e
	}
	e.fails++
	e.updatedAt = now
	if e.fails >= l.maxFails {
		e.blockedUntil = now.Add(l.blockFor)
		return true, l.blockFor, nil
	}
	l.sweep(now)
	return false, 0, nil
}

// sweep drops idle, unblocked entries so the map does not grow without bound.
func (l *Memory) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.updatedAt) > l.window && !e.blockedUntil.After(now) {
			delete(l.entries, k)
		}
	}
}
