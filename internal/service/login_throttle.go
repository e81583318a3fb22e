package service

import (
	"sync"
	"time"
)

type throttleEntry struct {
	count int
	start time.Time
}

// LoginThrottle counts login attempts per (username, origin) pair inside a
// sliding timeout window. It is in-memory and best-effort: entries are lost on
// process restart and no cross-process limiting is attempted.
type LoginThrottle struct {
	mu          sync.Mutex
	entries     map[string]*throttleEntry
	maxAttempts int
	timeout     time.Duration

	now func() time.Time // swapped out in tests
}

// NewLoginThrottle creates a throttle allowing maxAttempts per key within the
// timeout window.
func NewLoginThrottle(maxAttempts int, timeout time.Duration) *LoginThrottle {
	return &LoginThrottle{
		entries:     make(map[string]*throttleEntry),
		maxAttempts: maxAttempts,
		timeout:     timeout,
		now:         time.Now,
	}
}

// Attempt records a login attempt for the (username, origin) pair and reports
// whether the attempt may proceed. Window expiry always re-opens the gate,
// even for a locked key. A locked key is not incremented further.
func (t *LoginThrottle) Attempt(username, origin string) bool {
	key := username + "_" + origin
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		t.entries[key] = &throttleEntry{count: 1, start: now}
		return true
	}

	if now.Sub(entry.start) > t.timeout {
		entry.count = 1
		entry.start = now
		return true
	}

	if entry.count >= t.maxAttempts {
		return false
	}

	entry.count++
	return true
}
