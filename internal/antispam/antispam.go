// Package antispam rate-limits sensitive per-user actions with fixed
// time windows. A key that reaches its limit stays blocked until the
// window expires.
package antispam

import (
	"fmt"
	"sync"
	"time"
)

// BlockKey describes one limited action.
type BlockKey struct {
	Key    string
	Limit  int
	Expire time.Duration
}

// GenerateActivityToken limits how often a member may request a fresh
// activity token.
var GenerateActivityToken = BlockKey{
	Key:    "GENERATE_ACTIVITY_TOKEN",
	Limit:  5,
	Expire: 5 * time.Minute,
}

// BlockedError reports that the key is over its limit for the current
// window.
type BlockedError struct {
	Key       string
	ExpiresAt time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("antispam: key %q is blocked until %s", e.Key, e.ExpiresAt.Format(time.RFC3339))
}

type window struct {
	count     int
	expiresAt time.Time
}

// Limiter counts attempts per user and key in memory.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check records one attempt for the user under the key. It returns a
// *BlockedError once the attempt count inside the current window
// exceeds the key's limit.
func (l *Limiter) Check(userID int64, key BlockKey) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	id := fmt.Sprintf("%s:%d", key.Key, userID)

	w, ok := l.windows[id]
	if !ok || now.After(w.expiresAt) {
		w = &window{expiresAt: now.Add(key.Expire)}
		l.windows[id] = w
	}

	w.count++
	if w.count > key.Limit {
		return &BlockedError{Key: key.Key, ExpiresAt: w.expiresAt}
	}
	return nil
}

// Reset drops the user's window for the key, lifting any block early.
func (l *Limiter) Reset(userID int64, key BlockKey) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.windows, fmt.Sprintf("%s:%d", key.Key, userID))
}
