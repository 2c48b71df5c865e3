package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNotFound is returned by Lookup when a key is absent or expired.
var ErrNotFound = errors.New("no cached value for key")

// Entry is a cached value together with the instants it was stored and will
// expire. Expiry is explicit so callers can surface cache freshness instead
// of relying on ambient framework state.
type Entry[V any] struct {
	Value     V
	StoredAt  time.Time
	ExpiresAt time.Time
}

// TTLCache memoizes results by string key for a fixed TTL. Time comes from
// an injected clock so tests can advance it deterministically. Expired
// entries are dropped lazily on read and swept when new values arrive.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   clockwork.Clock
	entries map[string]Entry[V]
}

// NewTTLCache creates a cache whose entries live for ttl. A nil clock
// defaults to the real one.
func NewTTLCache[V any](ttl time.Duration, clock clockwork.Clock) *TTLCache[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TTLCache[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]Entry[V]),
	}
}

// Get returns the live value for key, if any.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	entry, err := c.Lookup(key)
	if err != nil {
		var zero V
		return zero, false
	}
	return entry.Value, true
}

// Lookup returns the full entry for key, including its expiry. Expired
// entries count as missing and are removed.
func (c *TTLCache[V]) Lookup(key string) (Entry[V], error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return Entry[V]{}, ErrNotFound
	}
	if !c.clock.Now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the entry.
		if cur, ok := c.entries[key]; ok && !c.clock.Now().Before(cur.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return Entry[V]{}, ErrNotFound
	}
	return entry, nil
}

// Put stores value under key, stamping it with now and now+TTL. Dead entries
// elsewhere in the map are swept opportunistically.
func (c *TTLCache[V]) Put(key string, value V) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if !now.Before(e.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = Entry[V]{
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}
}

// Invalidate removes a single key. Used by the refresh path so a forced
// refetch cannot race a stale read.
func (c *TTLCache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear drops every entry.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Len reports the number of stored entries, counting ones that have expired
// but not yet been swept.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
