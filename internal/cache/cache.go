package cache

import (
	"strings"
	"sync"
	"time"
)

// Freshness windows for the cached chat views. These bound how stale a view
// may be when no invalidation signal arrives.
const (
	ConversationsTTL = 5 * time.Minute
	MessagesTTL      = time.Minute
	UnreadTTL        = 30 * time.Second
)

type entry struct {
	value    any
	deadline time.Time
}

// Cache is an in-process key -> (value, freshness deadline) map with prefix
// invalidation. It is derived, disposable state: the store stays the source
// of truth and the realtime bridge marks views stale here.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewWithClock is used by tests to control expiry.
func NewWithClock(now func() time.Time) *Cache {
	c := New()
	c.now = now
	return c
}

// Get returns the cached value if present and still fresh.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.deadline) {
		c.mu.Lock()
		// Recheck under the write lock; a fresher Set may have raced us.
		if e2, ok := c.entries[key]; ok && c.now().After(e2.deadline) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, deadline: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry whose key starts with prefix and returns how
// many were dropped.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

// Flush drops everything. Used on logout.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
