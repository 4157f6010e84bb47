package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fleetpipe/fleetpipe/module/core/internal/repository/cache"
)

var _ cache.StateCache = (*StateCache)(nil)

type entry struct {
	value     string
	expiresAt time.Time
}

// StateCache is a mutex-guarded map with per-key deadlines. It backs
// tests and cache-less development setups.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewStateCache() *StateCache {
	return &StateCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// NewStateCacheWithClock lets tests advance time without sleeping.
func NewStateCacheWithClock(now func() time.Time) *StateCache {
	return &StateCache{
		entries: make(map[string]entry),
		now:     now,
	}
}

func (c *StateCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	if !ok {
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *StateCache) Put(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *StateCache) Has(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.live(key)
	return ok, nil
}

func (c *StateCache) PutIfAbsent(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.live(key); ok {
		return false, nil
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	return true, nil
}

func (c *StateCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// live must be called with the mutex held.
func (c *StateCache) live(key string) (entry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return entry{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return entry{}, false
	}
	return e, true
}
