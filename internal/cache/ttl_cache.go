package cache

import (
	"sync"
	"time"

	"github.com/smallbiznis/pcsengine/internal/clock"
)

// Cache is a thread-safe key/value store with per-entry expiry.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Len() int
}

type ttlEntry[V any] struct {
	expiresAt time.Time
	value     V
}

type ttlCache[K comparable, V any] struct {
	clock clock.Clock
	mu    sync.RWMutex
	items map[K]ttlEntry[V]
}

// NewTTLCache returns an in-memory cache. A nil clock uses the system clock.
func NewTTLCache[K comparable, V any](c clock.Clock) Cache[K, V] {
	if c == nil {
		c = clock.New()
	}
	return &ttlCache[K, V]{
		clock: c,
		items: make(map[K]ttlEntry[V]),
	}
}

func (c *ttlCache[K, V]) Get(key K) (V, bool) {
	var zero V
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(entry.expiresAt) {
		c.mu.Lock()
		if current, still := c.items[key]; still && current.expiresAt.Equal(entry.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return entry.value, true
}

// Set stores value for ttl. A non-positive ttl is ignored.
func (c *ttlCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = ttlEntry[V]{expiresAt: c.clock.Now().Add(ttl), value: value}
	c.mu.Unlock()
}

func (c *ttlCache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *ttlCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
