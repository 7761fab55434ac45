package cache

import (
	"sync"
	"time"
)

// CacheItem represents an item stored in the cache, containing a value and its expiration time.
type CacheItem[T any] struct {
	Value      T
	Expiration time.Time
}

// Cache is a generic, thread-safe TTL cache that stores values with string keys.
type Cache[T any] struct {
	data map[string]CacheItem[T]
	mu   sync.RWMutex
	ttl  time.Duration
}

// NewCache initializes and returns a new Cache with a specified default TTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		data: make(map[string]CacheItem[T]),
		ttl:  ttl,
	}
}

// Get retrieves a value from the cache by its key.
// It returns the cached value and true if the key exists and has not expired; otherwise, it returns the zero value and false.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.Expiration) {
		var zero T
		return zero, false
	}
	return item.Value, true
}

// Set adds or updates a value in the cache with the default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL adds or updates a value in the cache with a custom TTL, overriding the default.
func (c *Cache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = CacheItem[T]{
		Value:      value,
		Expiration: time.Now().Add(ttl),
	}
}

// Update applies fn to the current value under the lock and stores the result with the default TTL.
// The zero value is passed to fn when the key is absent or expired.
func (c *Cache[T]) Update(key string, fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cur T
	if item, ok := c.data[key]; ok && time.Now().Before(item.Expiration) {
		cur = item.Value
	}
	next := fn(cur)
	c.data[key] = CacheItem[T]{
		Value:      next,
		Expiration: time.Now().Add(c.ttl),
	}
	return next
}

// Delete removes an item from the cache by its key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, item := range c.data {
		if now.After(item.Expiration) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, including not-yet-swept expired ones.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear purges all items from the cache, making it empty.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]CacheItem[T])
}
