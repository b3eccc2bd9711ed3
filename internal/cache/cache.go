// Package cache provides thread-safe generic caching and the path-keyed
// listing cache with its invalidation hook.
package cache

import (
	"strings"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Invalidator is the hook the publish pipeline calls after a successful
// write: it accepts a request path (for example "/blog") and schedules
// regeneration of whatever is cached under it.
type Invalidator func(path string)

// PathCache caches values under request-path keys ("/blog?category=tech")
// and supports prefix invalidation, which is how the publish pipeline
// expires listings without knowing which query combinations are cached.
type PathCache[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

func NewPathCache[V any]() *PathCache[V] {
	return &PathCache[V]{
		items: make(map[string]V),
	}
}

func (c *PathCache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[path]
	return val, ok
}

func (c *PathCache[V]) Set(path string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[path] = value
}

// Invalidate drops every entry whose key starts with the given path.
func (c *PathCache[V]) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, path) {
			delete(c.items, key)
		}
	}
}

func (c *PathCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
