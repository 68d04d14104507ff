// Package cache provides read-through caching for recipe lookups
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LocalCache is a thread-safe in-memory LRU with per-item expiry
type LocalCache[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
	now     func() time.Time
}

type localItem[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewLocalCache creates a cache holding at most maxSize items
func NewLocalCache[V any](maxSize int) *LocalCache[V] {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &LocalCache[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the value for key if present and not expired
func (c *LocalCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}

	item := el.Value.(*localItem[V])
	if c.now().After(item.expiresAt) {
		c.remove(el)
		return zero, false
	}

	c.order.MoveToFront(el)
	return item.value, true
}

// Set stores value under key for ttl, evicting the least recently used item when full
func (c *LocalCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if el, ok := c.items[key]; ok {
		item := el.Value.(*localItem[V])
		item.value = value
		item.expiresAt = expiresAt
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&localItem[V]{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.maxSize {
		c.remove(c.order.Back())
	}
}

// Delete removes key
func (c *LocalCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.remove(el)
	}
}

// Len returns the number of stored items, expired ones included
func (c *LocalCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LocalCache[V]) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*localItem[V]).key)
}
