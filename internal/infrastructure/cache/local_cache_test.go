package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLocalCache[int](2)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	_, _ = c.Get("a")
	c.Set("c", 3, time.Minute)

	_, ok := c.Get("b")
	assert.False(t, ok, "b was least recently used")

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLocalCacheExpiry(t *testing.T) {
	c := NewLocalCache[string](10)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("k", "v", time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestLocalCacheOverwriteAndDelete(t *testing.T) {
	c := NewLocalCache[string](0)

	c.Set("k", "old", time.Minute)
	c.Set("k", "new", time.Minute)
	v, _ := c.Get("k")
	assert.Equal(t, "new", v)
	assert.Equal(t, 1, c.Len())

	c.Delete("k")
	c.Delete("missing")
	_, ok := c.Get("k")
	assert.False(t, ok)
}
