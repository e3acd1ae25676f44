package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/waitlist/internal/signup"
)

// CachedCounter wraps a signup.Counter with a short TTL.  Concurrent misses
// collapse into one query through singleflight, so a burst of page views
// costs a single COUNT(*).
//
// Invalidate bumps a generation number.  A load that started under an older
// generation still answers its own callers but never writes the cache, and
// callers arriving after Invalidate start a fresh load.
type CachedCounter struct {
	inner signup.Counter
	ttl   time.Duration
	now   func() time.Time

	sfg singleflight.Group

	mu     sync.RWMutex
	value  int
	at     time.Time
	loaded bool
	gen    uint64
}

var _ signup.Counter = (*CachedCounter)(nil)

// NewCachedCounter caches inner's result for ttl.  A ttl ≤ 0 disables
// caching but keeps request collapsing.
func NewCachedCounter(inner signup.Counter, ttl time.Duration) *CachedCounter {
	return &CachedCounter{inner: inner, ttl: ttl, now: time.Now}
}

// Count returns the cached value or queries inner.  Errors are not cached.
func (c *CachedCounter) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	if c.loaded && c.now().Sub(c.at) < c.ttl {
		n := c.value
		c.mu.RUnlock()
		return n, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	v, err, _ := c.sfg.Do("count:"+strconv.FormatUint(gen, 10), func() (any, error) {
		// Detach so one caller's cancellation does not fail the others.
		n, err := c.inner.Count(context.WithoutCancel(ctx))
		if err != nil {
			return 0, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.value, c.at, c.loaded = n, c.now(), true
		}
		c.mu.Unlock()
		return n, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Invalidate drops the cached value so the next Count queries inner.
func (c *CachedCounter) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.gen++
	c.mu.Unlock()
}
