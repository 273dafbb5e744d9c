// Package cache is a TTL keyed store for analysis results.
// Expiry is enforced lazily on read and by a background sweeper so the map
// does not accumulate dead entries between cache hits
package cache

import (
	"context"
	"sync"
	"time"

	"sleuth/internal/platform/logger"
)

// DefaultSweepInterval is how often the background sweeper scans for
// expired entries when none is configured
const DefaultSweepInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
	size      int
}

// Stats is a point-in-time view of cache occupancy
type Stats struct {
	Entries     int   `json:"entries"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Evictions   int64 `json:"evictions"`
	ApproxBytes int64 `json:"approx_bytes"`
}

// Sizer lets values report their footprint for Stats.ApproxBytes.
// Values that do not implement it count as zero bytes
type Sizer interface {
	CacheSize() int
}

// Cache is a concurrency-safe TTL map
type Cache[V any] struct {
	mu        sync.Mutex
	entries   map[string]entry[V]
	hits      int64
	misses    int64
	evictions int64
	bytes     int64
	now       func() time.Time
	log       *logger.Logger
}

// Option configures a Cache
type Option[V any] func(*Cache[V])

// WithNow overrides the clock, for tests
func WithNow[V any](now func() time.Time) Option[V] {
	return func(c *Cache[V]) { c.now = now }
}

// New builds an empty cache
func New[V any](opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
		log:     logger.Named("cache"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Put stores value under key for ttl. A non-positive ttl stores nothing
func (c *Cache[V]) Put(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	size := 0
	if s, ok := any(value).(Sizer); ok {
		size = s.CacheSize()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.bytes -= int64(old.size)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl), size: size}
	c.bytes += int64(size)
}

// Get returns the live value for key. Expired entries are removed on the
// spot and reported as a miss
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.removeLocked(key, e)
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Invalidate removes a single key, reporting whether it was present
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok {
		c.removeLocked(key, e)
	}
	return ok
}

// Clear drops every entry and returns how many were removed.
// Hit and miss counters survive a clear
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	c.evictions += int64(n)
	c.bytes = 0
	return n
}

// Stats snapshots the counters
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Entries:     len(c.entries),
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		ApproxBytes: c.bytes,
	}
}

// Sweep removes every expired entry and returns how many were dropped
func (c *Cache[V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.removeLocked(k, e)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
// A non-positive interval falls back to DefaultSweepInterval
func (c *Cache[V]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := c.Sweep(); n > 0 {
					c.log.Debug().Int("expired", n).Msg("cache sweep")
				}
			}
		}
	}()
}

func (c *Cache[V]) removeLocked(key string, e entry[V]) {
	delete(c.entries, key)
	c.evictions++
	c.bytes -= int64(e.size)
}
