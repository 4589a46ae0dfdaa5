// Package layoutcache provides a generic, size-bounded memoization cache with
// least-recently-used eviction and optional time-to-live.
//
// Reads take a shared lock and never block each other; writes are
// serialized. Hit, miss and eviction counters are updated with atomic
// operations so that reading statistics never contends with lookups.
package layoutcache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultCapacity is the capacity used when none is configured.
const DefaultCapacity = 4096

// Cache is a thread-safe LRU cache keyed by K.
//
// Entries sit in a queue ordered by when they were last moved to the front.
// Reads only stamp an access tick, so they never take the write lock; the
// writer that needs room pops the back of the queue and gives an entry read
// since it was queued a second chance at the front. Every second chance is
// paid for by an earlier read, so eviction is amortized O(1).
//
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]*list.Element
	order    *list.List // of *entry[K, V], front is newest
	capacity int
	ttl      time.Duration
	now      func() time.Time

	tick      atomic.Int64
	scanned   uint64 // queue elements visited by eviction, guarded by mu
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
	queued  int64 // tick when last moved to the front, guarded by mu
	atime   atomic.Int64
}

// Option configures a [Cache].
type Option func(*options)

type options struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// WithCapacity sets the number of entries kept before the least recently
// used ones are evicted. Values below 1 select [DefaultCapacity].
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithTTL sets how long an entry stays valid after it was stored. Zero keeps
// entries until they are evicted.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	o := options{capacity: DefaultCapacity, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < 1 {
		o.capacity = DefaultCapacity
	}
	if o.now == nil {
		o.now = time.Now
	}
	return &Cache[K, V]{
		entries:  make(map[K]*list.Element),
		order:    list.New(),
		capacity: o.capacity,
		ttl:      o.ttl,
		now:      o.now,
	}
}

// Get returns the value stored under key. Expired entries are reported as
// misses and removed by a later write or [Cache.Purge].
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var e *entry[K, V]
	c.mu.RLock()
	if el, ok := c.entries[key]; ok {
		e = el.Value.(*entry[K, V])
	}
	c.mu.RUnlock()

	if e == nil || c.expired(e) {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	e.atime.Store(c.tick.Add(1))
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key. A new key first evicts the least recently
// used entry when the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	e := &entry[K, V]{key: key, value: value}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		for len(c.entries) >= c.capacity {
			c.evictOneLocked()
		}
	}
	e.queued = c.tick.Add(1)
	e.atime.Store(e.queued)
	if ok {
		// readers hold the old entry, never a half-written one
		el.Value = e
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(e)
}

// GetOrCompute returns the cached value for key, or calls compute, stores its
// result and returns it.
//
// compute runs without the lock held so it may itself consult the cache, as
// nested layout does. Two goroutines racing on the same key may both compute;
// the later Set wins.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Set(key, v)
	return v
}

// Remove deletes key. It reports whether an entry was present.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if ok {
		c.removeLocked(el)
	}
	return ok
}

// RemoveFunc deletes every entry whose key satisfies match and returns how
// many were removed. Expired entries found on the way are dropped too.
func (c *Cache[K, V]) RemoveFunc(match func(K) bool) int {
	removed, _ := c.Sweep(match)
	return removed
}

// Purge removes expired entries and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	if c.ttl <= 0 {
		return 0
	}
	_, expired := c.Sweep(nil)
	return expired
}

// Sweep removes, in one pass, every entry whose key satisfies match and
// every expired entry. match may be nil. Expired entries count as
// evictions; matched ones do not.
func (c *Cache[K, V]) Sweep(match func(K) bool) (removed, expired int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry[K, V])
		switch {
		case match != nil && match(e.key):
			c.removeLocked(el)
			removed++
		case c.expired(e):
			c.removeLocked(el)
			expired++
		}
		el = next
	}
	c.evictions.Add(uint64(expired))
	return removed, expired
}

// Clear removes all entries. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element)
	c.order.Init()
}

// Len returns the number of stored entries, including expired ones not yet
// purged.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Capacity returns the configured capacity.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// TTL returns the configured time-to-live, zero when entries never expire.
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *Cache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

func (c *Cache[K, V]) expired(e *entry[K, V]) bool {
	return c.ttl > 0 && !c.now().Before(e.expires)
}

func (c *Cache[K, V]) removeLocked(el *list.Element) {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, e.key)
}

// evictOneLocked drops one entry from the back of the queue. Expired and
// unread entries go first; an entry read since it was queued moves to the
// front once instead. Caller must hold c.mu.
func (c *Cache[K, V]) evictOneLocked() {
	for range c.order.Len() {
		el := c.order.Back()
		c.scanned++
		e := el.Value.(*entry[K, V])
		if e.atime.Load() > e.queued && !c.expired(e) {
			e.queued = c.tick.Add(1)
			c.order.MoveToFront(el)
			continue
		}
		c.removeLocked(el)
		c.evictions.Add(1)
		return
	}
	// every entry had been read; the first one requeued is back at the end
	c.removeLocked(c.order.Back())
	c.evictions.Add(1)
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the configured capacity.
	Capacity int
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed or expired lookups.
	Misses uint64
	// Evictions is the number of entries dropped for capacity or expiry.
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 when there were no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
