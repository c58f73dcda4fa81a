package antidup

import (
	"context"
	"sync"
	"time"
)

// Config fixes the policy of a Cache at construction.
//
// MaxCount: 0 disables caching (every call runs its factory), a negative value
// means unbounded, a positive value caps the number of entries with FIFO
// eviction.
//
// TTL: 0 disables caching, a negative value keeps entries forever, a positive
// value is the time an entry stays valid after it was written.
type Config struct {
	MaxCount int
	TTL      time.Duration
}

// Cache deduplicates concurrent calls per key and memoizes their results.
// It is safe for concurrent use by multiple goroutines.
type Cache[K comparable, V any] struct {
	cfg      Config
	store    *versionedStore[K, V]
	locks    *keyLockTable[K]
	observer Observer
	equal    func(a, b any) bool

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New returns a Cache with the given policy.
func New[K comparable, V any](cfg Config, opts ...Option) *Cache[K, V] {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	c := &Cache[K, V]{
		cfg:      cfg,
		store:    newVersionedStore[K, V](cfg.MaxCount, cfg.TTL, s.now),
		locks:    newKeyLockTable[K](),
		observer: s.observer,
		equal:    s.equal,
		cancel:   func() {},
	}

	if s.cleanupEvery > 0 && cfg.TTL > 0 && !c.disabled() {
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.wg.Add(1)
		go c.cleanupLoop(ctx, s.cleanupEvery)
	}
	return c
}

// NewTTLCache returns a bounded cache whose entries expire ttlSeconds after
// they were written.
func NewTTLCache[K comparable, V any](maxCount, ttlSeconds int, opts ...Option) *Cache[K, V] {
	return New[K, V](Config{
		MaxCount: maxCount,
		TTL:      time.Duration(ttlSeconds) * time.Second,
	}, opts...)
}

// NewQueueCache returns a bounded cache whose entries never expire. The
// oldest entry is evicted once more than maxCount keys are stored.
func NewQueueCache[K comparable, V any](maxCount int, opts ...Option) *Cache[K, V] {
	return New[K, V](Config{MaxCount: maxCount, TTL: -1}, opts...)
}

// NewDictCache returns an unbounded cache whose entries stay until they are
// removed or the cache is cleared.
func NewDictCache[K comparable, V any](opts ...Option) *Cache[K, V] {
	return New[K, V](Config{MaxCount: -1, TTL: -1}, opts...)
}

// Config returns the policy the cache was built with.
func (c *Cache[K, V]) Config() Config { return c.cfg }

func (c *Cache[K, V]) disabled() bool {
	return c.cfg.MaxCount == 0 || c.cfg.TTL == 0
}

// bypass reports whether calls for key skip caching and coordination.
func (c *Cache[K, V]) bypass(key K) bool {
	return c.disabled() || isNullKey(key)
}

// put writes value under key and reports evictions.
func (c *Cache[K, V]) put(key K, value V) {
	for _, k := range c.store.set(key, value) {
		c.emit(EventEvict, k)
	}
}

// Count returns the number of stored entries, including expired entries
// that have not been purged or replaced yet.
func (c *Cache[K, V]) Count() int { return c.store.len() }

// IsEmpty reports whether the cache holds no entries.
func (c *Cache[K, V]) IsEmpty() bool { return c.store.len() == 0 }

// Keys returns the stored keys. For bounded caches they are in eviction
// order, oldest first.
func (c *Cache[K, V]) Keys() []K { return c.store.keys() }

// Clear removes every entry. Callers currently computing a value keep their
// key locks; their results are stored into the emptied cache.
func (c *Cache[K, V]) Clear() { c.store.clear() }

// Purge removes expired entries now and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	removed := c.store.purgeExpired()
	for _, k := range removed {
		c.emit(EventExpire, k)
	}
	return len(removed)
}

// Close stops the background cleanup goroutine, if any.
// Close is safe to call multiple times. The cache stays usable afterwards.
func (c *Cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.wg.Wait()
	})
	return nil
}

func (c *Cache[K, V]) cleanupLoop(ctx context.Context, every time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
