package antidup

import (
	"sync"
	"time"
)

// entry is replaced on every write, never mutated in place.
type entry[V any] struct {
	value     V
	createdAt time.Time
}

// versionedStore maps keys to entries and keeps a version that is bumped on
// every write. Readers compare versions to skip rechecks when nothing has
// been written since they last looked.
type versionedStore[K comparable, V any] struct {
	mu       sync.RWMutex
	entries  map[K]entry[V]
	version  uint64
	queue    *evictionQueue[K] // nil when unbounded
	maxCount int
	ttl      time.Duration // negative: entries never expire
	now      func() time.Time
}

func newVersionedStore[K comparable, V any](maxCount int, ttl time.Duration, now func() time.Time) *versionedStore[K, V] {
	s := &versionedStore[K, V]{
		entries:  make(map[K]entry[V]),
		maxCount: maxCount,
		ttl:      ttl,
		now:      now,
	}
	if maxCount > 0 {
		s.queue = newEvictionQueue[K]()
	}
	return s
}

func (s *versionedStore[K, V]) valid(e entry[V], now time.Time) bool {
	return s.ttl < 0 || now.Before(e.createdAt.Add(s.ttl))
}

// getLocked must be called with mu held in either mode.
func (s *versionedStore[K, V]) getLocked(key K) (V, bool) {
	e, ok := s.entries[key]
	if !ok || !s.valid(e, s.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// lookup returns the valid value for key, plus the version observed while
// looking, to be handed to changedSince later.
func (s *versionedStore[K, V]) lookup(key K) (V, bool, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.getLocked(key)
	return v, ok, s.version
}

func (s *versionedStore[K, V]) get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key)
}

// changedSince only looks key up again when some write happened after
// snapshot was taken.
func (s *versionedStore[K, V]) changedSince(key K, snapshot uint64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.version == snapshot {
		var zero V
		return zero, false
	}
	return s.getLocked(key)
}

// set stores value under key and returns the keys evicted to stay within
// maxCount, oldest first.
func (s *versionedStore[K, V]) set(key K, value V) []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry[V]{value: value, createdAt: s.now()}
	s.version++

	if s.queue == nil || !s.queue.push(key) {
		return nil
	}
	var evicted []K
	for s.queue.len() > s.maxCount {
		old, ok := s.queue.pop()
		if !ok {
			break
		}
		delete(s.entries, old)
		evicted = append(evicted, old)
	}
	return evicted
}

// remove deletes key. The returned value is only reported when the entry was
// still valid; expired entries are dropped silently.
func (s *versionedStore[K, V]) remove(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	delete(s.entries, key)
	if s.queue != nil {
		s.queue.remove(key)
	}
	s.version++
	if !s.valid(e, s.now()) {
		return zero, false
	}
	return e.value, true
}

func (s *versionedStore[K, V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[K]entry[V])
	if s.queue != nil {
		s.queue.reset()
	}
	s.version++
}

// purgeExpired removes every expired entry and returns the removed keys.
func (s *versionedStore[K, V]) purgeExpired() []K {
	if s.ttl < 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []K
	for k, e := range s.entries {
		if s.valid(e, now) {
			continue
		}
		delete(s.entries, k)
		if s.queue != nil {
			s.queue.remove(k)
		}
		removed = append(removed, k)
	}
	if len(removed) > 0 {
		s.version++
	}
	return removed
}

func (s *versionedStore[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// keys returns the stored keys, in insertion order when the store is bounded.
func (s *versionedStore[K, V]) keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queue != nil {
		return s.queue.snapshot()
	}
	out := make([]K, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}
