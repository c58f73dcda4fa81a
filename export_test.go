package antidup

// LockCount returns the number of per-key locks currently allocated.
func LockCount[K comparable, V any](c *Cache[K, V]) int { return c.locks.len() }

// LockRefs returns the number of callers registered on key's lock.
func LockRefs[K comparable, V any](c *Cache[K, V], key K) int { return c.locks.refs(key) }
