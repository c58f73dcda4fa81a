// Package antidup provides in-process, key-scoped call deduplication with
// optional expiry and bounded FIFO capacity.
//
// When many goroutines ask for the same expensive value at once, antidup
// ensures the factory runs once per key and every caller gets its result,
// while callers for different keys never wait on each other. Results are
// memoized according to the cache's Config:
//
//	users := antidup.NewTTLCache[string, *User](1000, 30) // 1000 keys, 30s
//
//	u, err := users.Execute(userID, func() (*User, error) {
//		return db.LoadUser(ctx, userID)
//	})
//
// Three policies cover the usual shapes: [NewTTLCache] (bounded, expiring),
// [NewQueueCache] (bounded, never expiring) and [NewDictCache] (unbounded,
// never expiring). Eviction is first-in first-out: reads do not refresh an
// entry's position.
//
// A MaxCount or TTL of zero turns the cache into a passthrough that calls the
// factory every time, and so does the zero value of the key type.
//
// Errors are not cached, so a failed call can be retried. Callers that were
// already waiting on a failing call receive the same error.
//
// Lock waits can be bounded per wait with [WithLockTimeout] or
// [Cache.ExecuteTimeout]; an expired wait returns an error wrapping
// [ErrLockTimeout] and nothing is computed.
//
// Beyond Execute, Cache implements [ConcurrentMap]: GetOrAdd, SetValue,
// AddOrUpdate, TryAdd, TryUpdate, TryRemove and friends, each taking the same
// per-key lock before writing. Factory-based operations have Async forms that
// return a [Future].
package antidup
