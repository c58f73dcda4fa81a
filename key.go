package antidup

import "fmt"

// isNullKey reports whether key is the zero value of K. The zero key is
// treated as "no key": operations on it bypass the cache.
func isNullKey[K comparable](key K) bool {
	var zero K
	return key == zero
}

// KeyString renders key for stores that only understand string keys.
func KeyString[K comparable](key K) string {
	if s, ok := any(key).(string); ok {
		return s
	}
	return fmt.Sprint(key)
}
