package antidup

// Observer receives cache lifecycle events. Implementations must be safe
// for concurrent use when the cache is accessed from multiple goroutines.
type Observer interface {
	On(eventData EventData)
}

// Event represents a cache event type.
type Event int

const (
	// EventHit is emitted when a lookup finds a valid cached value on the
	// fast path.
	EventHit Event = iota
	// EventMiss is emitted when a factory is invoked.
	EventMiss
	// EventDedup is emitted when a caller that missed the fast path finds the
	// value computed by a concurrent caller instead of invoking its factory.
	EventDedup
	// EventEvict is emitted for each key dropped to stay within MaxCount.
	EventEvict
	// EventExpire is emitted for each expired key removed by Purge.
	EventExpire
	// EventRemove is emitted when a key is explicitly removed.
	EventRemove
	// EventError is emitted when a factory returns an error.
	EventError
)

func (e Event) String() string {
	switch e {
	case EventHit:
		return "hit"
	case EventMiss:
		return "miss"
	case EventDedup:
		return "dedup"
	case EventEvict:
		return "evict"
	case EventExpire:
		return "expire"
	case EventRemove:
		return "remove"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// EventData carries the details of a cache event.
type EventData struct {
	Event Event
	Key   any
}

func (c *Cache[K, V]) emit(event Event, key K) {
	if c.observer == nil {
		return
	}
	c.observer.On(EventData{Event: event, Key: key})
}
