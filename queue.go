package antidup

// evictionQueue records keys in the order they were first stored.
// The front (index 0) is the oldest key.
type evictionQueue[K comparable] struct {
	keys []K
	set  map[K]struct{}
}

func newEvictionQueue[K comparable]() *evictionQueue[K] {
	return &evictionQueue[K]{set: make(map[K]struct{})}
}

// push appends k unless it is already tracked. It reports whether k was new.
func (q *evictionQueue[K]) push(k K) bool {
	if _, ok := q.set[k]; ok {
		return false
	}
	q.keys = append(q.keys, k)
	q.set[k] = struct{}{}
	return true
}

// pop removes and returns the oldest key.
func (q *evictionQueue[K]) pop() (K, bool) {
	var zero K
	if len(q.keys) == 0 {
		return zero, false
	}
	k := q.keys[0]
	q.keys[0] = zero
	q.keys = q.keys[1:]
	delete(q.set, k)
	return k, true
}

// remove drops k while preserving the order of the remaining keys.
func (q *evictionQueue[K]) remove(k K) {
	if _, ok := q.set[k]; !ok {
		return
	}
	delete(q.set, k)
	for i, v := range q.keys {
		if v == k {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			return
		}
	}
}

func (q *evictionQueue[K]) len() int { return len(q.keys) }

func (q *evictionQueue[K]) reset() {
	q.keys = nil
	q.set = make(map[K]struct{})
}

func (q *evictionQueue[K]) snapshot() []K {
	out := make([]K, len(q.keys))
	copy(out, q.keys)
	return out
}
