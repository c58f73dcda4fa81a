package antidup

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEvictionQueue(t *testing.T) {
	q := newEvictionQueue[string]()

	for _, k := range []string{"a", "b", "c"} {
		if !q.push(k) {
			t.Fatalf("push(%q) reported duplicate", k)
		}
	}
	if q.push("b") {
		t.Fatal("push of a tracked key reported new")
	}
	if q.len() != 3 {
		t.Fatalf("len: got %d, want 3", q.len())
	}

	q.remove("b")
	q.remove("missing")
	if diff := cmp.Diff([]string{"a", "c"}, q.snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	k, ok := q.pop()
	if !ok || k != "a" {
		t.Fatalf("pop: got %q, %v; want a, true", k, ok)
	}
	if !q.push("a") {
		t.Fatal("popped key should be pushable again")
	}
	if diff := cmp.Diff([]string{"c", "a"}, q.snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	q.reset()
	if _, ok := q.pop(); ok {
		t.Fatal("pop on a reset queue returned a key")
	}
}

func TestVersionedStoreChangedSince(t *testing.T) {
	s := newVersionedStore[string, int](-1, -1, time.Now)

	_, ok, snap := s.lookup("k")
	if ok {
		t.Fatal("empty store returned a value")
	}
	if _, ok := s.changedSince("k", snap); ok {
		t.Fatal("changedSince found a value without any write")
	}

	s.set("other", 1)
	if _, ok := s.changedSince("k", snap); ok {
		t.Fatal("a write to another key produced a value for k")
	}

	s.set("k", 2)
	if v, ok := s.changedSince("k", snap); !ok || v != 2 {
		t.Fatalf("got %d, %v; want 2, true", v, ok)
	}
}
