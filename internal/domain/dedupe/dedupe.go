// Package dedupe tracks client-submitted event IDs so retried mobile
// submissions are acknowledged once instead of logged twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen submission IDs for at-most-once event recording.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set. Used when an event was
	// marked seen but its write failed, so the client retry can land.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// tracker implements Deduper with a map plus a fixed-size FIFO ring:
// once the ring is full, recording a new ID evicts the oldest one. A
// non-positive maxSize disables eviction entirely.
type tracker struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewTracker creates a bounded in-memory deduper.
func NewTracker(opts ...Option) Deduper {
	t := &tracker{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[string]struct{})
	if t.maxSize > 0 {
		t.ring = make([]string, t.maxSize)
	}
	return t
}

func (t *tracker) SeenAndRecord(_ context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		return true
	}
	if t.maxSize > 0 {
		if old := t.ring[t.next]; old != "" {
			delete(t.seen, old)
			t.size.Add(-1)
		}
		t.ring[t.next] = id
		t.next = (t.next + 1) % t.maxSize
	}
	t.seen[id] = struct{}{}
	t.size.Add(1)
	return false
}

func (t *tracker) Unrecord(_ context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; !ok {
		return
	}
	delete(t.seen, id)
	t.size.Add(-1)
	for i, v := range t.ring {
		if v == id {
			t.ring[i] = ""
			break
		}
	}
}

func (t *tracker) Size() int64 {
	return t.size.Load()
}
