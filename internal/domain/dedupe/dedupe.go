package dedupe

import "context"

// Deduper records seen document IDs so each document is analysed once per run.
type Deduper interface {
	// SeenAndRecord returns true if id was seen before and records it otherwise.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64

	// Reset forgets every recorded ID.
	Reset()
}

// Tracker implements Deduper with a map and an insertion-order ring used for
// eviction in bounded mode. It is not safe for concurrent use; runs are
// sequential.
type Tracker struct {
	seen    map[string]struct{}
	order   []string // ring of IDs in insertion order, bounded mode only
	next    int
	maxSize int
}

// NewTracker creates a tracker with configuration options. The default is
// unbounded.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[string]struct{})
	if t.maxSize > 0 {
		t.order = make([]string, 0, t.maxSize)
	}
	return t
}

// SeenAndRecord returns true if id was already recorded. Empty IDs are never
// considered seen.
func (t *Tracker) SeenAndRecord(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	if _, ok := t.seen[id]; ok {
		return true
	}
	if t.maxSize > 0 {
		if len(t.order) < t.maxSize {
			t.order = append(t.order, id)
		} else {
			delete(t.seen, t.order[t.next])
			t.order[t.next] = id
			t.next = (t.next + 1) % t.maxSize
		}
	}
	t.seen[id] = struct{}{}
	return false
}

// Size returns the number of remembered IDs.
func (t *Tracker) Size() int64 {
	return int64(len(t.seen))
}

// Reset forgets every recorded ID, keeping the configured bound.
func (t *Tracker) Reset() {
	clear(t.seen)
	if t.order != nil {
		t.order = t.order[:0]
	}
	t.next = 0
}
