// Package dedupe tracks which documents a run has already processed.
package dedupe

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithMaxSize bounds the number of remembered IDs. When full, the oldest ID
// is forgotten first. maxSize <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(t *Tracker) {
		t.maxSize = maxSize
	}
}
