package dedupe

// Option applies a configuration option to the tracker.
type Option func(*tracker)

// WithMaxSize bounds the number of remembered IDs. Zero or negative
// disables eviction.
func WithMaxSize(size int) Option {
	return func(t *tracker) {
		t.maxSize = size
	}
}
