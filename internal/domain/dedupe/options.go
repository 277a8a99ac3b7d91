package dedupe

const defaultMaxSize = 50000

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of remembered IDs; the oldest are evicted
// first. maxSize <= 0 disables the bound.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}

// WithSeed pre-records IDs known from a previous run or from the store.
func WithSeed(ids ...string) Option {
	return func(d *inMemoryDeduper) {
		d.seed = append(d.seed, ids...)
	}
}
