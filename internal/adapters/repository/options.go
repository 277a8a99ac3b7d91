package repository

import (
	"time"

	"github.com/okian/eventpulse/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithAccessRule sets the delete rule for a collection, replacing the default.
func WithAccessRule(collection string, rule AccessRule) Option {
	return func(s *MemoryStore) {
		if rule != nil {
			s.rules[collection] = rule
		}
	}
}

// WithCollections restricts the store to the named collections.
func WithCollections(names ...string) Option {
	return func(s *MemoryStore) {
		if len(names) > 0 {
			s.allowed = make(map[string]bool, len(names))
			for _, n := range names {
				s.allowed[n] = true
			}
		}
	}
}

// WithClock sets the time source used for snapshot stamps and createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the generator used by Add.
func WithIDGenerator(gen func() string) Option {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
