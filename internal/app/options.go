package service

import (
	"time"

	"github.com/okian/eventpulse/internal/adapters/calendar"
	"github.com/okian/eventpulse/internal/adapters/repository"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/okian/eventpulse/internal/importer"
	"github.com/okian/eventpulse/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the document store. The caller keeps ownership and closes
// it; without this option the service creates and closes its own in-memory
// store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
			s.ownsStore = false
		}
	}
}

// WithCalendar sets the calendar provider.
func WithCalendar(c *calendar.MemoryCalendar) Option {
	return func(s *Service) {
		if c != nil {
			s.calendar = c
		}
	}
}

// WithImporter enables the import endpoint and scheduled imports.
func WithImporter(im *importer.Importer) Option {
	return func(s *Service) {
		s.importer = im
	}
}

// WithWeights sets the recommendation weights. Invalid weights are ignored.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// WithCalendarWindow sets the busy-check window after an event's start.
func WithCalendarWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithRecommendationLimit sets the default number of recommendations.
func WithRecommendationLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithSessionTTL expires sessions idle for longer than d.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
