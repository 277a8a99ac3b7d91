// Package scoring ranks events for a user by a weighted blend of personality
// fit, distance, imminence, calendar availability and circadian fit.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/eventpulse/internal/domain/circadian"
	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/pipeline"
	"github.com/okian/eventpulse/pkg/logger"
	"github.com/okian/eventpulse/pkg/metrics"
)

const (
	defaultLimit          = 5
	defaultCalendarWindow = 2 * time.Hour
)

// Calendar answers whether the user has anything scheduled in [start, end).
// Implementations return ErrPermissionDenied when access is not granted.
type Calendar interface {
	Busy(ctx context.Context, start, end time.Time) (bool, error)
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the component weights. Invalid weights are ignored.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// WithCalendar sets the availability source. Without one every calendar
// component is neutral.
func WithCalendar(c Calendar) Option {
	return func(s *Scorer) {
		s.calendar = c
	}
}

// WithCalendarWindow sets how long after the event start must be free.
func WithCalendarWindow(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithLimit sets the default number of recommendations returned.
func WithLimit(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// Scorer computes recommendations. It is safe for concurrent use.
type Scorer struct {
	weights  Weights
	calendar Calendar
	window   time.Duration
	limit    int
	log      logger.Logger
}

// New creates a scorer with default weights and no calendar.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: DefaultWeights(),
		window:  defaultCalendarWindow,
		limit:   defaultLimit,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the active weights.
func (s *Scorer) Weights() Weights { return s.weights }

// Eligible reports whether recommendations should be shown: a profile exists
// and no manual filter overrides personalization.
func Eligible(p *personality.Profile, c filter.Criteria) bool {
	return p != nil && !c.HasManual()
}

// Recommend scores every event and returns the top limit by descending score,
// ties kept in input order. limit <= 0 uses the configured default.
// Calendar failures degrade to a neutral component and never fail the call.
func (s *Scorer) Recommend(ctx context.Context, events []model.Event, p *personality.Profile, loc *model.Coordinate, now time.Time, limit int) ([]model.ScoredEvent, error) {
	start := time.Now()
	if limit <= 0 {
		limit = s.limit
	}

	scored := pipeline.Decorate(events, p, loc)
	for i := range scored {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("recommend: %w", err)
		}
		s.score(ctx, &scored[i], p, now)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	metrics.RecordRecommendation(float64(time.Since(start).Microseconds()) / 1000)
	return scored, nil
}

// Score computes the composite and breakdown for a single event.
func (s *Scorer) Score(ctx context.Context, e model.Event, p *personality.Profile, loc *model.Coordinate, now time.Time) model.ScoredEvent {
	out := pipeline.Decorate([]model.Event{e}, p, loc)[0]
	s.score(ctx, &out, p, now)
	return out
}

func (s *Scorer) score(ctx context.Context, e *model.ScoredEvent, p *personality.Profile, now time.Time) {
	date, hasDate := e.EffectiveDate()
	e.CalendarStatus = s.availability(ctx, e.ID, date, hasDate)
	e.Breakdown = Breakdown{
		Personality: PersonalityScore(&e.Event, p),
		Distance:    DistanceScore(e.DistanceKm),
		Imminence:   ImminenceScore(&e.Event, now),
		Calendar:    CalendarScore(e.CalendarStatus),
		Circadian:   circadian.Score(e.Energy, date, hasDate, now),
	}
	e.Score = s.weights.combine(e.Breakdown)
	e.Scored = true
}

func (s *Scorer) availability(ctx context.Context, id string, date time.Time, hasDate bool) model.CalendarStatus {
	status := model.CalendarNoDate
	switch {
	case !hasDate:
	case s.calendar == nil:
		status = model.CalendarUnknown
	default:
		busy, err := s.calendar.Busy(ctx, date, date.Add(s.window))
		switch {
		case errors.Is(err, ErrPermissionDenied):
			status = model.CalendarDenied
		case err != nil:
			s.log.Warn(ctx, "calendar lookup failed", logger.String("event_id", id), logger.Error(err))
			status = model.CalendarUnknown
		case busy:
			status = model.CalendarBusy
		default:
			status = model.CalendarAvailable
		}
	}
	metrics.RecordCalendarLookup(string(status))
	return status
}
