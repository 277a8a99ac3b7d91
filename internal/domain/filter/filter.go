// Package filter narrows an event list by personality, category, distance,
// date range and free text.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/okian/eventpulse/internal/domain/geo"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
)

// DateRange restricts events to a window of local calendar days.
type DateRange string

// Date ranges.
const (
	RangeAll      DateRange = "all"
	RangeToday    DateRange = "today"
	RangeTomorrow DateRange = "tomorrow"
	RangeWeekend  DateRange = "weekend"
	RangeWeek     DateRange = "week"
	RangeMonth    DateRange = "month"
)

// ParseDateRange parses a range name. The empty string means all.
func ParseDateRange(s string) (DateRange, error) {
	switch r := DateRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeToday, RangeTomorrow, RangeWeekend, RangeWeek, RangeMonth:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Criteria is the user's filter state. It is never persisted.
type Criteria struct {
	Categories []string  `json:"categories,omitempty"`
	RadiusKm   *float64  `json:"radiusKm,omitempty"`
	Range      DateRange `json:"range,omitempty"`
	Search     string    `json:"search,omitempty"`
}

// HasManual reports whether any user-driven filter is active. Recommendations
// are only shown when none is.
func (c Criteria) HasManual() bool {
	return len(c.Categories) > 0 ||
		c.RadiusKm != nil ||
		(c.Range != "" && c.Range != RangeAll) ||
		strings.TrimSpace(c.Search) != ""
}

// Result is the outcome of Apply.
type Result struct {
	Events []model.Event
	// Personalized is true when the personality stage narrowed the list.
	Personalized bool
	// Fallback is true when the personality stage matched nothing and the
	// list was kept unfiltered.
	Fallback bool
}

// Apply runs the stages in order: personality or category, distance, date,
// search. The input slice is not modified.
func Apply(events []model.Event, profile *personality.Profile, loc *model.Coordinate, c Criteria, now time.Time) Result {
	res := Result{Events: events}

	if len(c.Categories) == 0 && profile != nil {
		matched := keep(res.Events, func(e *model.Event) bool {
			return personality.MatchesPersonality(e, profile)
		})
		if len(matched) > 0 {
			res.Events = matched
			res.Personalized = true
		} else {
			res.Fallback = true
		}
	}

	if len(c.Categories) > 0 {
		want := make([]string, 0, len(c.Categories))
		for _, cat := range c.Categories {
			want = append(want, strings.ToLower(strings.TrimSpace(cat)))
		}
		res.Events = keep(res.Events, func(e *model.Event) bool {
			return slices.Contains(want, e.NormalizedCategory())
		})
	}

	if c.RadiusKm != nil && loc != nil {
		radius := *c.RadiusKm
		res.Events = keep(res.Events, func(e *model.Event) bool {
			return e.HasLocation() && geo.DistanceKm(loc, e.Location) <= radius
		})
	}

	if c.Range != "" && c.Range != RangeAll {
		res.Events = keep(res.Events, InRange(c.Range, now))
	}

	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		res.Events = keep(res.Events, func(e *model.Event) bool {
			return strings.Contains(strings.ToLower(e.Title), q)
		})
	}

	return res
}

// InRange returns a predicate selecting events whose local calendar day falls
// inside r relative to now. Undated events pass only for RangeAll.
func InRange(r DateRange, now time.Time) func(*model.Event) bool {
	today := Midnight(now)
	weekendStart, weekendEnd := WeekendWindow(now)
	loc := now.Location()

	return func(e *model.Event) bool {
		d, ok := e.EffectiveDate()
		if !ok {
			return r == RangeAll
		}
		day := DayOf(d, loc)
		switch r {
		case RangeToday:
			return day.Equal(today)
		case RangeTomorrow:
			return day.Equal(today.AddDate(0, 0, 1))
		case RangeWeekend:
			return !day.Before(weekendStart) && day.Before(weekendEnd)
		case RangeWeek:
			return !day.Before(today) && !day.After(today.AddDate(0, 0, 7))
		case RangeMonth:
			return !day.Before(today) && !day.After(today.AddDate(0, 1, 0))
		default:
			return true
		}
	}
}

func keep(in []model.Event, pred func(*model.Event) bool) []model.Event {
	out := make([]model.Event, 0, len(in))
	for i := range in {
		if pred(&in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}
