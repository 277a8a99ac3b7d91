// Package model contains domain models passed between layers.
package model

import (
	"math"
	"strings"
	"time"
)

// CategoryOther is the fallback category for events without one.
const CategoryOther = "other"

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Event is a typed event record decoded from the events collection.
type Event struct {
	ID          string
	Title       string
	Description string
	Category    string
	Location    *Coordinate // nil when the event has no coordinate
	Date        *time.Time  // primary date field
	StartDate   *time.Time  // secondary date field used by some sources
	EventDate   *time.Time  // generic date field, parsed from strings upstream
	ImageURL    string
	ExternalID  string
	ExternalURL string
	External    bool
	UserID      string
	CreatedAt   time.Time
}

// EffectiveDate resolves the event's date by trying the primary, start and
// generic date fields in that order.
func (e *Event) EffectiveDate() (time.Time, bool) {
	for _, d := range []*time.Time{e.Date, e.StartDate, e.EventDate} {
		if d != nil && !d.IsZero() {
			return *d, true
		}
	}
	return time.Time{}, false
}

// NormalizedCategory returns the lower-cased, trimmed category.
func (e *Event) NormalizedCategory() string {
	return strings.ToLower(strings.TrimSpace(e.Category))
}

// HasLocation reports whether the event carries a coordinate.
func (e *Event) HasLocation() bool {
	return e.Location != nil
}

// Energy is a coarse activity intensity classification.
type Energy string

// Energy levels.
const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Label returns the user-facing label for the energy level.
func (e Energy) Label() string {
	switch e {
	case EnergyLow:
		return "Relaxed"
	case EnergyHigh:
		return "Energetic"
	default:
		return "Moderate"
	}
}

// UnknownDistance marks events whose distance cannot be computed.
var UnknownDistance = math.Inf(1)

// CalendarStatus describes how the calendar component of a score was derived.
type CalendarStatus string

// Calendar statuses.
const (
	CalendarAvailable CalendarStatus = "available"
	CalendarBusy      CalendarStatus = "busy"
	CalendarNoDate    CalendarStatus = "no_date"
	CalendarUnknown   CalendarStatus = "unknown"
	CalendarDenied    CalendarStatus = "denied"
)

// Breakdown holds the component scores of a recommendation, each in [0,1].
type Breakdown struct {
	Personality float64
	Distance    float64
	Imminence   float64
	Calendar    float64
	Circadian   float64
}

// ScoredEvent is an Event augmented with derived display and ranking data.
type ScoredEvent struct {
	Event
	DistanceKm       float64 // UnknownDistance when not computable
	Energy           Energy
	PersonalityMatch bool

	// Set only by the recommendation scorer.
	Scored         bool
	Score          float64
	Breakdown      Breakdown
	CalendarStatus CalendarStatus
}

// DistanceKnown reports whether DistanceKm holds a real distance.
func (s *ScoredEvent) DistanceKnown() bool {
	return !math.IsInf(s.DistanceKm, 1)
}

// Bucket names a grouping section.
type Bucket string

// Buckets in display order.
const (
	BucketToday    Bucket = "today"
	BucketTomorrow Bucket = "tomorrow"
	BucketWeekend  Bucket = "weekend"
	BucketLater    Bucket = "later"
)

// Title returns the section heading for a bucket.
func (b Bucket) Title() string {
	switch b {
	case BucketToday:
		return "Today"
	case BucketTomorrow:
		return "Tomorrow"
	case BucketWeekend:
		return "This Weekend"
	default:
		return "Later"
	}
}

// Section is one non-empty display group.
type Section struct {
	Bucket Bucket
	Events []ScoredEvent
}

// ViewModel is the result of the display pipeline for one set of inputs.
type ViewModel struct {
	Events          []ScoredEvent // filtered and distance-sorted
	Sections        []Section
	Recommendations []ScoredEvent
	Personalized    bool // the personality filter narrowed the list
	Fallback        bool // the personality filter matched nothing
	ManualFilters   bool
	Total           int // size of the unfiltered input
	GeneratedAt     time.Time
}
