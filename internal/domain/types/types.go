// Package types contains the wire shapes returned by the HTTP API.
package types

import (
	"math"
	"time"

	"github.com/okian/eventpulse/internal/domain/circadian"
	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/internal/domain/scoring"
)

// Location is a latitude/longitude pair.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Event is the API view of an event.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Location    *Location  `json:"location,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	ExternalID  string     `json:"externalId,omitempty"`
	ExternalURL string     `json:"externalUrl,omitempty"`
	External    bool       `json:"external"`
	UserID      string     `json:"userId,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Breakdown is the component scores of a recommendation.
type Breakdown struct {
	Personality float64 `json:"personality"`
	Distance    float64 `json:"distance"`
	Imminence   float64 `json:"imminence"`
	Calendar    float64 `json:"calendar"`
	Circadian   float64 `json:"circadian"`
}

// ScoredEvent is an event with display and ranking data.
type ScoredEvent struct {
	Event
	DistanceKm       *float64   `json:"distanceKm"`
	Energy           string     `json:"energy"`
	EnergyLabel      string     `json:"energyLabel"`
	PersonalityMatch bool       `json:"personalityMatch"`
	Score            *float64   `json:"score,omitempty"`
	MatchLabel       string     `json:"matchLabel,omitempty"`
	Breakdown        *Breakdown `json:"breakdown,omitempty"`
	CalendarStatus   string     `json:"calendarStatus,omitempty"`
}

// Section is a titled group of events.
type Section struct {
	Key    string        `json:"key"`
	Title  string        `json:"title"`
	Events []ScoredEvent `json:"events"`
}

// View is the response of the view endpoints.
type View struct {
	Events          []ScoredEvent `json:"events"`
	Sections        []Section     `json:"sections"`
	Recommendations []ScoredEvent `json:"recommendations"`
	Personalized    bool          `json:"personalized"`
	Fallback        bool          `json:"fallback"`
	ManualFilters   bool          `json:"manualFilters"`
	Total           int           `json:"total"`
	TimeOfDay       string        `json:"timeOfDay"`
	TimeOfDayHint   string        `json:"timeOfDayHint"`
	GeneratedAt     time.Time     `json:"generatedAt"`
}

// FromEvent converts a domain event.
func FromEvent(e *model.Event) Event {
	out := Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		ImageURL:    e.ImageURL,
		ExternalID:  e.ExternalID,
		ExternalURL: e.ExternalURL,
		External:    e.External,
		UserID:      e.UserID,
	}
	if e.Location != nil {
		out.Location = &Location{Latitude: e.Location.Latitude, Longitude: e.Location.Longitude}
	}
	if d, ok := e.EffectiveDate(); ok {
		out.Date = &d
	}
	if !e.CreatedAt.IsZero() {
		c := e.CreatedAt
		out.CreatedAt = &c
	}
	return out
}

// FromScored converts a decorated or scored event. An unknown distance is
// encoded as null.
func FromScored(s *model.ScoredEvent) ScoredEvent {
	out := ScoredEvent{
		Event:            FromEvent(&s.Event),
		Energy:           string(s.Energy),
		EnergyLabel:      s.Energy.Label(),
		PersonalityMatch: s.PersonalityMatch,
	}
	if s.DistanceKnown() {
		km := math.Round(s.DistanceKm*10) / 10
		out.DistanceKm = &km
	}
	if s.Scored {
		score := s.Score
		out.Score = &score
		out.MatchLabel = scoring.MatchLabel(score)
		out.Breakdown = &Breakdown{
			Personality: s.Breakdown.Personality,
			Distance:    s.Breakdown.Distance,
			Imminence:   s.Breakdown.Imminence,
			Calendar:    s.Breakdown.Calendar,
			Circadian:   s.Breakdown.Circadian,
		}
		out.CalendarStatus = string(s.CalendarStatus)
	}
	return out
}

// FromScoredList converts a slice, never returning nil.
func FromScoredList(in []model.ScoredEvent) []ScoredEvent {
	out := make([]ScoredEvent, 0, len(in))
	for i := range in {
		out = append(out, FromScored(&in[i]))
	}
	return out
}

// FromView converts a view model.
func FromView(v *model.ViewModel) View {
	sections := make([]Section, 0, len(v.Sections))
	for _, s := range v.Sections {
		sections = append(sections, Section{
			Key:    string(s.Bucket),
			Title:  s.Bucket.Title(),
			Events: FromScoredList(s.Events),
		})
	}
	period := circadian.PeriodOf(v.GeneratedAt.Hour())
	return View{
		Events:          FromScoredList(v.Events),
		Sections:        sections,
		Recommendations: FromScoredList(v.Recommendations),
		Personalized:    v.Personalized,
		Fallback:        v.Fallback,
		ManualFilters:   v.ManualFilters,
		Total:           v.Total,
		TimeOfDay:       period.String(),
		TimeOfDayHint:   period.Description(),
		GeneratedAt:     v.GeneratedAt,
	}
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required,min=10,max=5000"`
	Category    string    `json:"category" validate:"omitempty,max=50"`
	Location    *Location `json:"location" validate:"omitempty"`
	Date        string    `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time        string    `json:"time" validate:"omitempty,datetime=15:04"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
}

// QuizRequest is the body of POST /users/{id}/personality/quiz.
type QuizRequest struct {
	Answers []bool `json:"answers" validate:"required,len=16"`
}

// ManualPersonalityRequest is the body of PUT /users/{id}/personality/manual.
type ManualPersonalityRequest struct {
	MBTI string `json:"mbti" validate:"required,len=4"`
}

// SessionRequest creates or updates a session's inputs. Nil fields leave the
// current value unchanged on update.
type SessionRequest struct {
	UserID        string    `json:"userId" validate:"omitempty,max=128"`
	Location      *Location `json:"location" validate:"omitempty"`
	Categories    *[]string `json:"categories" validate:"omitempty,dive,max=50"`
	RadiusKm      *float64  `json:"radiusKm" validate:"omitempty,gt=0,lte=20000"`
	Range         *string   `json:"range" validate:"omitempty,oneof=all today tomorrow weekend week month"`
	Search        *string   `json:"search" validate:"omitempty,max=200"`
	ClearRadius   bool      `json:"clearRadius,omitempty"`
	ClearLocation bool      `json:"clearLocation,omitempty"`
}

// Session is the state of a long-lived view session.
type Session struct {
	ID                     string `json:"id"`
	UserID                 string `json:"userId,omitempty"`
	Generation             uint64 `json:"generation"`
	RecommendationsPending bool   `json:"recommendationsPending"`
	View                   View   `json:"view"`
}

// ViewQuery is the input of a one-shot view.
type ViewQuery struct {
	UserID   string
	Location *model.Coordinate
	Criteria filter.Criteria
	Limit    int // recommendations; <= 0 uses the default
}

// EventQuery decorates a single event for a user at a location. Both fields
// are optional.
type EventQuery struct {
	UserID   string
	Location *model.Coordinate
}

// ProfileResponse is the body of the personality endpoints. Profile is null
// when the user has none.
type ProfileResponse struct {
	UserID  string               `json:"userId"`
	Profile *personality.Profile `json:"profile"`
}

// CalendarEntry is a busy interval in a user's calendar.
type CalendarEntry struct {
	Title string    `json:"title" validate:"max=200"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

// CalendarAddResult is the reply to adding an event to a calendar.
// DefaultSlot is true when the event had no date.
type CalendarAddResult struct {
	Entry       CalendarEntry `json:"entry"`
	DefaultSlot bool          `json:"defaultSlot"`
}

// Stats are service-level counters.
type Stats struct {
	Events         int       `json:"events"`
	Sessions       int       `json:"sessions"`
	SnapshotAt     time.Time `json:"snapshotAt"`
	SnapshotsTotal uint64    `json:"snapshotsTotal"`
}

