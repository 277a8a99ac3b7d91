// Package pipeline turns an event snapshot into the display view: filter,
// decorate, sort by distance and group into date sections. Every function is
// pure and recomputes from scratch.
package pipeline

import (
	"sort"
	"time"

	"github.com/okian/eventpulse/internal/domain/circadian"
	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/geo"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
)

// Decorate computes distance, energy and the personality badge for each event.
// Distance is UnknownDistance when either side lacks a coordinate.
func Decorate(events []model.Event, profile *personality.Profile, loc *model.Coordinate) []model.ScoredEvent {
	out := make([]model.ScoredEvent, len(events))
	for i := range events {
		e := &events[i]
		out[i] = model.ScoredEvent{
			Event:            *e,
			DistanceKm:       geo.DistanceKm(loc, e.Location),
			Energy:           circadian.Classify(e),
			PersonalityMatch: personality.MatchesPersonality(e, profile),
		}
	}
	return out
}

// SortByDistance orders events by ascending distance in place. Events with an
// unknown distance go last; equal keys keep their input order.
func SortByDistance(events []model.ScoredEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		switch {
		case !a.DistanceKnown():
			return false
		case !b.DistanceKnown():
			return true
		default:
			return a.DistanceKm < b.DistanceKm
		}
	})
}

var bucketOrder = []model.Bucket{
	model.BucketToday, model.BucketTomorrow, model.BucketWeekend, model.BucketLater,
}

// BucketOf assigns an event to a date bucket relative to now. Undated events
// belong to Later.
func BucketOf(e *model.Event, now time.Time) model.Bucket {
	d, ok := e.EffectiveDate()
	if !ok {
		return model.BucketLater
	}
	today := filter.Midnight(now)
	day := filter.DayOf(d, now.Location())
	weekendStart, weekendEnd := filter.WeekendWindow(now)
	switch {
	case day.Equal(today):
		return model.BucketToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return model.BucketTomorrow
	case !day.Before(weekendStart) && day.Before(weekendEnd):
		return model.BucketWeekend
	default:
		return model.BucketLater
	}
}

// Group partitions events into the non-empty buckets in fixed order. Input
// order is kept inside each bucket.
func Group(events []model.ScoredEvent, now time.Time) []model.Section {
	byBucket := make(map[model.Bucket][]model.ScoredEvent, len(bucketOrder))
	for _, e := range events {
		b := BucketOf(&e.Event, now)
		byBucket[b] = append(byBucket[b], e)
	}
	sections := make([]model.Section, 0, len(bucketOrder))
	for _, b := range bucketOrder {
		if len(byBucket[b]) > 0 {
			sections = append(sections, model.Section{Bucket: b, Events: byBucket[b]})
		}
	}
	return sections
}

// ComputeView runs filter, decorate, sort and group. Recommendations are left
// empty; the scorer fills them separately.
func ComputeView(events []model.Event, profile *personality.Profile, loc *model.Coordinate, c filter.Criteria, now time.Time) model.ViewModel {
	res := filter.Apply(events, profile, loc, c, now)
	scored := Decorate(res.Events, profile, loc)
	SortByDistance(scored)
	return model.ViewModel{
		Events:        scored,
		Sections:      Group(scored, now),
		Personalized:  res.Personalized,
		Fallback:      res.Fallback,
		ManualFilters: c.HasManual(),
		Total:         len(events),
		GeneratedAt:   now,
	}
}
