package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/eventpulse/internal/domain/filter"
	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	scoring "github.com/okian/eventpulse/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var home = &model.Coordinate{Latitude: 51.441642, Longitude: 5.469722}

type stubCalendar struct {
	busy  bool
	err   error
	calls int
}

func (c *stubCalendar) Busy(_ context.Context, start, end time.Time) (bool, error) {
	c.calls++
	if end.Sub(start) != 2*time.Hour {
		return false, errors.New("unexpected window")
	}
	return c.busy, c.err
}

func ptr(t time.Time) *time.Time { return &t }

func TestRecommendEndToEnd(t *testing.T) {
	Convey("Given a music fan and two candidate events", t, func() {
		now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local)
		profile := &personality.Profile{Interests: personality.Interests{Music: 4}}
		a := model.Event{
			ID: "A", Category: "music",
			Location: &model.Coordinate{Latitude: 51.4626, Longitude: 5.469722},
			Date:     ptr(time.Date(2026, 10, 15, 20, 0, 0, 0, time.Local)),
		}
		b := model.Event{
			ID: "B", Category: "calm",
			Location: &model.Coordinate{Latitude: 51.80, Longitude: 5.469722},
			Date:     ptr(time.Date(2026, 11, 20, 10, 0, 0, 0, time.Local)),
		}
		s := scoring.New()

		Convey("When recommending with B listed first", func() {
			recs, err := s.Recommend(context.Background(), []model.Event{b, a}, profile, home, now, 0)

			Convey("Then A wins on personality, distance and imminence", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 2)
				So(recs[0].ID, ShouldEqual, "A")
				So(recs[0].Breakdown.Personality, ShouldBeGreaterThan, recs[1].Breakdown.Personality)
				So(recs[0].Breakdown.Distance, ShouldBeGreaterThan, recs[1].Breakdown.Distance)
				So(recs[0].Breakdown.Imminence, ShouldBeGreaterThan, recs[1].Breakdown.Imminence)
				So(recs[0].Scored, ShouldBeTrue)
				So(recs[0].CalendarStatus, ShouldEqual, model.CalendarUnknown)
			})
		})

		Convey("When the filter criteria include a manual filter", func() {
			So(scoring.Eligible(profile, filter.Criteria{Search: "x"}), ShouldBeFalse)
			So(scoring.Eligible(profile, filter.Criteria{}), ShouldBeTrue)
			So(scoring.Eligible(nil, filter.Criteria{}), ShouldBeFalse)
		})
	})
}

func TestRecommendLimitAndOrder(t *testing.T) {
	Convey("Given more events than the limit", t, func() {
		now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local)
		events := make([]model.Event, 0, 8)
		for _, id := range []string{"e1", "e2", "e3", "e4", "e5", "e6", "e7", "e8"} {
			events = append(events, model.Event{ID: id, Category: "other"})
		}

		Convey("When every score ties", func() {
			recs, err := scoring.New().Recommend(context.Background(), events, nil, nil, now, 0)

			Convey("Then the default top five keep input order", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 5)
				for i, r := range recs {
					So(r.ID, ShouldEqual, events[i].ID)
				}
			})
		})

		Convey("When a custom limit is configured", func() {
			recs, err := scoring.New(scoring.WithLimit(3)).Recommend(context.Background(), events, nil, nil, now, 0)
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 3)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scoring.New().Recommend(ctx, events, nil, nil, now, 0)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}

func TestCalendarComponent(t *testing.T) {
	Convey("Given a dated event", t, func() {
		now := time.Date(2026, 10, 15, 10, 0, 0, 0, time.Local)
		e := model.Event{ID: "x", Date: ptr(now.Add(3 * time.Hour))}

		Convey("When the calendar is free", func() {
			cal := &stubCalendar{}
			out := scoring.New(scoring.WithCalendar(cal)).Score(context.Background(), e, nil, nil, now)
			So(cal.calls, ShouldEqual, 1)
			So(out.CalendarStatus, ShouldEqual, model.CalendarAvailable)
			So(out.Breakdown.Calendar, ShouldEqual, 1.0)
		})

		Convey("When the calendar is busy", func() {
			out := scoring.New(scoring.WithCalendar(&stubCalendar{busy: true})).Score(context.Background(), e, nil, nil, now)
			So(out.CalendarStatus, ShouldEqual, model.CalendarBusy)
			So(out.Breakdown.Calendar, ShouldEqual, 0.3)
		})

		Convey("When permission is denied", func() {
			cal := &stubCalendar{err: scoring.ErrPermissionDenied}
			out := scoring.New(scoring.WithCalendar(cal)).Score(context.Background(), e, nil, nil, now)
			So(out.CalendarStatus, ShouldEqual, model.CalendarDenied)
			So(out.Breakdown.Calendar, ShouldEqual, 0.5)
		})

		Convey("When the lookup fails", func() {
			cal := &stubCalendar{err: errors.New("boom")}
			out := scoring.New(scoring.WithCalendar(cal)).Score(context.Background(), e, nil, nil, now)
			So(out.CalendarStatus, ShouldEqual, model.CalendarUnknown)
			So(out.Breakdown.Calendar, ShouldEqual, 0.5)
		})

		Convey("When the event has no date", func() {
			cal := &stubCalendar{}
			out := scoring.New(scoring.WithCalendar(cal)).Score(context.Background(), model.Event{ID: "y"}, nil, nil, now)
			So(cal.calls, ShouldEqual, 0)
			So(out.CalendarStatus, ShouldEqual, model.CalendarNoDate)
		})
	})
}

func TestComponents(t *testing.T) {
	Convey("Given the component functions", t, func() {
		Convey("Personality", func() {
			So(scoring.PersonalityScore(&model.Event{Category: "music"}, nil), ShouldEqual, 0.5)

			p := &personality.Profile{
				Traits:    personality.Traits{E: 4, N: 4, S: 4, I: 4},
				Interests: personality.Interests{Social: 8, Culture: 8, Movies: 4},
			}
			// 8/8*0.4 + 4/4*0.2 + 4/4*0.2
			So(scoring.PersonalityScore(&model.Event{Category: "social"}, p), ShouldAlmostEqual, 0.8)
			So(scoring.PersonalityScore(&model.Event{Category: "culture"}, p), ShouldAlmostEqual, 0.8)
			So(scoring.PersonalityScore(&model.Event{Category: "movies"}, p), ShouldAlmostEqual, 0.2)
			// substring match on the trait terms only
			So(scoring.PersonalityScore(&model.Event{Category: "social dance"}, p), ShouldAlmostEqual, 0.4)

			huge := &personality.Profile{
				Traits:    personality.Traits{E: 40, S: 40},
				Interests: personality.Interests{Social: 80},
			}
			So(scoring.PersonalityScore(&model.Event{Category: "social"}, huge), ShouldEqual, 1.0)
		})

		Convey("Distance", func() {
			So(scoring.DistanceScore(5), ShouldEqual, 1.0)
			So(scoring.DistanceScore(5.01), ShouldEqual, 0.8)
			So(scoring.DistanceScore(20), ShouldEqual, 0.6)
			So(scoring.DistanceScore(50), ShouldEqual, 0.4)
			So(scoring.DistanceScore(51), ShouldEqual, 0.2)
			So(scoring.DistanceScore(model.UnknownDistance), ShouldEqual, 0.3)
		})

		Convey("Imminence", func() {
			now := time.Date(2026, 10, 15, 23, 0, 0, 0, time.Local)
			day := func(n int) *model.Event {
				return &model.Event{Date: ptr(time.Date(2026, 10, 15+n, 1, 0, 0, 0, time.Local))}
			}
			So(scoring.ImminenceScore(day(-3), now), ShouldEqual, 1.0)
			So(scoring.ImminenceScore(day(0), now), ShouldEqual, 1.0)
			So(scoring.ImminenceScore(day(1), now), ShouldEqual, 0.9)
			So(scoring.ImminenceScore(day(7), now), ShouldEqual, 0.8)
			So(scoring.ImminenceScore(day(30), now), ShouldEqual, 0.6)
			So(scoring.ImminenceScore(day(31), now), ShouldEqual, 0.4)
			So(scoring.ImminenceScore(&model.Event{}, now), ShouldEqual, 0.5)
		})

		Convey("Labels", func() {
			So(scoring.MatchLabel(0.85), ShouldEqual, "Perfect Match")
			So(scoring.MatchLabel(0.6), ShouldEqual, "Great Match")
			So(scoring.MatchLabel(0.45), ShouldEqual, "Good Match")
			So(scoring.MatchLabel(0.1), ShouldEqual, "Suggested")
		})
	})
}

func TestCompositeRange(t *testing.T) {
	Convey("Given many combinations of inputs", t, func() {
		now := time.Date(2026, 10, 15, 6, 0, 0, 0, time.Local)
		profiles := []*personality.Profile{
			nil,
			{},
			{Traits: personality.Traits{E: 9, I: 9, N: 9, S: 9}, Interests: personality.Interests{Music: 99, Calm: 99, Social: 99}},
		}
		cats := []string{"music", "calm", "social", "culture", "sport", "literature", "movies", "other", ""}
		events := make([]model.Event, 0, len(cats)*3)
		for i, c := range cats {
			events = append(events,
				model.Event{ID: c + "-undated", Category: c},
				model.Event{ID: c + "-near", Category: c, Location: home, Date: ptr(now.Add(time.Duration(i) * 7 * time.Hour))},
				model.Event{ID: c + "-far", Category: c, Location: &model.Coordinate{Latitude: -33.9, Longitude: 151.2}, Date: ptr(now.AddDate(0, 2, 0))},
			)
		}

		for _, p := range profiles {
			recs, err := scoring.New(scoring.WithCalendar(&stubCalendar{busy: true})).
				Recommend(context.Background(), events, p, home, now, len(events))
			So(err, ShouldBeNil)
			for _, r := range recs {
				So(r.Score, ShouldBeBetweenOrEqual, 0, 1)
				if p == nil {
					So(r.Breakdown.Personality, ShouldEqual, 0.5)
				}
			}
			for i := 1; i < len(recs); i++ {
				So(recs[i].Score, ShouldBeLessThanOrEqualTo, recs[i-1].Score)
			}
		}
	})
}

func TestWeights(t *testing.T) {
	Convey("Given weights", t, func() {
		So(scoring.DefaultWeights().Validate(), ShouldBeNil)

		bad := scoring.Weights{Personality: 0.5, Distance: 0.5, Imminence: 0.5}
		So(errors.Is(bad.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)

		neg := scoring.Weights{Personality: 1.5, Distance: -0.5}
		So(errors.Is(neg.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)

		Convey("When only distance counts", func() {
			s := scoring.New(scoring.WithWeights(scoring.Weights{Distance: 1}))
			out := s.Score(context.Background(), model.Event{Location: home}, nil, home, time.Now())
			So(math.Abs(out.Score-1.0), ShouldBeLessThan, 1e-9)
		})

		Convey("When invalid weights are passed they are ignored", func() {
			s := scoring.New(scoring.WithWeights(bad))
			So(s.Weights(), ShouldResemble, scoring.DefaultWeights())
		})
	})
}
