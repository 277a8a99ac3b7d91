package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/eventpulse/internal/domain/model"
	"github.com/okian/eventpulse/internal/domain/personality"
	"github.com/okian/eventpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTime(t *testing.T) {
	Convey("Given heterogeneous date values", t, func() {
		ref := time.Date(2026, 10, 15, 18, 30, 0, 0, time.UTC)

		got, ok := ParseTime(ref)
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, ref)

		got, ok = ParseTime("2026-10-15T18:30:00Z")
		So(ok, ShouldBeTrue)
		So(got.Equal(ref), ShouldBeTrue)

		got, ok = ParseTime("2026-10-15")
		So(ok, ShouldBeTrue)
		So(got, ShouldEqual, time.Date(2026, 10, 15, 0, 0, 0, 0, time.Local))

		got, ok = ParseTime(float64(ref.UnixMilli()))
		So(ok, ShouldBeTrue)
		So(got.Equal(ref), ShouldBeTrue)

		got, ok = ParseTime(map[string]any{"seconds": float64(ref.Unix()), "nanoseconds": 0})
		So(ok, ShouldBeTrue)
		So(got.Equal(ref), ShouldBeTrue)

		got, ok = ParseTime(json.Number("1792089000000"))
		So(ok, ShouldBeTrue)
		So(got.UnixMilli(), ShouldEqual, 1792089000000)

		for _, bad := range []any{"next friday", "", nil, true, time.Time{}, -5, map[string]any{}} {
			_, ok = ParseTime(bad)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestDecodeEvent(t *testing.T) {
	Convey("Given an event document", t, func() {
		doc := Document{ID: "e1", Data: map[string]any{
			"title":       "  Jazz Night ",
			"description": "Live jazz in the park",
			"location":    map[string]any{"latitude": 51.44, "longitude": 5.47},
			"userId":      "u1",
			"startDate":   "2026-10-16T20:00",
			"eventDate":   "garbage",
			"external":    true,
			"externalId":  "tm-9",
		}}

		Convey("When decoded", func() {
			e, err := DecodeEvent(doc)

			Convey("Then fields are typed and defaults applied", func() {
				So(err, ShouldBeNil)
				So(e.Title, ShouldEqual, "Jazz Night")
				So(e.Category, ShouldEqual, model.CategoryOther)
				So(e.Location, ShouldResemble, &model.Coordinate{Latitude: 51.44, Longitude: 5.47})
				So(e.Date, ShouldBeNil)
				So(e.StartDate, ShouldNotBeNil)
				So(e.EventDate, ShouldBeNil)
				So(e.External, ShouldBeTrue)
				So(e.ExternalID, ShouldEqual, "tm-9")
			})

			Convey("Then encoding and decoding again keeps the meaning", func() {
				back, err := DecodeEvent(Document{ID: "e1", Data: EncodeEvent(&e)})
				So(err, ShouldBeNil)
				So(back.Title, ShouldEqual, e.Title)
				d1, _ := e.EffectiveDate()
				d2, _ := back.EffectiveDate()
				So(d2.Equal(d1), ShouldBeTrue)
				So(back.Location, ShouldResemble, e.Location)
			})
		})

		Convey("When the location is out of range", func() {
			doc.Data["location"] = map[string]any{"latitude": 95.0, "longitude": 5.0}
			e, err := DecodeEvent(doc)
			So(err, ShouldBeNil)
			So(e.Location, ShouldBeNil)
		})

		Convey("When the title is missing", func() {
			delete(doc.Data, "title")
			_, err := DecodeEvent(doc)
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})
	})

	Convey("Given a snapshot with an invalid record", t, func() {
		snap := Snapshot{Collection: CollectionEvents, Documents: []Document{
			{ID: "ok", Data: map[string]any{"title": "fine"}},
			{ID: "bad", Data: map[string]any{"description": "no title"}},
			{ID: "nil"},
		}}
		events := DecodeEvents(context.Background(), snap, logger.Nop())
		So(len(events), ShouldEqual, 1)
		So(events[0].ID, ShouldEqual, "ok")
	})
}

func TestDecodeProfile(t *testing.T) {
	Convey("Given user documents", t, func() {
		Convey("When personality is absent or null", func() {
			p, err := DecodeProfile(Document{ID: "u", Data: map[string]any{}})
			So(err, ShouldBeNil)
			So(p, ShouldBeNil)

			p, err = DecodeProfile(Document{ID: "u", Data: map[string]any{"personality": nil}})
			So(err, ShouldBeNil)
			So(p, ShouldBeNil)
		})

		Convey("When personality has the wrong shape", func() {
			_, err := DecodeProfile(Document{ID: "u", Data: map[string]any{"personality": "ENTP"}})
			So(errors.Is(err, ErrInvalidDocument), ShouldBeTrue)
		})

		Convey("When the stored code disagrees with the traits", func() {
			p, err := DecodeProfile(Document{ID: "u", Data: map[string]any{"personality": map[string]any{
				"mbti":      "ISFJ",
				"traits":    map[string]any{"E": 3.0, "I": 1.0, "N": 2.0, "S": 2.0, "T": 4.0, "F": 0.0, "J": 1.0, "P": 3.0},
				"interests": map[string]any{"music": 2.0, "calm": 1},
				"updatedAt": 1700000000000.0,
			}}})

			Convey("Then the traits win", func() {
				So(err, ShouldBeNil)
				So(p.MBTI, ShouldEqual, "ENTP")
				So(p.Interests.Calm, ShouldEqual, 1)
				So(p.UpdatedAt, ShouldEqual, 1700000000000)
			})
		})

		Convey("When a profile is encoded and decoded", func() {
			in, _ := personality.FromManual("INFJ", time.UnixMilli(1700000000000))
			out, err := DecodeProfile(Document{ID: "u", Data: EncodeProfile(in)})
			So(err, ShouldBeNil)
			So(out, ShouldResemble, in)

			cleared, err := DecodeProfile(Document{ID: "u", Data: EncodeProfile(nil)})
			So(err, ShouldBeNil)
			So(cleared, ShouldBeNil)
		})
	})
}
