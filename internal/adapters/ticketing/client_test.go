package ticketing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleBody = `{
  "_embedded": {"events": [
    {"id": "tm-1", "name": "Rock Night", "info": "loud   guitars all night",
     "url": "https://example.com/tm-1",
     "images": [{"url": "https://img.example.com/1.jpg", "width": 640}],
     "dates": {"start": {"localDate": "2026-10-20", "localTime": "20:00:00", "dateTime": "2026-10-20T18:00:00Z"}},
     "classifications": [{"primary": true, "segment": {"name": "Music"}}],
     "_embedded": {"venues": [{"name": "Effenaar", "location": {"latitude": "51.4486", "longitude": "5.4570"}}]}}
  ]},
  "page": {"size": 20, "totalElements": 1, "totalPages": 1, "number": 0}
}`

func TestClientSearch(t *testing.T) {
	Convey("Given a Discovery API stub", t, func() {
		var lastQuery atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastQuery.Store(r.URL.Query())
			if r.URL.Path != "/events.json" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(sampleBody))
		}))
		defer srv.Close()

		c := NewClient("secret", WithBaseURL(srv.URL))

		Convey("When searching around Eindhoven", func() {
			res, err := c.Search(context.Background(), Query{Latitude: 51.441642, Longitude: 5.469722, RadiusKm: 25})

			Convey("Then the request carries the key, centre and radius", func() {
				So(err, ShouldBeNil)
				q := lastQuery.Load().(url.Values)
				So(q["apikey"], ShouldResemble, []string{"secret"})
				So(q["latlong"], ShouldResemble, []string{"51.441642,5.469722"})
				So(q["radius"], ShouldResemble, []string{"25"})
			})

			Convey("Then the events are decoded", func() {
				So(len(res.Events), ShouldEqual, 1)
				ev := res.Events[0]
				So(ev.ID, ShouldEqual, "tm-1")
				So(ev.Classifications[0].Segment.Name, ShouldEqual, "Music")
				So(ev.Embedded.Venues[0].Location.Latitude, ShouldEqual, "51.4486")
				So(ev.Dates.Start.DateTime, ShouldEqual, "2026-10-20T18:00:00Z")
				So(res.Page.TotalPages, ShouldEqual, 1)
			})
		})

		Convey("When no API key is configured", func() {
			_, err := NewClient("", WithBaseURL(srv.URL)).Search(context.Background(), Query{})
			So(errors.Is(err, ErrNoAPIKey), ShouldBeTrue)
		})
	})
}

func TestClientBreaker(t *testing.T) {
	Convey("Given an upstream that always fails", t, func() {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewClient("secret", WithBaseURL(srv.URL), WithBreaker(2, 0.5, time.Minute), WithTimeout(time.Second))

		Convey("When it is called repeatedly", func() {
			_, err1 := c.Search(context.Background(), Query{RadiusKm: 25})
			_, err2 := c.Search(context.Background(), Query{RadiusKm: 25})
			_, err3 := c.Search(context.Background(), Query{RadiusKm: 25})

			Convey("Then the circuit opens and stops calling upstream", func() {
				So(errors.Is(err1, ErrBadResponse), ShouldBeTrue)
				So(errors.Is(err2, ErrBadResponse), ShouldBeTrue)
				So(errors.Is(err3, ErrUnavailable), ShouldBeTrue)
				So(errors.Is(err3, gobreaker.ErrOpenState), ShouldBeTrue)
				So(calls.Load(), ShouldEqual, 2)
				So(c.State(), ShouldEqual, gobreaker.StateOpen)
			})
		})
	})

	Convey("Given an upstream returning malformed JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer srv.Close()

		_, err := NewClient("secret", WithBaseURL(srv.URL)).Search(context.Background(), Query{})
		So(errors.Is(err, ErrBadResponse), ShouldBeTrue)
	})
}
