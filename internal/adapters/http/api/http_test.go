package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/eventpulse/internal/adapters/http/api"
	"github.com/okian/eventpulse/internal/adapters/repository"
	service "github.com/okian/eventpulse/internal/app"
	"github.com/okian/eventpulse/internal/domain/types"
	"github.com/okian/eventpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// Wednesday morning.
var now = time.Date(2026, 10, 14, 10, 0, 0, 0, time.Local)

type testServer struct {
	*httptest.Server
	store *repository.MemoryStore
	svc   *service.Service
	ids   map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ids := map[string]string{}
	ids["jazz"], _ = store.Add(ctx, repository.CollectionEvents, map[string]any{
		"title":       "Jazz Night",
		"description": "Live jazz in the park",
		"category":    "music",
		"location":    map[string]any{"latitude": 51.445, "longitude": 5.47},
		"date":        time.Date(2026, 10, 14, 20, 0, 0, 0, time.Local),
		"userId":      "owner",
	})
	ids["reading"], _ = store.Add(ctx, repository.CollectionEvents, map[string]any{
		"title":       "Quiet Reading",
		"description": "Bring a book and relax",
		"category":    "literature",
		"userId":      "owner",
	})

	svc := service.New(
		service.WithStore(store),
		service.WithClock(func() time.Time { return now }),
		service.WithLogger(logger.Nop()),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, logger.Nop()).Register(ctx, mux)
	ts := &testServer{Server: httptest.NewServer(mux), store: store, svc: svc, ids: ids}
	t.Cleanup(func() {
		ts.Close()
		svc.Stop()
		_ = store.Close()
	})
	return ts
}

func (ts *testServer) do(method, path, user string, body any) (*http.Response, []byte) {
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		So(err, ShouldBeNil)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	So(err, ShouldBeNil)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func decode[T any](raw []byte) T {
	var v T
	So(json.Unmarshal(raw, &v), ShouldBeNil)
	return v
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)

		Convey("When requesting /healthz", func() {
			resp, body := ts.do(http.MethodGet, "/healthz", "", nil)

			Convey("Then Prometheus metrics are served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, "eventpulse_")
			})
		})

		Convey("When requesting /stats", func() {
			resp, body := ts.do(http.MethodGet, "/stats", "", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(decode[types.Stats](body).Events, ShouldEqual, 2)
		})

		Convey("When using the wrong method", func() {
			resp, body := ts.do(http.MethodPost, "/stats", "", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			So(resp.Header.Get("Allow"), ShouldEqual, http.MethodGet)
			So(string(body), ShouldContainSubstring, "method_not_allowed")
		})
	})
}

func TestViewEndpoint(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)

		Convey("When an anonymous view is requested with a location", func() {
			resp, body := ts.do(http.MethodGet, "/view?lat=51.4416&lon=5.4697", "", nil)
			v := decode[types.View](body)

			Convey("Then events are sorted with unknown distances last", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(v.Events), ShouldEqual, 2)
				So(v.Events[0].Title, ShouldEqual, "Jazz Night")
				So(v.Events[0].DistanceKm, ShouldNotBeNil)
				So(v.Events[1].DistanceKm, ShouldBeNil)
				So(len(v.Recommendations), ShouldEqual, 0)
				So(v.TimeOfDay, ShouldEqual, "morning")
			})
		})

		Convey("When the user has a profile", func() {
			resp, _ := ts.do(http.MethodPut, "/users/u1/personality/manual", "u1", map[string]any{"mbti": "INTJ"})
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp, body := ts.do(http.MethodGet, "/view?user_id=u1&lat=51.4416&lon=5.4697&limit=1", "", nil)
			v := decode[types.View](body)

			Convey("Then one recommendation with a breakdown is returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(v.Recommendations), ShouldEqual, 1)
				So(v.Recommendations[0].Score, ShouldNotBeNil)
				So(v.Recommendations[0].Breakdown, ShouldNotBeNil)
				So(v.Recommendations[0].MatchLabel, ShouldNotBeEmpty)
			})

			Convey("Then a manual filter disables recommendations", func() {
				_, body := ts.do(http.MethodGet, "/view?q=reading", "u1", nil)
				v := decode[types.View](body)
				So(v.ManualFilters, ShouldBeTrue)
				So(len(v.Recommendations), ShouldEqual, 0)
				So(len(v.Events), ShouldEqual, 1)
			})
		})

		Convey("When query parameters are invalid", func() {
			for _, q := range []string{"lat=1", "lat=100&lon=0", "radius_km=-3", "range=fortnight", "limit=0"} {
				resp, body := ts.do(http.MethodGet, "/view?"+q, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
				So(string(body), ShouldContainSubstring, "bad_request")
			}
		})
	})
}

func TestEventEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)
		valid := map[string]any{
			"title":       "Board games",
			"description": "Bring your own games",
			"date":        "2026-10-16",
			"time":        "19:30",
			"location":    map[string]any{"latitude": 51.44, "longitude": 5.48},
		}

		Convey("When creating an event without identity", func() {
			resp, _ := ts.do(http.MethodPost, "/events", "", valid)
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When creating a valid event", func() {
			resp, body := ts.do(http.MethodPost, "/events", "u1", valid)
			ev := decode[types.Event](body)

			Convey("Then it is created and readable", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(resp.Header.Get("Location"), ShouldEqual, "/events/"+ev.ID)
				So(ev.Category, ShouldEqual, "other")

				resp, body := ts.do(http.MethodGet, "/events/"+ev.ID, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				got := decode[types.ScoredEvent](body)
				So(got.Title, ShouldEqual, "Board games")
				So(got.DistanceKm, ShouldBeNil)
				So(got.Energy, ShouldNotBeEmpty)
			})

			Convey("Then only the owner can delete it", func() {
				resp, _ := ts.do(http.MethodDelete, "/events/"+ev.ID, "u2", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusForbidden)

				resp, _ = ts.do(http.MethodDelete, "/events/"+ev.ID, "u1", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				resp, _ = ts.do(http.MethodGet, "/events/"+ev.ID, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When reading a seeded event from a location", func() {
			resp, body := ts.do(http.MethodGet, "/events/"+ts.ids["jazz"]+"?lat=51.4416&lon=5.4697", "", nil)
			got := decode[types.ScoredEvent](body)

			Convey("Then the distance and energy are attached", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(got.Title, ShouldEqual, "Jazz Night")
				So(got.DistanceKm, ShouldNotBeNil)
				So(*got.DistanceKm, ShouldAlmostEqual, 0.4)
				So(got.Energy, ShouldEqual, "high")
			})
		})

		Convey("When the event location query is incomplete or out of range", func() {
			for _, q := range []string{"?lat=51.4", "?lon=5.4", "?lat=91&lon=5", "?lat=x&lon=5"} {
				resp, _ := ts.do(http.MethodGet, "/events/"+ts.ids["jazz"]+q, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the body fails validation", func() {
			cases := []map[string]any{
				{"title": "", "description": "long enough text"},
				{"title": "x", "description": "short"},
				{"title": "x", "description": "long enough text", "time": "7pm", "date": "2026-10-16"},
				{"title": "x", "description": "long enough text", "location": map[string]any{"latitude": 95, "longitude": 0}},
			}
			for _, c := range cases {
				resp, _ := ts.do(http.MethodPost, "/events", "u1", c)
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
			So(ts.store.Count(repository.CollectionEvents), ShouldEqual, 2)
		})

		Convey("When the body is malformed or has unknown fields", func() {
			resp, _ := ts.do(http.MethodPost, "/events", "u1", "{not json")
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			resp, _ = ts.do(http.MethodPost, "/events", "u1", `{"title":"x","description":"long enough text","colour":"red"}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPersonalityEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)

		Convey("When the quiz is fetched", func() {
			resp, body := ts.do(http.MethodGet, "/quiz", "", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(len(decode[[]map[string]any](body)), ShouldEqual, 16)
		})

		Convey("When answers are submitted", func() {
			answers := make([]bool, 16)
			resp, body := ts.do(http.MethodPost, "/users/u1/personality/quiz", "u1", map[string]any{"answers": answers})

			Convey("Then the profile is stored and readable", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(decode[types.ProfileResponse](body).Profile, ShouldNotBeNil)

				_, body = ts.do(http.MethodGet, "/users/u1/personality", "", nil)
				So(decode[types.ProfileResponse](body).Profile, ShouldNotBeNil)
			})

			Convey("Then a reset clears it", func() {
				resp, _ := ts.do(http.MethodDelete, "/users/u1/personality", "u1", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				_, body := ts.do(http.MethodGet, "/users/u1/personality", "", nil)
				So(decode[types.ProfileResponse](body).Profile, ShouldBeNil)
			})
		})

		Convey("When the requests are invalid", func() {
			resp, _ := ts.do(http.MethodPost, "/users/u1/personality/quiz", "u1", map[string]any{"answers": make([]bool, 3)})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = ts.do(http.MethodPut, "/users/u1/personality/manual", "u1", map[string]any{"mbti": "ABCD"})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = ts.do(http.MethodPut, "/users/u1/personality/manual", "u2", map[string]any{"mbti": "INTJ"})
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)

			resp, _ = ts.do(http.MethodGet, "/users/u1/unknown", "u1", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSessionEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)

		Convey("When a session is created and updated", func() {
			resp, body := ts.do(http.MethodPost, "/sessions", "", map[string]any{
				"location": map[string]any{"latitude": 51.4416, "longitude": 5.4697},
			})
			sess := decode[types.Session](body)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(len(sess.View.Events), ShouldEqual, 2)

			resp, body = ts.do(http.MethodPut, "/sessions/"+sess.ID, "", map[string]any{"range": "today"})
			updated := decode[types.Session](body)

			Convey("Then the view follows the new criteria", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(updated.Generation, ShouldEqual, 2)
				So(len(updated.View.Events), ShouldEqual, 1)
			})

			Convey("Then an invalid range is rejected", func() {
				resp, _ := ts.do(http.MethodPut, "/sessions/"+sess.ID, "", map[string]any{"range": "year"})
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})

			Convey("Then deleting ends it", func() {
				resp, _ := ts.do(http.MethodDelete, "/sessions/"+sess.ID, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)
				resp, _ = ts.do(http.MethodGet, "/sessions/"+sess.ID, "", nil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestCalendarEndpoints(t *testing.T) {
	Convey("Given a running API", t, func() {
		ts := newTestServer(t)
		base := "/users/u1/calendar"

		Convey("When adding an event without access", func() {
			resp, _ := ts.do(http.MethodPost, base+"/events/"+ts.ids["jazz"], "u1", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})

		Convey("When access is granted", func() {
			resp, _ := ts.do(http.MethodPut, base+"/access", "u1", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

			resp, body := ts.do(http.MethodPost, base+"/events/"+ts.ids["reading"], "u1", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(decode[types.CalendarAddResult](body).DefaultSlot, ShouldBeTrue)

			resp, _ = ts.do(http.MethodPost, base+"/entries", "u1", map[string]any{
				"title": "Dinner",
				"start": "2026-10-14T19:00:00Z",
				"end":   "2026-10-14T18:00:00Z",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

			resp, _ = ts.do(http.MethodPost, base+"/entries", "u1", map[string]any{
				"title": "Dinner",
				"start": "2026-10-14T19:00:00Z",
				"end":   "2026-10-14T21:00:00Z",
			})
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)

			_, body = ts.do(http.MethodGet, base+"/entries", "u1", nil)
			So(len(decode[[]types.CalendarEntry](body)), ShouldEqual, 2)

			resp, _ = ts.do(http.MethodGet, base+"/entries", "u2", nil)
			So(resp.StatusCode, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestImportEndpoint(t *testing.T) {
	Convey("Given a service without an importer", t, func() {
		ts := newTestServer(t)
		resp, body := ts.do(http.MethodPost, "/admin/import", "", nil)
		So(resp.StatusCode, ShouldEqual, http.StatusNotImplemented)
		So(strings.Contains(string(body), "not_configured"), ShouldBeTrue)
	})
}
