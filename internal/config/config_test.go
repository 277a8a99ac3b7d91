package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/eventpulse/internal/config"
	"github.com/okian/eventpulse/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RecommendationLimit, convey.ShouldEqual, 5)
			convey.So(cfg.CalendarWindow(), convey.ShouldEqual, 2*time.Hour)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, 30*time.Minute)
			convey.So(cfg.Weights, convey.ShouldResemble, scoring.DefaultWeights())
			convey.So(cfg.Importer.RadiusKm, convey.ShouldEqual, 25)
			convey.So(cfg.ImportInterval(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.Metrics.Namespace, convey.ShouldEqual, "eventpulse")
			convey.So(cfg.Metrics.Subsystem, convey.ShouldEqual, "discovery")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given configs breaking a constraint", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"zero limit", func(c *config.Config) { c.RecommendationLimit = 0 }},
			{"zero window", func(c *config.Config) { c.CalendarWindowMinutes = 0 }},
			{"zero ttl", func(c *config.Config) { c.SessionTTLSeconds = 0 }},
			{"bad weights", func(c *config.Config) { c.Weights.Distance = 0.9 }},
			{"bad import lat", func(c *config.Config) { c.Importer.Latitude = 120 }},
			{"bad metrics namespace", func(c *config.Config) { c.Metrics.Namespace = "event-pulse" }},
			{"bad metrics label", func(c *config.Config) { c.Metrics.Labels = map[string]string{"1site": "x"} }},
			{"unsorted buckets", func(c *config.Config) { c.Metrics.LatencyBucketsMs = []float64{5, 1} }},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
