package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Named("view").Info(ctx, "view computed",
				String("user_id", "u1"),
				Int("events", 3),
				Bool("personalized", true),
				Duration("took", 2*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries the component and the fields", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `"msg":"view computed"`)
				So(out, ShouldContainSubstring, `"component":"view"`)
				So(out, ShouldContainSubstring, `"user_id":"u1"`)
				So(out, ShouldContainSubstring, `"events":3`)
				So(out, ShouldContainSubstring, `"source"`)
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown")

			Convey("Then only the error record is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "WARNING", " error "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		l := Nop()

		Convey("Then logging never panics", func() {
			So(func() {
				l.Info(context.Background(), "x")
				l.Named("child").Error(context.Background(), "y", Error(errors.New("z")))
			}, ShouldNotPanic)
		})
	})
}
