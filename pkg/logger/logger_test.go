package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		defer func() { So(Sync(), ShouldBeNil) }()

		Convey("When logging at info", func() {
			Get().Info(context.Background(), "hello", String("k", "v"), Int("n", 3))

			Convey("Then the record carries fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=hello")
				So(out, ShouldContainSubstring, "k=v")
				So(out, ShouldContainSubstring, "n=3")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer SetLevel(slog.LevelInfo)
			Get().Info(context.Background(), "quiet")
			Get().Warn(context.Background(), "loud")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "quiet")
				So(buf.String(), ShouldContainSubstring, "loud")
			})
		})

		Convey("When using a named logger with fields", func() {
			Named("chat").With(String("session", "abc")).Info(context.Background(), "reply")

			Convey("Then the component and field are attached", func() {
				So(buf.String(), ShouldContainSubstring, "component=chat")
				So(buf.String(), ShouldContainSubstring, "session=abc")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "warn", "warning", "error", " INFO "} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		SetLevel(slog.LevelInfo)
	})
}

func TestDiscard(t *testing.T) {
	Convey("Discard never panics", t, func() {
		So(func() { Discard().Error(context.Background(), "x", Error(nil)) }, ShouldNotPanic)
		So(func() { Discard().Info(nil, "nil ctx") }, ShouldNotPanic) //nolint:staticcheck // nil ctx tolerated
	})
}
