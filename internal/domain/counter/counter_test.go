package counter

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAnimatorConvergence(t *testing.T) {
	Convey("Given a counter to 150 over 2000ms", t, func() {
		a := Animator{Target: 150, Duration: 2000 * time.Millisecond, Suffix: "+"}

		Convey("Sampling every 100ms is non-decreasing and ends exactly at the target", func() {
			prev := -1
			for ms := 0; ms <= 3000; ms += 100 {
				v := a.Value(time.Duration(ms) * time.Millisecond)
				So(v, ShouldBeGreaterThanOrEqualTo, prev)
				So(v, ShouldBeBetweenOrEqual, 0, 150)
				if ms >= 2000 {
					So(v, ShouldEqual, 150)
				}
				prev = v
			}
		})

		Convey("Values follow the eased curve", func() {
			So(a.Value(0), ShouldEqual, 0)
			So(a.Value(time.Second), ShouldEqual, 131)
			So(a.Format(time.Second), ShouldEqual, "131+")
			So(a.Done(1999*time.Millisecond), ShouldBeFalse)
			So(a.Done(2*time.Second), ShouldBeTrue)
		})

		Convey("Negative elapsed shows the start", func() {
			So(a.Value(-time.Second), ShouldEqual, 0)
		})
	})

	Convey("A zero duration completes immediately", t, func() {
		So(Animator{Start: 5, Target: 9}.Value(0), ShouldEqual, 9)
	})

	Convey("A non-zero start stays in range", t, func() {
		a := Animator{Start: 10, Target: 20, Duration: time.Second}
		So(a.Value(time.Millisecond), ShouldBeBetweenOrEqual, 10, 20)
	})

	Convey("The easing curve is anchored", t, func() {
		So(EaseOutCubic(0), ShouldEqual, 0)
		So(EaseOutCubic(1), ShouldEqual, 1)
		So(EaseOutCubic(0.5), ShouldEqual, 0.875)
	})
}

func TestRunBeginsOnce(t *testing.T) {
	Convey("Given a run", t, func() {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		r := NewRun(Animator{Target: 50, Duration: time.Second, Prefix: "$"})

		Convey("Before begin it shows the start value", func() {
			v, text, done := r.Sample(start.Add(time.Hour))
			So(v, ShouldEqual, 0)
			So(text, ShouldEqual, "$0")
			So(done, ShouldBeFalse)
			So(r.Started(), ShouldBeFalse)
		})

		Convey("A second begin does not restart it", func() {
			So(r.Begin(start), ShouldBeTrue)
			So(r.Begin(start.Add(900*time.Millisecond)), ShouldBeFalse)
			v, text, done := r.Sample(start.Add(time.Second))
			So(v, ShouldEqual, 50)
			So(text, ShouldEqual, "$50")
			So(done, ShouldBeTrue)
			So(r.Animator().Target, ShouldEqual, 50)
		})
	})
}
