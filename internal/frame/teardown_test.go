package frame

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTeardown(t *testing.T) {
	Convey("Given a teardown with tracked registrations", t, func() {
		clock := NewManualClock(epoch)
		loop := NewLoop(WithClock(clock))
		var td Teardown

		td.Track(loop, loop.Subscribe(func(Frame) {}))
		td.Track(loop, loop.After(time.Second, func() {}))
		var order []int
		td.Add(func() { order = append(order, 1) })
		td.Add(func() { order = append(order, 2) })
		td.Add(nil)

		Convey("When run twice", func() {
			td.Run()
			td.Run()

			Convey("Then everything is cancelled once in reverse order", func() {
				So(order, ShouldResemble, []int{2, 1})
				So(td.Done(), ShouldBeTrue)
				s := loop.Stats()
				So(s.Pending, ShouldEqual, 0)
				So(s.Cancelled, ShouldEqual, 2)
			})

			Convey("Then late additions run immediately", func() {
				late := false
				td.Add(func() { late = true })
				So(late, ShouldBeTrue)
			})
		})
	})
}
