package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/h2hmarketing/site/internal/domain/pointer"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedSource struct {
	s       pointer.Sample
	enabled bool
}

func (f fixedSource) Latest() (pointer.Sample, bool) { return f.s, f.enabled }

func TestRepulsionFalloff(t *testing.T) {
	Convey("Given the default repel radius", t, func() {
		r := DefaultParams().RepelRadius

		Convey("Force decreases strictly to zero across the radius", func() {
			samples := []float64{0.1, r / 2, r - 0.1, r, r + 1}
			forces := make([]float64, len(samples))
			for i, d := range samples {
				forces[i] = RepulsionForce(d, r)
			}
			So(forces[0], ShouldBeLessThan, 1)
			So(forces[0], ShouldBeGreaterThan, 0.999)
			So(forces[1], ShouldBeLessThan, forces[0])
			So(forces[2], ShouldBeLessThan, forces[1])
			So(forces[2], ShouldBeGreaterThan, 0)
			So(forces[3], ShouldEqual, 0)
			So(forces[4], ShouldEqual, 0)
		})

		Convey("Degenerate inputs give zero or full force, never NaN", func() {
			So(RepulsionForce(-5, r), ShouldEqual, 1)
			So(RepulsionForce(10, 0), ShouldEqual, 0)
			So(RepulsionForce(math.NaN(), r), ShouldEqual, 0)
		})
	})
}

func TestCompose(t *testing.T) {
	Convey("Given a composer and an anchored object", t, func() {
		c := NewComposer(DefaultParams())
		obj := FloatingObject{ID: "a", XPct: 50, YPct: 50, Depth: 1}.Anchor(1000, 800)
		vp := Viewport{Width: 1000, Height: 800}

		So(obj.RestX, ShouldEqual, 500)
		So(obj.RestY, ShouldEqual, 400)

		Convey("When the pointer sits exactly on the object", func() {
			got := c.Compose(obj, pointer.Sample{X: 500, Y: 400}, true, vp, 0)

			Convey("Then repulsion is skipped and parallax is centered", func() {
				So(got.DX, ShouldAlmostEqual, 0, 1e-9)
				So(got.DY, ShouldAlmostEqual, 15, 1e-9)
				So(got.RotationDeg, ShouldEqual, 0)
			})
		})

		Convey("When the pointer is 100px left of the object", func() {
			got := c.Compose(obj, pointer.Sample{X: 400, Y: 400}, true, vp, 0)

			Convey("Then the object is pushed right by half strength", func() {
				parallaxX := (400.0/1000 - 0.5) * 30
				So(got.DX, ShouldAlmostEqual, 40+parallaxX, 1e-9)
			})
		})

		Convey("When pointer effects are disabled", func() {
			got := c.Compose(obj, pointer.Sample{X: 400, Y: 400}, false, vp, 1)

			Convey("Then only the float remains", func() {
				So(got.DX, ShouldAlmostEqual, math.Sin(1)*15, 1e-9)
				So(got.DY, ShouldAlmostEqual, math.Cos(1)*15, 1e-9)
				So(got.RotationDeg, ShouldAlmostEqual, 20, 1e-9)
			})
		})

		Convey("When inputs are not finite", func() {
			bad := obj
			bad.RestX = math.NaN()
			got := c.Compose(bad, pointer.Sample{X: math.NaN(), Y: math.Inf(1)}, true, Viewport{}, math.Inf(-1))

			Convey("Then the result is still finite", func() {
				So(math.IsNaN(got.DX) || math.IsInf(got.DX, 0), ShouldBeFalse)
				So(math.IsNaN(got.DY) || math.IsInf(got.DY, 0), ShouldBeFalse)
				So(math.IsNaN(got.RotationDeg), ShouldBeFalse)
			})
		})

		Convey("When composing all hero objects from a shared source", func() {
			objs := HeroObjects()
			for i := range objs {
				objs[i] = objs[i].Anchor(1440, 900)
			}
			got := c.ComposeAll(objs, fixedSource{s: pointer.Sample{X: 700, Y: 450}, enabled: true}, Viewport{Width: 1440, Height: 900}, 2.5)
			So(len(got), ShouldEqual, 8)
			So(got[0], ShouldNotResemble, got[1])
		})

		Convey("Spin wraps at 360 degrees", func() {
			So(c.Rotation(obj, 0, false, vp, 19), ShouldAlmostEqual, 20, 1e-9)
		})

		Convey("Pointer tilt applies only when enabled", func() {
			p := DefaultParams()
			p.PointerTilt = 10
			tc := NewComposer(p)
			So(tc.Rotation(obj, 1000, true, vp, 0), ShouldAlmostEqual, 5, 1e-9)
			So(tc.Rotation(obj, 1000, false, vp, 0), ShouldEqual, 0)
			So(tc.Params().PointerTilt, ShouldEqual, 10)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Depth must be positive", t, func() {
		So(FloatingObject{ID: "z", Depth: 0}.Validate(), ShouldNotBeNil)
		So(errors.Is(FloatingObject{ID: "z", Depth: -1}.Validate(), ErrInvalidDepth), ShouldBeTrue)
		So(errors.Is(FloatingObject{ID: "z", Depth: math.NaN()}.Validate(), ErrInvalidDepth), ShouldBeTrue)
		So(FloatingObject{ID: "z", Depth: 0.5}.Validate(), ShouldBeNil)
	})

	Convey("The hero layout is valid and ids are unique", t, func() {
		So(ValidateAll(HeroObjects()), ShouldBeNil)
		dup := []FloatingObject{{ID: "a", Depth: 1}, {ID: "a", Depth: 1}}
		So(errors.Is(ValidateAll(dup), ErrDuplicateID), ShouldBeTrue)
	})
}

func TestMagnet(t *testing.T) {
	Convey("Given the default magnet", t, func() {
		m := DefaultMagnet()

		Convey("It attracts toward a nearby pointer", func() {
			got := m.Offset(100, 100, 200, 100)
			So(got.DX, ShouldAlmostEqual, 10, 1e-9)
			So(got.DY, ShouldEqual, 0)
		})

		Convey("It is zero outside the radius and at the center", func() {
			So(m.Offset(0, 0, 300, 0), ShouldResemble, Offset{})
			So(m.Offset(5, 5, 5, 5), ShouldResemble, Offset{})
		})
	})
}

func TestSmoother(t *testing.T) {
	Convey("Given a critically damped smoother", t, func() {
		s := NewSmoother(60, 6, 1)

		Convey("It converges on a fixed target without overshoot", func() {
			var got Offset
			prev := 0.0
			for i := 0; i < 240; i++ {
				got = s.Follow(Offset{DX: 10, DY: -10, RotationDeg: 7})
				So(got.DX, ShouldBeGreaterThanOrEqualTo, prev-1e-9)
				So(got.DX, ShouldBeLessThanOrEqualTo, 10+1e-6)
				prev = got.DX
			}
			So(got.DX, ShouldAlmostEqual, 10, 0.01)
			So(got.DY, ShouldAlmostEqual, -10, 0.01)
			So(got.RotationDeg, ShouldEqual, 7)
		})

		Convey("Reset returns to the origin", func() {
			s.Follow(Offset{DX: 5})
			s.Reset()
			So(s.Follow(Offset{}), ShouldResemble, Offset{})
		})
	})
}
