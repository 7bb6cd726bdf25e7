package gesture_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/motion"
	. "github.com/smartystreets/goconvey/convey"
)

func accel(x, y, z float64) motion.Sample {
	return motion.Sample{Acceleration: motion.Vector3{X: x, Y: y, Z: z}}
}

func rotation(x, y, z float64) motion.Sample {
	return motion.Sample{RotationRate: motion.Vector3{X: x, Y: y, Z: z}}
}

func TestShakeClassifier(t *testing.T) {
	Convey("Given a shake gesture with a 1.8g threshold", t, func() {
		shake := gesture.Shake(1.8)

		Convey("When the magnitude is above the threshold", func() {
			So(gesture.Matches(shake, accel(1.9, 0, 0)), ShouldBeTrue)
			So(gesture.Matches(shake, accel(-1.9, 0, 0)), ShouldBeTrue)
			So(gesture.Matches(shake, accel(1.2, 1.2, 1.2)), ShouldBeTrue)
		})

		Convey("When the magnitude equals the threshold", func() {
			So(gesture.Matches(shake, accel(1.8, 0, 0)), ShouldBeFalse)
			So(gesture.Matches(shake, accel(0, -1.8, 0)), ShouldBeFalse)
		})

		Convey("When the magnitude is below the threshold", func() {
			So(gesture.Matches(shake, accel(0.5, 0.5, 0.5)), ShouldBeFalse)
			So(gesture.Matches(shake, accel(0, 0, 0)), ShouldBeFalse)
		})

		Convey("When the sample is not finite", func() {
			So(gesture.Matches(shake, accel(math.NaN(), 0, 0)), ShouldBeFalse)
			So(gesture.Matches(shake, accel(math.Inf(1), 0, 0)), ShouldBeFalse)
			So(gesture.Matches(shake, accel(0, math.Inf(-1), 5)), ShouldBeFalse)
		})
	})

	Convey("Given shakes with arbitrary thresholds", t, func() {
		for _, threshold := range []float64{0, 0.25, 1, 2.5, 10} {
			shake := gesture.Shake(threshold)
			for _, a := range []float64{-12, -2.5, -1, 0, 0.1, 0.25, 1, 2.5, 2.6, 11} {
				So(gesture.Matches(shake, accel(a, 0, 0)), ShouldEqual, math.Abs(a) > threshold)
			}
		}
	})

	Convey("Given magnitudes whose squares overflow", t, func() {
		huge := gesture.Shake(1e200)
		So(gesture.Matches(huge, accel(1e201, 0, 0)), ShouldBeTrue)
		So(gesture.Matches(huge, accel(0, -1e201, 0)), ShouldBeTrue)
		So(gesture.Matches(huge, accel(1e200, 0, 0)), ShouldBeFalse)
		So(gesture.Matches(huge, accel(1e199, 1e199, 1e199)), ShouldBeFalse)
		So(gesture.Matches(huge, accel(2, 0, 0)), ShouldBeFalse)

		So(gesture.Matches(gesture.Shake(1.8), accel(1e300, 1e300, 0)), ShouldBeTrue)
		So(gesture.Matches(gesture.DeviceTap(1e160), accel(0, 0, 2e160)), ShouldBeTrue)
	})

	Convey("Given a shake with a malformed threshold", t, func() {
		So(gesture.Matches(gesture.Shake(-1), accel(5, 0, 0)), ShouldBeFalse)
		So(gesture.Matches(gesture.Shake(math.NaN()), accel(5, 0, 0)), ShouldBeFalse)
		So(gesture.Matches(gesture.Shake(math.Inf(1)), accel(5, 0, 0)), ShouldBeFalse)
	})
}

func TestTwistClassifier(t *testing.T) {
	Convey("Given a twist about Z with rate threshold r", t, func() {
		const r = 3.0
		twist := gesture.Twist(motion.AxisZ, r)

		Convey("Then rates just above r match in either direction", func() {
			for _, eps := range []float64{1e-9, 0.01, 1, 100} {
				So(gesture.Matches(twist, rotation(0, 0, r+eps)), ShouldBeTrue)
				So(gesture.Matches(twist, rotation(0, 0, -(r+eps))), ShouldBeTrue)
			}
		})

		Convey("Then a rate exactly r does not match", func() {
			So(gesture.Matches(twist, rotation(0, 0, r)), ShouldBeFalse)
			So(gesture.Matches(twist, rotation(0, 0, -r)), ShouldBeFalse)
		})

		Convey("Then other axes are ignored", func() {
			So(gesture.Matches(twist, rotation(10, 10, 0)), ShouldBeFalse)
			So(gesture.Matches(twist, rotation(math.Inf(1), math.NaN(), 4)), ShouldBeTrue)
		})

		Convey("Then non-finite rates never match", func() {
			So(gesture.Matches(twist, rotation(0, 0, math.Inf(1))), ShouldBeFalse)
			So(gesture.Matches(twist, rotation(0, 0, math.NaN())), ShouldBeFalse)
		})
	})
}

func TestDeviceTapAndFlip(t *testing.T) {
	Convey("Given a tap and a shake with the same threshold", t, func() {
		tap := gesture.DeviceTap(1.5)
		shake := gesture.Shake(1.5)

		Convey("Then they classify identically", func() {
			for _, a := range []float64{0, 1, 1.5, 1.51, 3} {
				So(gesture.Matches(tap, accel(0, a, 0)), ShouldEqual, gesture.Matches(shake, accel(0, a, 0)))
			}
		})

		Convey("But they are distinct gestures", func() {
			So(tap == shake, ShouldBeFalse)
		})
	})

	Convey("Given a flip gesture", t, func() {
		flip := gesture.FlipOver()

		Convey("Then the stateless classifier never matches it", func() {
			So(flip.Stateful(), ShouldBeTrue)
			So(gesture.Matches(flip, motion.Sample{Attitude: motion.Attitude{Pitch: math.Pi}}), ShouldBeFalse)
		})
	})
}

func TestSpecValidate(t *testing.T) {
	Convey("Given gesture specs", t, func() {
		Convey("When parameters are valid", func() {
			So(gesture.Shake(0).Validate(), ShouldBeNil)
			So(gesture.Shake(1.8).Validate(), ShouldBeNil)
			So(gesture.DeviceTap(1.2).Validate(), ShouldBeNil)
			So(gesture.Twist(motion.AxisY, 2).Validate(), ShouldBeNil)
			So(gesture.FlipOver().Validate(), ShouldBeNil)
		})

		Convey("When thresholds are negative or not finite", func() {
			for _, s := range []gesture.Spec{
				gesture.Shake(-0.1),
				gesture.DeviceTap(math.NaN()),
				gesture.Twist(motion.AxisX, math.Inf(1)),
			} {
				So(errors.Is(s.Validate(), gesture.ErrInvalidGesture), ShouldBeTrue)
			}
		})

		Convey("When the twist axis is missing", func() {
			So(errors.Is(gesture.Twist(motion.AxisUnknown, 1).Validate(), gesture.ErrInvalidGesture), ShouldBeTrue)
		})

		Convey("When the kind is unknown", func() {
			So(errors.Is(gesture.Spec{}.Validate(), gesture.ErrUnknownKind), ShouldBeTrue)
		})
	})

	Convey("Given specs with equal parameters", t, func() {
		So(gesture.Shake(1.8) == gesture.Shake(1.8), ShouldBeTrue)
		So(gesture.Shake(1.8) == gesture.Shake(2.0), ShouldBeFalse)
		So(gesture.Twist(motion.AxisX, 1) == gesture.Twist(motion.AxisY, 1), ShouldBeFalse)
		So(gesture.Shake(1.8).String(), ShouldEqual, "shake(>1.8)")
		So(gesture.Twist(motion.AxisZ, 3).String(), ShouldEqual, "twist(z>3)")
	})
}

func TestDefinition(t *testing.T) {
	Convey("Given gesture definitions", t, func() {
		Convey("When converting valid definitions", func() {
			s, err := gesture.Definition{Type: "shake", Threshold: 1.8}.Spec()
			So(err, ShouldBeNil)
			So(s, ShouldResemble, gesture.Shake(1.8))

			s, err = gesture.Definition{Type: "twist", Threshold: 3, Axis: "Z"}.Spec()
			So(err, ShouldBeNil)
			So(s, ShouldResemble, gesture.Twist(motion.AxisZ, 3))

			s, err = gesture.Definition{Type: "device_tap", Threshold: 1.2}.Spec()
			So(err, ShouldBeNil)
			So(s, ShouldResemble, gesture.DeviceTap(1.2))

			s, err = gesture.Definition{Type: "flip"}.Spec()
			So(err, ShouldBeNil)
			So(s, ShouldResemble, gesture.FlipOver())
		})

		Convey("When converting invalid definitions", func() {
			_, err := gesture.Definition{Type: "wave"}.Spec()
			So(errors.Is(err, gesture.ErrUnknownKind), ShouldBeTrue)

			_, err = gesture.Definition{Type: "twist", Threshold: 3}.Spec()
			So(errors.Is(err, gesture.ErrInvalidGesture), ShouldBeTrue)
			So(errors.Is(err, motion.ErrInvalidAxis), ShouldBeTrue)

			_, err = gesture.Definition{Type: "shake", Threshold: -2}.Spec()
			So(errors.Is(err, gesture.ErrInvalidGesture), ShouldBeTrue)

			_, err = gesture.Definition{Type: "shake", Threshold: 2, Axis: "x"}.Spec()
			So(errors.Is(err, gesture.ErrInvalidGesture), ShouldBeTrue)

			_, err = gesture.Definition{Type: "flip", Threshold: 1}.Spec()
			So(errors.Is(err, gesture.ErrInvalidGesture), ShouldBeTrue)
		})

		Convey("When round-tripping through DefinitionOf", func() {
			for _, s := range []gesture.Spec{gesture.Shake(2), gesture.Twist(motion.AxisX, 1.5), gesture.DeviceTap(1), gesture.FlipOver()} {
				back, err := gesture.DefinitionOf(s).Spec()
				So(err, ShouldBeNil)
				So(back, ShouldResemble, s)
			}
		})
	})
}
