package flip_test

import (
	"math"
	"testing"

	"github.com/okian/tactile/internal/domain/flip"
	. "github.com/smartystreets/goconvey/convey"
)

func TestIsFaceUp(t *testing.T) {
	Convey("Given pitches around the face-up band", t, func() {
		So(flip.IsFaceUp(0), ShouldBeTrue)
		So(flip.IsFaceUp(0.7), ShouldBeTrue)
		So(flip.IsFaceUp(-0.7), ShouldBeTrue)
		So(flip.IsFaceUp(flip.PitchThreshold), ShouldBeFalse)
		So(flip.IsFaceUp(-flip.PitchThreshold), ShouldBeFalse)
		So(flip.IsFaceUp(math.Pi), ShouldBeFalse)
		So(flip.IsFaceUp(math.NaN()), ShouldBeFalse)
	})
}

func TestTracker(t *testing.T) {
	Convey("Given an unset tracker", t, func() {
		var tr flip.Tracker
		_, ok := tr.State()
		So(ok, ShouldBeFalse)

		Convey("When the first sample is flat", func() {
			matched := tr.Observe(0)

			Convey("Then it initializes face up without matching", func() {
				So(matched, ShouldBeFalse)
				faceUp, ok := tr.State()
				So(ok, ShouldBeTrue)
				So(faceUp, ShouldBeTrue)
			})

			Convey("And a flipped sample matches and records face down", func() {
				So(tr.Observe(math.Pi), ShouldBeTrue)
				faceUp, _ := tr.State()
				So(faceUp, ShouldBeFalse)

				Convey("And returning flat matches again", func() {
					So(tr.Observe(0), ShouldBeTrue)
					faceUp, _ := tr.State()
					So(faceUp, ShouldBeTrue)
				})
			})

			Convey("And staying flat never matches", func() {
				So(tr.Observe(0.1), ShouldBeFalse)
				So(tr.Observe(-0.3), ShouldBeFalse)
			})
		})

		Convey("When a non-finite pitch arrives between flat readings", func() {
			tr.Observe(0)
			nanMatched := tr.Observe(math.NaN())
			infMatched := tr.Observe(math.Inf(-1))
			faceUp, ok := tr.State()
			thenMatched := tr.Observe(0)

			Convey("Then it is ignored and no flip is invented", func() {
				So(nanMatched, ShouldBeFalse)
				So(infMatched, ShouldBeFalse)
				So(ok, ShouldBeTrue)
				So(faceUp, ShouldBeTrue)
				So(thenMatched, ShouldBeFalse)
			})
		})

		Convey("When the first readings are not finite", func() {
			tr.Prime(math.NaN())
			So(tr.Initialized(), ShouldBeFalse)
			So(tr.Observe(math.Inf(1)), ShouldBeFalse)
			So(tr.Initialized(), ShouldBeFalse)

			Convey("Then the first finite reading primes", func() {
				So(tr.Observe(math.Pi), ShouldBeFalse)
				faceUp, ok := tr.State()
				So(ok, ShouldBeTrue)
				So(faceUp, ShouldBeFalse)
			})
		})

		Convey("When the device leaves the band by exactly the margin", func() {
			tr.Observe(0)
			matched := tr.Observe(math.Pi/2 + math.Pi/4)

			Convey("Then the strict boundary does not flip", func() {
				So(matched, ShouldBeFalse)
			})

			Convey("But the state still moved silently to face down", func() {
				faceUp, _ := tr.State()
				So(faceUp, ShouldBeFalse)
			})
		})

		Convey("When the device leaves the band past the margin", func() {
			tr.Observe(0)

			Convey("Then it flips on either side", func() {
				So(tr.Observe(math.Pi/2+math.Pi/4+1e-9), ShouldBeTrue)
				tr.Reset()
				tr.Observe(0)
				So(tr.Observe(-(math.Pi/2 + math.Pi/4 + 1e-9)), ShouldBeTrue)
			})
		})

		Convey("When the device drifts out of the band then returns", func() {
			tr.Observe(0)
			So(tr.Observe(1.0), ShouldBeFalse)

			Convey("Then re-entry counts as a flip regardless of how far it moved", func() {
				So(tr.Observe(0.2), ShouldBeTrue)
			})
		})

		Convey("When the first sample is face down", func() {
			So(tr.Observe(math.Pi), ShouldBeFalse)

			Convey("Then moving deeper face down does not match", func() {
				So(tr.Observe(-math.Pi), ShouldBeFalse)
			})

			Convey("Then coming face up matches", func() {
				So(tr.Observe(0), ShouldBeTrue)
			})
		})

		Convey("When primed and reset", func() {
			tr.Prime(math.Pi)
			tr.Prime(0)
			faceUp, ok := tr.State()
			So(ok, ShouldBeTrue)
			So(faceUp, ShouldBeFalse)

			tr.Reset()
			So(tr.Initialized(), ShouldBeFalse)
			So(tr.Observe(0), ShouldBeFalse)
		})
	})
}
