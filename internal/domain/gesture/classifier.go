package gesture

import (
	"math"

	"github.com/okian/tactile/internal/domain/motion"
)

// Matches runs the stateless classifier for spec against sample. It never
// fails: malformed specs and non-finite readings simply do not match.
// Stateful gestures (FlipOver) always report false here.
func Matches(spec Spec, sample motion.Sample) bool { //nolint:gocritic // hugeParam: samples are passed by value
	if !usableThreshold(spec.Threshold) {
		return false
	}

	switch spec.Kind {
	case KindShake, KindDeviceTap:
		// Squared comparison; equivalent to |a| > t for t >= 0.
		a := sample.Acceleration
		if !a.IsFinite() {
			return false
		}
		m2, t2 := a.SquaredMagnitude(), spec.Threshold*spec.Threshold
		if math.IsInf(m2, 0) || math.IsInf(t2, 0) {
			// A square overflowed; compare the magnitudes themselves.
			return math.Hypot(math.Hypot(a.X, a.Y), a.Z) > spec.Threshold
		}
		return m2 > t2
	case KindTwist:
		c := sample.RotationRate.Component(spec.Axis)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
		return math.Abs(c) > spec.Threshold
	default:
		return false
	}
}

func usableThreshold(t float64) bool {
	return t >= 0 && !math.IsInf(t, 0)
}
