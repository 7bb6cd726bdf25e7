// Package gesture defines the recognizable gestures and the stateless
// threshold classifier for them.
package gesture

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/tactile/internal/domain/motion"
)

// Kind enumerates the closed set of gestures.
type Kind uint8

// Gesture kinds.
const (
	KindUnknown Kind = iota
	KindShake
	KindTwist
	KindDeviceTap
	KindFlipOver
)

func (k Kind) String() string {
	switch k {
	case KindShake:
		return "shake"
	case KindTwist:
		return "twist"
	case KindDeviceTap:
		return "tap"
	case KindFlipOver:
		return "flip"
	default:
		return "unknown"
	}
}

// ParseKind accepts the String() form of a kind plus a few aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shake":
		return KindShake, nil
	case "twist":
		return KindTwist, nil
	case "tap", "device_tap", "devicetap":
		return KindDeviceTap, nil
	case "flip", "flip_over", "flipover":
		return KindFlipOver, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Spec is one parameterized gesture. It is comparable; two specs are the
// same gesture iff every field is equal. Fields a kind does not use are
// always zero.
type Spec struct {
	Kind      Kind
	Threshold float64     // g for shake/tap, rad/s for twist
	Axis      motion.Axis // twist only
}

// Shake matches when the acceleration magnitude exceeds threshold (g).
func Shake(threshold float64) Spec {
	return Spec{Kind: KindShake, Threshold: threshold}
}

// Twist matches when the rotation rate about axis exceeds rateThreshold (rad/s).
func Twist(axis motion.Axis, rateThreshold float64) Spec {
	return Spec{Kind: KindTwist, Threshold: rateThreshold, Axis: axis}
}

// DeviceTap matches when the acceleration magnitude exceeds threshold (g).
// Detection is currently identical to Shake; the two differ only in their
// debounce window.
func DeviceTap(threshold float64) Spec {
	return Spec{Kind: KindDeviceTap, Threshold: threshold}
}

// FlipOver matches a face-up/face-down transition. It is stateful and is
// evaluated by the flip tracker, not by Matches.
func FlipOver() Spec {
	return Spec{Kind: KindFlipOver}
}

// Stateful reports whether the gesture depends on previous samples.
func (s Spec) Stateful() bool {
	return s.Kind == KindFlipOver
}

// Validate checks the parameters of s.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindShake, KindDeviceTap:
		if s.Axis != motion.AxisUnknown {
			return fmt.Errorf("%w: %s does not take an axis", ErrInvalidGesture, s.Kind)
		}
		return validThreshold(s.Kind, s.Threshold)
	case KindTwist:
		if !s.Axis.Valid() {
			return fmt.Errorf("%w: twist axis %s", ErrInvalidGesture, s.Axis)
		}
		return validThreshold(s.Kind, s.Threshold)
	case KindFlipOver:
		if s.Threshold != 0 || s.Axis != motion.AxisUnknown {
			return fmt.Errorf("%w: flip takes no parameters", ErrInvalidGesture)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownKind, s.Kind)
	}
}

func (s Spec) String() string {
	switch s.Kind {
	case KindTwist:
		return fmt.Sprintf("twist(%s>%g)", s.Axis, s.Threshold)
	case KindShake, KindDeviceTap:
		return fmt.Sprintf("%s(>%g)", s.Kind, s.Threshold)
	default:
		return s.Kind.String()
	}
}

func validThreshold(k Kind, t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %s threshold must be finite", ErrInvalidGesture, k)
	}
	if t < 0 {
		return fmt.Errorf("%w: %s threshold %g is negative", ErrInvalidGesture, k, t)
	}
	return nil
}
