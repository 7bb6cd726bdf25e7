package gesture

import (
	"errors"
	"fmt"

	"github.com/okian/tactile/internal/domain/motion"
)

// Definition is the wire and config shape of a gesture.
type Definition struct {
	Type      string  `json:"type" yaml:"type" koanf:"type"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty" koanf:"threshold"`
	Axis      string  `json:"axis,omitempty" yaml:"axis,omitempty" koanf:"axis"`
}

// Spec converts d into a validated Spec.
func (d Definition) Spec() (Spec, error) {
	kind, err := ParseKind(d.Type)
	if err != nil {
		return Spec{}, err
	}

	if d.Axis != "" && kind != KindTwist {
		return Spec{}, fmt.Errorf("%w: %s does not take an axis", ErrInvalidGesture, kind)
	}

	var s Spec
	switch kind {
	case KindShake:
		s = Shake(d.Threshold)
	case KindDeviceTap:
		s = DeviceTap(d.Threshold)
	case KindTwist:
		axis, err := motion.ParseAxis(d.Axis)
		if err != nil {
			return Spec{}, errors.Join(ErrInvalidGesture, err)
		}
		s = Twist(axis, d.Threshold)
	case KindFlipOver:
		if d.Threshold != 0 || d.Axis != "" {
			return Spec{}, fmt.Errorf("%w: flip takes no parameters", ErrInvalidGesture)
		}
		s = FlipOver()
	}

	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

// DefinitionOf is the inverse of Definition.Spec.
func DefinitionOf(s Spec) Definition {
	d := Definition{Type: s.Kind.String(), Threshold: s.Threshold}
	if s.Kind == KindTwist {
		d.Axis = s.Axis.String()
	}
	return d
}
