package haptic

import (
	"fmt"
	"time"
)

// Definition is the wire and config shape of an effect.
type Definition struct {
	Type       string  `json:"type" yaml:"type" koanf:"type"`
	Intensity  float32 `json:"intensity" yaml:"intensity" koanf:"intensity"`
	Sharpness  float32 `json:"sharpness" yaml:"sharpness" koanf:"sharpness"`
	DurationMS float64 `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty" koanf:"duration_ms"`
}

// Effect converts d into a validated Effect.
func (d Definition) Effect() (Effect, error) {
	kind, err := ParseKind(d.Type)
	if err != nil {
		return Effect{}, err
	}

	var e Effect
	switch kind {
	case KindTap:
		if d.DurationMS != 0 {
			return Effect{}, fmt.Errorf("%w: tap has a fixed duration", ErrInvalidEffect)
		}
		e = Tap(d.Intensity, d.Sharpness)
	case KindBuzz:
		e = Buzz(d.Intensity, d.Sharpness, time.Duration(d.DurationMS*float64(time.Millisecond)))
	}

	if err := e.Validate(); err != nil {
		return Effect{}, err
	}
	return e, nil
}

// DefinitionOf is the inverse of Definition.Effect.
func DefinitionOf(e Effect) Definition {
	d := Definition{Type: e.Kind.String(), Intensity: e.Intensity, Sharpness: e.Sharpness}
	if e.Kind == KindBuzz {
		d.DurationMS = float64(e.Duration) / float64(time.Millisecond)
	}
	return d
}
