// Package haptic defines the playable haptic effects.
package haptic

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TapDuration is the implicit length of a Tap.
const TapDuration = 50 * time.Millisecond

// Kind enumerates the closed set of effects.
type Kind uint8

// Effect kinds.
const (
	KindUnknown Kind = iota
	KindTap
	KindBuzz
)

func (k Kind) String() string {
	switch k {
	case KindTap:
		return "tap"
	case KindBuzz:
		return "buzz"
	default:
		return "unknown"
	}
}

// ParseKind accepts "tap" or "buzz".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tap":
		return KindTap, nil
	case "buzz":
		return KindBuzz, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Effect is a fixed-parameter playback request.
type Effect struct {
	Kind      Kind
	Intensity float32       // 0..1
	Sharpness float32       // 0..1
	Duration  time.Duration // buzz only
}

// Tap is a short transient.
func Tap(intensity, sharpness float32) Effect {
	return Effect{Kind: KindTap, Intensity: intensity, Sharpness: sharpness}
}

// Buzz is a continuous effect lasting d.
func Buzz(intensity, sharpness float32, d time.Duration) Effect {
	return Effect{Kind: KindBuzz, Intensity: intensity, Sharpness: sharpness, Duration: d}
}

// EffectiveDuration is how long the effect plays.
func (e Effect) EffectiveDuration() time.Duration {
	if e.Kind == KindTap {
		return TapDuration
	}
	return e.Duration
}

// Validate checks the parameters of e.
func (e Effect) Validate() error {
	switch e.Kind {
	case KindTap:
		if e.Duration != 0 {
			return fmt.Errorf("%w: tap has a fixed duration", ErrInvalidEffect)
		}
	case KindBuzz:
		if e.Duration <= 0 {
			return fmt.Errorf("%w: buzz duration %s must be positive", ErrInvalidEffect, e.Duration)
		}
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownKind, e.Kind)
	}
	if err := unitInterval("intensity", e.Intensity); err != nil {
		return err
	}
	return unitInterval("sharpness", e.Sharpness)
}

func (e Effect) String() string {
	if e.Kind == KindBuzz {
		return fmt.Sprintf("buzz(i=%.2f s=%.2f d=%s)", e.Intensity, e.Sharpness, e.Duration)
	}
	return fmt.Sprintf("%s(i=%.2f s=%.2f)", e.Kind, e.Intensity, e.Sharpness)
}

func unitInterval(name string, v float32) error {
	f := float64(v)
	if math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("%w: %s %v outside [0,1]", ErrInvalidEffect, name, v)
	}
	return nil
}
