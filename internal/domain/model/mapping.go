// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
)

// Mapping pairs a gesture with the effect played when it is recognized.
// Engines keep mappings in registration order; duplicates are allowed.
type Mapping struct {
	Gesture gesture.Spec
	Effect  haptic.Effect
}

// Validate checks both halves of the mapping.
func (m Mapping) Validate() error {
	if err := m.Gesture.Validate(); err != nil {
		return fmt.Errorf("gesture %s: %w", m.Gesture, err)
	}
	if err := m.Effect.Validate(); err != nil {
		return fmt.Errorf("effect %s: %w", m.Effect, err)
	}
	return nil
}

func (m Mapping) String() string {
	return m.Gesture.String() + " -> " + m.Effect.String()
}

// Firing records one dispatch: the mapping that matched, when, and the
// playback error if the renderer rejected the effect.
type Firing struct {
	Index   int // position of the mapping in registration order
	Gesture gesture.Spec
	Effect  haptic.Effect
	At      time.Time
	Err     error
}

// Failed reports whether playback failed.
func (f Firing) Failed() bool {
	return f.Err != nil
}
