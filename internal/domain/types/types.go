// Package types contains the JSON shapes shared by the API and its clients.
package types

import (
	"time"

	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
)

// MappingEntry is one registered mapping as exposed over HTTP.
type MappingEntry struct {
	Index   int                `json:"index"`
	Gesture gesture.Definition `json:"gesture"`
	Effect  haptic.Definition  `json:"effect"`
}

// FiringEntry is one dispatch as exposed over HTTP and to renderers.
type FiringEntry struct {
	Index   int                `json:"index"`
	Gesture gesture.Definition `json:"gesture"`
	Effect  haptic.Definition  `json:"effect"`
	At      time.Time          `json:"at"`
	Error   string             `json:"error,omitempty"`
}

// NewMappingEntry converts a domain mapping.
func NewMappingEntry(index int, m model.Mapping) MappingEntry {
	return MappingEntry{
		Index:   index,
		Gesture: gesture.DefinitionOf(m.Gesture),
		Effect:  haptic.DefinitionOf(m.Effect),
	}
}

// NewFiringEntry converts a domain firing.
func NewFiringEntry(f model.Firing) FiringEntry { //nolint:gocritic // hugeParam: firings are values
	e := FiringEntry{
		Index:   f.Index,
		Gesture: gesture.DefinitionOf(f.Gesture),
		Effect:  haptic.DefinitionOf(f.Effect),
		At:      f.At,
	}
	if f.Err != nil {
		e.Error = f.Err.Error()
	}
	return e
}
