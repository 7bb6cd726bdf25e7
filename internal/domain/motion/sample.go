// Package motion contains the motion sample consumed by gesture recognition.
package motion

import (
	"math"
	"time"
)

// Vector3 is a three-axis reading.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// SquaredMagnitude returns x²+y²+z².
func (v Vector3) SquaredMagnitude() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Component returns the value on the given axis. Unknown axes read as NaN
// so that nothing compared against them can pass.
func (v Vector3) Component(axis Axis) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	case AxisZ:
		return v.Z
	default:
		return math.NaN()
	}
}

// IsFinite reports whether every component is a finite number.
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Attitude is the device orientation in radians.
type Attitude struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Roll  float64 `json:"roll" yaml:"roll"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
}

// Sample is one sensor tick.
type Sample struct {
	Acceleration Vector3   `json:"acceleration" yaml:"acceleration"`   // g, gravity compensated
	RotationRate Vector3   `json:"rotation_rate" yaml:"rotation_rate"` // rad/s
	Attitude     Attitude  `json:"attitude" yaml:"attitude"`
	Timestamp    time.Time `json:"ts,omitempty" yaml:"-"` // optional producer time
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
