package motion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAxis is returned when an axis name cannot be parsed.
var ErrInvalidAxis = errors.New("invalid axis")

// Axis selects one component of a Vector3.
type Axis uint8

// Axis values. The zero value is deliberately not a valid axis.
const (
	AxisUnknown Axis = iota
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "unknown"
	}
}

// Valid reports whether a names one of X, Y or Z.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// ParseAxis accepts "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	default:
		return AxisUnknown, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
	}
}
