package sensor

import "errors"

// Sentinel kinds for sensor errors.
var (
	ErrInvalidPayload = errors.New("invalid motion payload")
	ErrNotConnected   = errors.New("sensor transport not connected")
)
