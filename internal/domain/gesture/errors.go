package gesture

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidGesture = errors.New("invalid gesture")
	ErrUnknownKind    = errors.New("unknown gesture kind")
)
