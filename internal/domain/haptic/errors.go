package haptic

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidEffect = errors.New("invalid haptic effect")
	ErrUnknownKind   = errors.New("unknown haptic kind")
)
