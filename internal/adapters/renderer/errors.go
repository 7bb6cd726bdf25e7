package renderer

import "errors"

// Sentinel kinds for renderer errors.
var (
	ErrUnknownRenderer = errors.New("unknown renderer")
	ErrNotPrepared     = errors.New("renderer not prepared")
	ErrNotConnected    = errors.New("broker not connected")
	ErrNoClients       = errors.New("no haptic clients connected")
)
