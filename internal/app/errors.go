package service

import "errors"

// Sentinel error kinds for the engine and service.
var (
	// ErrConfiguration reports a malformed gesture or effect at registration.
	ErrConfiguration = errors.New("configuration error")

	// ErrEngineUnavailable reports that the haptic renderer could not prepare.
	ErrEngineUnavailable = errors.New("haptic engine unavailable")

	// ErrPlaybackFailure wraps a failed play request.
	ErrPlaybackFailure = errors.New("playback failure")

	// ErrNotStarted is returned by service calls that need the pipeline.
	ErrNotStarted = errors.New("service not started")
)
