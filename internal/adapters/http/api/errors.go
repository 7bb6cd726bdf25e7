package api

import "errors"

var (
	// ErrBadRequest answers 400: the body or query could not be used.
	ErrBadRequest = errors.New("bad request")
	// ErrBackpressure answers 429: the sample queue is full.
	ErrBackpressure = errors.New("backpressure")
	// ErrUnavailable answers 503: the queue is closed or the engine could
	// not acquire its renderer.
	ErrUnavailable = errors.New("unavailable")
)
