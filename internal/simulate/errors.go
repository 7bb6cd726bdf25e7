package simulate

import "errors"

// Sentinel errors.
var (
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrUnknownScenario = errors.New("unknown scenario")
	ErrUnhealthy       = errors.New("service unhealthy")
	ErrRejected        = errors.New("samples rejected")
	ErrVerification    = errors.New("verification failed")
)
