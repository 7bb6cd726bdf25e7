package service

import (
	"context"
	"time"

	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/pkg/logger"
)

// EngineOption applies a configuration option to the Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets a custom logger for the engine.
func WithEngineLogger(l logger.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used for samples without a usable
// timestamp.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithDefaultCooldown sets the debounce window for shake and twist.
func WithDefaultCooldown(d time.Duration) EngineOption {
	return func(e *Engine) { e.defaultCooldown = d }
}

// WithTapCooldown sets the debounce window for device taps.
func WithTapCooldown(d time.Duration) EngineOption {
	return func(e *Engine) { e.tapCooldown = d }
}

// WithFlipCooldown sets the debounce window for flips.
func WithFlipCooldown(d time.Duration) EngineOption {
	return func(e *Engine) { e.flipCooldown = d }
}

// WithMaxClockSkew bounds how far a sample timestamp may lead the clock.
// Later timestamps are replaced by the clock. Non-positive values keep the
// default.
func WithMaxClockSkew(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.maxSkew = d
		}
	}
}

// WithFiringObserver registers fn to be called after every dispatch,
// including ones whose playback failed. fn runs inside the recognition
// pass and must not call back into the engine.
func WithFiringObserver(fn func(ctx context.Context, f model.Firing)) EngineOption {
	return func(e *Engine) { e.observer = fn }
}

// WithMappings registers mappings at construction.
func WithMappings(ms ...model.Mapping) EngineOption {
	return func(e *Engine) { e.initial = append(e.initial, ms...) }
}
