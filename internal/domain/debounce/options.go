package debounce

import (
	"time"

	"github.com/okian/tactile/internal/domain/gesture"
)

// Option applies a configuration option to the in-memory scheduler.
type Option func(*inMemoryScheduler)

// WithDefaultCooldown sets the window for kinds without their own.
// Non-positive values are ignored.
func WithDefaultCooldown(d time.Duration) Option {
	return func(s *inMemoryScheduler) {
		if d > 0 {
			s.fallback = d
		}
	}
}

// WithCooldown overrides the window for one gesture kind. A zero window
// disables debouncing for that kind; negative values are ignored.
func WithCooldown(kind gesture.Kind, d time.Duration) Option {
	return func(s *inMemoryScheduler) {
		if d >= 0 {
			s.cooldowns[kind] = d
		}
	}
}
