// Package debounce rate-limits repeat firings of the same gesture.
package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/tactile/internal/domain/gesture"
)

// Default cooldown windows.
const (
	DefaultCooldown = 500 * time.Millisecond
	TapCooldown     = 200 * time.Millisecond
	FlipCooldown    = 1 * time.Second
)

// Scheduler tracks the last firing time per gesture and suppresses
// re-firing inside that gesture's cooldown window. Gestures are keyed by
// value: two shakes with different thresholds debounce independently.
type Scheduler interface {
	// Allow reports whether g may fire at now.
	Allow(ctx context.Context, g gesture.Spec, now time.Time) bool

	// Record stores now as the last firing time of g.
	Record(ctx context.Context, g gesture.Spec, now time.Time)

	// Reset forgets every recorded firing.
	Reset(ctx context.Context)

	// Cooldown returns the window applied to g.
	Cooldown(g gesture.Spec) time.Duration

	Size() int64
}

// inMemoryScheduler implements Scheduler with a mutex-guarded map.
type inMemoryScheduler struct {
	mu        sync.RWMutex
	last      map[gesture.Spec]time.Time
	cooldowns map[gesture.Kind]time.Duration
	fallback  time.Duration
	size      atomic.Int64
}

// NewInMemoryScheduler creates a scheduler with the default windows:
// taps 200ms, flips 1s, everything else 500ms.
func NewInMemoryScheduler(opts ...Option) Scheduler {
	s := &inMemoryScheduler{
		last: make(map[gesture.Spec]time.Time),
		cooldowns: map[gesture.Kind]time.Duration{
			gesture.KindDeviceTap: TapCooldown,
			gesture.KindFlipOver:  FlipCooldown,
		},
		fallback: DefaultCooldown,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *inMemoryScheduler) Cooldown(g gesture.Spec) time.Duration {
	if d, ok := s.cooldowns[g.Kind]; ok {
		return d
	}
	return s.fallback
}

func (s *inMemoryScheduler) Allow(_ context.Context, g gesture.Spec, now time.Time) bool {
	s.mu.RLock()
	last, ok := s.last[g]
	s.mu.RUnlock()

	if !ok {
		return true
	}
	return now.Sub(last) >= s.Cooldown(g)
}

func (s *inMemoryScheduler) Record(_ context.Context, g gesture.Spec, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.last[g]; !ok {
		s.size.Add(1)
	}
	s.last[g] = now
}

func (s *inMemoryScheduler) Reset(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = make(map[gesture.Spec]time.Time)
	s.size.Store(0)
}

// Size returns the number of gestures with a recorded firing.
func (s *inMemoryScheduler) Size() int64 {
	return s.size.Load()
}
