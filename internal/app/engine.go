package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/tactile/internal/domain/debounce"
	"github.com/okian/tactile/internal/domain/flip"
	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
	"github.com/okian/tactile/pkg/metrics"
)

// defaultMaxClockSkew is how far a sample timestamp may lead the engine
// clock and still drive debounce.
const defaultMaxClockSkew = 2 * time.Second

// State is the engine lifecycle state.
type State uint8

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Engine turns motion samples into haptic requests. It owns the ordered
// mapping list, the debounce state and the flip state. All methods are
// safe for concurrent use; recognition passes never interleave.
type Engine struct {
	mu sync.Mutex

	handle   rendererHandle
	state    State
	mappings []model.Mapping
	hasFlip  bool

	flip     flip.Tracker
	debounce debounce.Scheduler

	// config
	clock           func() time.Time
	observer        func(ctx context.Context, f model.Firing)
	defaultCooldown time.Duration
	tapCooldown     time.Duration
	flipCooldown    time.Duration
	maxSkew         time.Duration
	initial         []model.Mapping
	logger          logger.Logger

	// stats
	samples    int64
	fired      int64
	suppressed int64
	failures   int64
	clamped    int64
	lastFiring *model.Firing
}

// NewEngine builds a stopped engine around r. Mappings passed with
// WithMappings are validated like RegisterMapping.
func NewEngine(r Renderer, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		handle:  rendererHandle{renderer: r},
		clock:   time.Now,
		maxSkew: defaultMaxClockSkew,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	var dopts []debounce.Option
	if e.defaultCooldown > 0 {
		dopts = append(dopts, debounce.WithDefaultCooldown(e.defaultCooldown))
	}
	if e.tapCooldown > 0 {
		dopts = append(dopts, debounce.WithCooldown(gesture.KindDeviceTap, e.tapCooldown))
	}
	if e.flipCooldown > 0 {
		dopts = append(dopts, debounce.WithCooldown(gesture.KindFlipOver, e.flipCooldown))
	}
	e.debounce = debounce.NewInMemoryScheduler(dopts...)

	ctx := context.Background()
	for _, m := range e.initial {
		if err := e.RegisterMapping(ctx, m.Gesture, m.Effect); err != nil {
			return nil, err
		}
	}
	e.initial = nil

	metrics.UpdateEngineRunning(false)
	return e, nil
}

// RegisterMapping appends g -> eff to the mapping list. It is legal in
// either state. A flip mapping added while running primes on the next
// sample.
func (e *Engine) RegisterMapping(ctx context.Context, g gesture.Spec, eff haptic.Effect) error {
	_, err := e.AddMapping(ctx, g, eff)
	return err
}

// AddMapping is RegisterMapping that also returns the position the mapping
// was given in the list.
func (e *Engine) AddMapping(ctx context.Context, g gesture.Spec, eff haptic.Effect) (int, error) {
	m := model.Mapping{Gesture: g, Effect: eff}
	if err := m.Validate(); err != nil {
		return -1, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	e.mu.Lock()
	index := len(e.mappings)
	e.mappings = append(e.mappings, m)
	if g.Kind == gesture.KindFlipOver {
		e.hasFlip = true
	}
	metrics.UpdateMappingCount(len(e.mappings))
	e.mu.Unlock()

	e.logger.Info(ctx, "mapping registered",
		logger.Int("index", index),
		logger.String("mapping", m.String()),
	)
	return index, nil
}

// Start moves the engine to Running. It clears flip and debounce state and
// prepares the renderer; if that fails the engine stays Stopped and the
// error wraps ErrEngineUnavailable. Starting a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateRunning {
		return nil
	}

	e.flip.Reset()
	e.debounce.Reset(ctx)

	if err := e.handle.prepare(ctx); err != nil {
		metrics.RecordErrorByComponent("engine", "engine_unavailable")
		e.logger.Error(ctx, "renderer prepare failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	e.state = StateRunning
	metrics.UpdateEngineRunning(true)
	e.logger.Info(ctx, "engine started", logger.Int("mappings", len(e.mappings)))
	return nil
}

// Stop moves the engine to Stopped, clears flip state and shuts the
// renderer down. Stopping a stopped engine is a no-op. A recognition pass
// already in progress finishes first.
func (e *Engine) Stop(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateStopped {
		return
	}

	e.flip.Reset()
	e.handle.release(ctx)
	e.state = StateStopped

	metrics.UpdateEngineRunning(false)
	e.logger.Info(ctx, "engine stopped")
}

// Close stops the engine. It always returns nil.
func (e *Engine) Close() error {
	e.Stop(context.Background())
	return nil
}

// OnSample runs one recognition pass and returns the firing it produced,
// or nil. Samples delivered while stopped are ignored.
func (e *Engine) OnSample(ctx context.Context, s motion.Sample) *model.Firing { //nolint:gocritic // hugeParam: samples are passed by value
	start := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		metrics.RecordSampleDropped()
		return nil
	}
	defer func() {
		metrics.RecordSampleProcessed(float64(time.Since(start).Microseconds()) / 1000)
	}()

	e.samples++
	now := e.sampleTime(ctx, s)

	if e.hasFlip && !e.flip.Initialized() {
		e.flip.Prime(s.Attitude.Pitch)
	}

	for i, m := range e.mappings {
		if !e.debounce.Allow(ctx, m.Gesture, now) {
			e.suppressed++
			metrics.RecordGestureSuppressed(m.Gesture.Kind.String())
			continue
		}
		if !e.matches(m.Gesture, s) {
			continue
		}
		return e.dispatch(ctx, i, m, now)
	}
	return nil
}

// sampleTime returns the instant debounce uses for s: its own timestamp,
// or the clock when the timestamp is missing or leads the clock by more
// than maxSkew. A bad producer clock can then hold a gesture back by at
// most maxSkew plus its cooldown.
func (e *Engine) sampleTime(ctx context.Context, s motion.Sample) time.Time { //nolint:gocritic // hugeParam: samples are passed by value
	now := e.clock()
	if s.Timestamp.IsZero() {
		return now
	}
	if lead := s.Timestamp.Sub(now); lead > e.maxSkew {
		e.clamped++
		metrics.RecordErrorByComponent("engine", "future_timestamp")
		e.logger.Debug(ctx, "sample timestamp ahead of clock",
			logger.Duration("lead", lead),
		)
		return now
	}
	return s.Timestamp
}

func (e *Engine) matches(g gesture.Spec, s motion.Sample) bool { //nolint:gocritic // hugeParam: samples are passed by value
	if g.Kind == gesture.KindFlipOver {
		return e.flip.Observe(s.Attitude.Pitch)
	}
	return gesture.Matches(g, s)
}

// dispatch plays m's effect and records the firing. The debounce entry is
// written even when playback fails.
func (e *Engine) dispatch(ctx context.Context, i int, m model.Mapping, now time.Time) *model.Firing {
	f := model.Firing{Index: i, Gesture: m.Gesture, Effect: m.Effect, At: now}

	if err := e.handle.play(ctx, m.Effect); err != nil {
		f.Err = fmt.Errorf("%w: %s: %w", ErrPlaybackFailure, m.Effect, err)
		e.failures++
		metrics.RecordPlaybackFailure(m.Effect.Kind.String())
		metrics.RecordErrorByComponent("engine", "playback")
		e.logger.Warn(ctx, "playback failed",
			logger.Int("mapping", i),
			logger.String("gesture", m.Gesture.String()),
			logger.Error(err),
		)
	}

	e.debounce.Record(ctx, m.Gesture, now)
	e.fired++
	e.lastFiring = &f
	metrics.RecordGestureFired(m.Gesture.Kind.String(), m.Effect.Kind.String())

	if e.observer != nil {
		e.observer(ctx, f)
	}

	out := f
	return &out
}

// Mappings returns a copy of the mapping list in registration order.
func (e *Engine) Mappings() []model.Mapping {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Mapping(nil), e.mappings...)
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// GetStats returns engine counters for monitoring.
func (e *Engine) GetStats() map[string]interface{} {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := map[string]interface{}{
		"state":            e.state.String(),
		"renderer":         e.handle.state.String(),
		"mappings":         len(e.mappings),
		"samples":          e.samples,
		"fired":            e.fired,
		"suppressed":       e.suppressed,
		"playbackFailures": e.failures,
		"clampedTimes":     e.clamped,
		"debounceEntries":  e.debounce.Size(),
		"flipStateKnown":   e.flip.Initialized(),
	}
	if e.lastFiring != nil {
		stats["lastFiring"] = map[string]interface{}{
			"index":   e.lastFiring.Index,
			"gesture": e.lastFiring.Gesture.String(),
			"effect":  e.lastFiring.Effect.String(),
			"at":      e.lastFiring.At,
			"failed":  e.lastFiring.Failed(),
		}
	}
	return stats
}
