// Package service wires the recognition engine to its sample pipeline and
// exposes the operations the HTTP API and transports depend on.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/tactile/internal/adapters/mq/queue"
	"github.com/okian/tactile/internal/adapters/mq/worker"
	"github.com/okian/tactile/internal/domain/gesture"
	"github.com/okian/tactile/internal/domain/haptic"
	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
)

const (
	defaultQueueSize      = 1024
	workerShutdownTimeout = 5 * time.Second
)

// Service owns one engine plus the queue and single worker that feed it.
// Producers on any goroutine call Enqueue; the worker delivers samples to
// the engine one at a time in arrival order.
type Service struct {
	mu sync.RWMutex

	engine  *Engine
	firings *FiringLog
	queue   queue.Queue
	worker  worker.Worker
	cancel  context.CancelFunc

	// Configuration
	queueSize int
	autoStart bool

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the capacity of the sample queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAutoStart starts the engine as part of Service.Start.
func WithAutoStart(enabled bool) Option {
	return func(s *Service) { s.autoStart = enabled }
}

// WithFiringLog exposes l through RecentFirings. The same log should be
// registered on the engine with WithFiringObserver(l.Add).
func WithFiringLog(l *FiringLog) Option {
	return func(s *Service) { s.firings = l }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service around an existing engine.
func New(engine *Engine, opts ...Option) *Service {
	s := &Service{
		engine:    engine,
		queueSize: defaultQueueSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the queue, launches the worker and, with auto start,
// starts the engine. The pipeline keeps running when the engine fails to
// start; the returned error wraps ErrEngineUnavailable and the engine can
// be started again later.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting tactile service...")

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s.engine, worker.WithName("recognizer"))

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.worker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "tactile service started", logger.Int("queueSize", s.queueSize))

	if s.autoStart {
		if err := s.engine.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops the engine, closes the queue and waits for the worker.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping tactile service...")

	s.engine.Stop(ctx)
	_ = s.queue.Close()

	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()
	if err := s.worker.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker shutdown", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "tactile service stopped")
}

// Engine returns the underlying engine.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Enqueue submits a sample for recognition. It returns false when the
// service is not started or the queue is full.
func (s *Service) Enqueue(ctx context.Context, sample motion.Sample) bool { //nolint:gocritic // hugeParam: samples are passed by value
	return s.Submit(ctx, sample) == nil
}

// Submit is Enqueue with the rejection reason.
func (s *Service) Submit(ctx context.Context, sample motion.Sample) error { //nolint:gocritic // hugeParam: samples are passed by value
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if err := s.queue.Submit(ctx, sample); err != nil {
		s.logger.Debug(ctx, "sample rejected", logger.Error(err))
		return err
	}
	return nil
}

// RegisterMapping forwards to the engine.
func (s *Service) RegisterMapping(ctx context.Context, g gesture.Spec, e haptic.Effect) error {
	return s.engine.RegisterMapping(ctx, g, e)
}

// AddMapping forwards to the engine and returns the assigned index.
func (s *Service) AddMapping(ctx context.Context, g gesture.Spec, e haptic.Effect) (int, error) {
	return s.engine.AddMapping(ctx, g, e)
}

// Mappings forwards to the engine.
func (s *Service) Mappings(_ context.Context) []model.Mapping {
	return s.engine.Mappings()
}

// RecentFirings returns up to n recent firings, newest first.
func (s *Service) RecentFirings(ctx context.Context, n int) []model.Firing {
	if s.firings == nil {
		return nil
	}
	return s.firings.Recent(ctx, n)
}

// StartEngine starts recognition without touching the pipeline.
func (s *Service) StartEngine(ctx context.Context) error {
	return s.engine.Start(ctx)
}

// StopEngine stops recognition without touching the pipeline.
func (s *Service) StopEngine(ctx context.Context) {
	s.engine.Stop(ctx)
}

// EngineState returns the engine state.
func (s *Service) EngineState(_ context.Context) State {
	return s.engine.State()
}

// EngineStatus returns the engine state name, "running" or "stopped".
func (s *Service) EngineStatus(ctx context.Context) string {
	return s.EngineState(ctx).String()
}

// GetStats returns engine counters plus queue occupancy.
func (s *Service) GetStats() map[string]interface{} {
	stats := s.engine.GetStats()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats["started"] = s.started
	stats["queueSize"] = s.queueSize
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
	}
	return stats
}

// String describes the service for logs.
func (s *Service) String() string {
	return fmt.Sprintf("tactile(queue=%d, engine=%s)", s.queueSize, s.engine.State())
}
