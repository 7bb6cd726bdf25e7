// Package worker drains the sample queue into the recognition engine.
//
// There is exactly one worker per engine. Recognition passes must be
// serialized and see samples in arrival order, so there is no pool.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/tactile/internal/domain/model"
	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/logger"
)

// SampleHandler consumes one sample. It returns the firing produced by the
// sample, or nil when nothing fired.
type SampleHandler interface {
	OnSample(ctx context.Context, s motion.Sample) *model.Firing
}

// Queue defines how the worker receives samples.
type Queue interface {
	Dequeue(ctx context.Context) <-chan motion.Sample
}

// Worker feeds queued samples to a handler.
type Worker interface {
	// Run blocks until ctx is canceled, Shutdown is called, or the queue
	// is closed and drained.
	Run(ctx context.Context)

	// Shutdown stops the loop and waits for Run to return.
	Shutdown(ctx context.Context) error

	// Done is closed once Run has returned.
	Done() <-chan struct{}
}

// InMemoryWorker implements Worker over a Queue.
type InMemoryWorker struct {
	queue   Queue
	handler SampleHandler
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName names the worker's logger component.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger replaces the named global logger.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, h SampleHandler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		handler:  h,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	samples := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-samples:
			if !ok {
				return
			}
			if f := w.handler.OnSample(ctx, s); f != nil {
				w.logger.Debug(ctx, "gesture fired",
					logger.Int("mapping", f.Index),
					logger.String("gesture", f.Gesture.String()),
					logger.Bool("failed", f.Failed()),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}
