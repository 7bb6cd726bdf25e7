// Package queue buffers motion samples between producers and the single
// recognition worker.
//
// Producers never block: a full or closed queue rejects the sample and the
// caller decides whether to retry. Samples leave in arrival order.
package queue

import (
	"context"
	"sync"

	"github.com/okian/tactile/internal/domain/motion"
	"github.com/okian/tactile/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a sample. Returns false if it was not queued.
	Enqueue(ctx context.Context, s motion.Sample) bool

	// Submit is Enqueue with the rejection reason:
	// ErrQueueClosed, ErrQueueFull or the context error.
	Submit(ctx context.Context, s motion.Sample) error

	// Dequeue returns the channel samples are delivered on. It is closed
	// once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan motion.Sample

	// Len returns the current number of queued samples.
	Len(ctx context.Context) int

	// Cap returns the configured capacity.
	Cap() int

	// Close stops accepting samples. Already queued samples are still
	// delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	samples  chan motion.Sample
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option configures an InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the number of buffered samples. Non-positive values
// keep the default.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}

	for _, opt := range opts {
		opt(q)
	}

	q.samples = make(chan motion.Sample, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()

	return q
}

// Enqueue adds a sample to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s motion.Sample) bool {
	return q.Submit(ctx, s) == nil
}

// Submit adds a sample to the queue and reports why it was rejected.
func (q *InMemoryQueue) Submit(ctx context.Context, s motion.Sample) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError("context_cancelled")
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrQueueClosed
	}

	select {
	case q.samples <- s:
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError("full")
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrQueueFull
	}
}

// Dequeue returns a channel that will receive samples as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan motion.Sample {
	out := make(chan motion.Sample)
	go func() {
		defer close(out)
		for {
			select {
			case s, ok := <-q.samples:
				if !ok {
					return
				}
				q.observe()
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued samples.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.samples)
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int {
	return q.capacity
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.samples)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() {
	size := len(q.samples)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
