// Package queue holds contact submissions waiting for a record store writer.
//
// The queue is bounded; a full queue rejects instead of blocking so the
// HTTP layer can answer with backpressure.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/metrics"
)

const defaultQueueCapacity = 256

// Result is the outcome of one write.
type Result struct {
	ID  string
	Err error
}

// Job is one contact submission to persist. Result receives exactly one
// value when the job was accepted by a writer.
type Job struct {
	Contact  model.ContactSubmission
	Enqueued time.Time
	Result   chan Result
}

// NewJob creates a job with a buffered result channel, so a writer never
// blocks on a caller that stopped waiting.
func NewJob(c model.ContactSubmission) Job {
	return Job{Contact: c, Enqueued: time.Now(), Result: make(chan Result, 1)}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. It returns ErrFull or ErrClosed when the job was not queued.
	Enqueue(ctx context.Context, j Job) error

	// Jobs returns the channel writers consume. It is closed by Close.
	Jobs() <-chan Job

	// Len returns the current number of queued jobs.
	Len() int

	// Cap returns the configured capacity.
	Cap() int

	// Close stops accepting jobs. Queued jobs stay readable.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateWriterQueueCapacity(q.capacity)
	metrics.UpdateWriterQueueSize(0)
	return q
}

// Enqueue adds a job to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("writer_queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case q.jobs <- j:
		metrics.UpdateWriterQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordWriterQueueRejected()
		metrics.RecordErrorByComponent("writer_queue", "queue_full")
		return ErrFull
	}
}

// Jobs returns the consumer side of the queue.
func (q *InMemoryQueue) Jobs() <-chan Job {
	return q.jobs
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len() int {
	size := len(q.jobs)
	metrics.UpdateWriterQueueSize(size)
	return size
}

func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
