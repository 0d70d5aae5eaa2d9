// Package worker drains the contact queue into the record store with a
// fixed number of concurrent writers.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/h2hmarketing/site/internal/adapters/mq/queue"
	"github.com/h2hmarketing/site/internal/domain/model"
	"github.com/h2hmarketing/site/pkg/logger"
	"github.com/h2hmarketing/site/pkg/metrics"
)

const defaultWorkerCount = 4

// Inserter persists one contact submission.
type Inserter interface {
	InsertContact(ctx context.Context, c model.ContactSubmission) (string, error)
}

// Stats is a snapshot of pool activity.
type Stats struct {
	Workers       int   `json:"workers"`
	QueueLen      int   `json:"queue_len"`
	QueueCapacity int   `json:"queue_capacity"`
	Written       int64 `json:"written"`
	Failed        int64 `json:"failed"`
}

// writer consumes jobs until the queue is closed or ctx ends.
type writer struct {
	store Inserter
	pool  *Pool
	log   logger.Logger
}

func (w *writer) run(ctx context.Context, jobs <-chan queue.Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

func (w *writer) process(ctx context.Context, job queue.Job) {
	metrics.RecordStoreLatency("writer_wait", float64(time.Since(job.Enqueued).Milliseconds()))

	id, err := w.store.InsertContact(ctx, job.Contact)
	if err != nil {
		w.pool.failed.Add(1)
		metrics.RecordErrorByComponent("writer", "insert_failed")
		w.log.Warn(ctx, "contact insert failed", logger.Error(err))
	} else {
		w.pool.written.Add(1)
		w.log.Debug(ctx, "contact stored", logger.String("id", id))
	}
	select {
	case job.Result <- queue.Result{ID: id, Err: err}:
	default:
	}
	metrics.UpdateWriterQueueSize(w.pool.queue.Len())
}

// Pool runs the writers and offers a blocking submit on top of the queue.
type Pool struct {
	queue queue.Queue
	store Inserter
	name  string
	count int

	written atomic.Int64
	failed  atomic.Int64

	wg      sync.WaitGroup
	started atomic.Bool

	logger logger.Logger
}

// NewPool creates a pool writing jobs from q into store.
func NewPool(q queue.Queue, store Inserter, opts ...Option) *Pool {
	p := &Pool{
		queue:  q,
		store:  store,
		name:   "contact-writer",
		count:  defaultWorkerCount,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named(p.name)
	return p
}

// Start launches the writers. Calling it twice has no effect.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	jobs := p.queue.Jobs()
	for i := range p.count {
		w := &writer{
			store: p.store,
			pool:  p,
			log:   p.logger.With(logger.String("writer", strconv.Itoa(i))),
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(ctx, jobs)
		}()
	}
	p.logger.Info(ctx, "writers started", logger.Int("count", p.count), logger.Int("capacity", p.queue.Cap()))
}

// SubmitContact enqueues c and waits for its write. A full queue returns
// queue.ErrFull immediately.
func (p *Pool) SubmitContact(ctx context.Context, c model.ContactSubmission) (string, error) {
	job := queue.NewJob(c)
	if err := p.queue.Enqueue(ctx, job); err != nil {
		return "", err
	}
	select {
	case res := <-job.Result:
		return res.ID, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Stats returns a snapshot of the pool.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:       p.count,
		QueueLen:      p.queue.Len(),
		QueueCapacity: p.queue.Cap(),
		Written:       p.written.Load(),
		Failed:        p.failed.Load(),
	}
}

// Shutdown closes the queue and waits for writers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn(ctx, "writer shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
