package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work.
type Job struct {
	ID      string
	Type    string
	Payload interface{}
}

// Handler processes a job. A non-nil error triggers a retry.
type Handler func(context.Context, Job) error

// Options tunes worker pool behaviour. Zero values fall back to safe defaults.
type Options struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue is an in-memory job dispatcher backed by a fixed worker pool.
type Queue struct {
	name    string
	handler Handler
	opts    Options

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue(name string, handler Handler, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = opts.Workers * 4
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Queue{
		name:    name,
		handler: handler,
		opts:    opts,
		jobs:    make(chan Job, opts.BufferSize),
	}
}

// Start launches the workers. Subsequent calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.started = true
	q.opts.Logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.opts.Workers))
}

// Stop cancels workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.opts.Logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue pushes a job onto the queue, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.run(job)
		}
	}
}

// run executes a job with retries handled inline; the worker sleeps through
// the retry delay rather than re-enqueueing, keeping ordering per worker.
func (q *Queue) run(job Job) {
	log := q.opts.Logger.With(zap.String("queue", q.name), zap.String("job_id", job.ID), zap.String("type", job.Type))
	for attempt := 0; ; attempt++ {
		err := q.handler(q.ctx, job)
		if err == nil {
			return
		}
		if attempt >= q.opts.MaxRetries {
			log.Error("job exceeded retries", zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		log.Warn("job failed, retrying", zap.Int("attempt", attempt+1), zap.Error(err))

		timer := time.NewTimer(q.opts.RetryDelay)
		select {
		case <-q.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}
