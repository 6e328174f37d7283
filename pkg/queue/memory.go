package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/watchdock/agent/internal/logger"
)

// MemoryQueue is the in-process backend. It keeps the same contract as the
// redis backend so single-node deployments and tests don't need a broker.
type MemoryQueue struct {
	Logger      *logger.Logger
	MaxAttempts int
	BackoffBase time.Duration

	PollInterval time.Duration

	mu      sync.Mutex
	pending map[string][]*Job
	dedup   map[string]bool
	failed  map[string][]*Job

	registrations []registration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

type registration struct {
	queueName   string
	handler     Handler
	concurrency int
}

func NewMemoryQueue(l *logger.Logger, maxAttempts int, backoffBase time.Duration) *MemoryQueue {
	return &MemoryQueue{
		Logger:       l,
		MaxAttempts:  maxAttempts,
		BackoffBase:  backoffBase,
		PollInterval: 25 * time.Millisecond,
		pending:      make(map[string][]*Job),
		dedup:        make(map[string]bool),
		failed:       make(map[string][]*Job),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, queueName, jobName string, payload []byte, opts EnqueueOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if opts.DedupKey != "" {
		key := dedupKey(queueName, opts.DedupKey)

		if q.dedup[key] {
			return ErrDuplicateJob
		}

		q.dedup[key] = true
	}

	q.pending[queueName] = append(q.pending[queueName], &Job{
		ID:       uuid.New().String(),
		Queue:    queueName,
		Name:     jobName,
		Payload:  payload,
		DedupKey: opts.DedupKey,
		RunAt:    time.Now().Add(opts.Delay),
	})

	return nil
}

func (q *MemoryQueue) RegisterWorker(queueName string, handler Handler, concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}

	q.registrations = append(q.registrations, registration{queueName, handler, concurrency})
}

func (q *MemoryQueue) Start(ctx context.Context) error {
	q.mu.Lock()

	if q.started {
		q.mu.Unlock()
		return fmt.Errorf("memory queue already started")
	}

	q.started = true
	q.mu.Unlock()

	ctx, q.cancel = context.WithCancel(ctx)

	for _, reg := range q.registrations {
		for i := 0; i < reg.concurrency; i++ {
			q.wg.Add(1)

			go q.runWorker(ctx, reg)
		}
	}

	return nil
}

func (q *MemoryQueue) Shutdown(ctx context.Context) error {
	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})

	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FailedJobs returns the terminally failed jobs of a queue, retained for
// inspection.
func (q *MemoryQueue) FailedJobs(queueName string) []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]*Job, len(q.failed[queueName]))
	copy(jobs, q.failed[queueName])

	return jobs
}

func (q *MemoryQueue) runWorker(ctx context.Context, reg registration) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				job := q.pop(reg.queueName)

				if job == nil {
					break
				}

				q.process(ctx, reg, job)
			}
		}
	}
}

// pop removes and returns the earliest runnable job, or nil.
func (q *MemoryQueue) pop(queueName string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	jobs := q.pending[queueName]

	best := -1

	for i, job := range jobs {
		if job.RunAt.After(now) {
			continue
		}

		if best == -1 || job.RunAt.Before(jobs[best].RunAt) {
			best = i
		}
	}

	if best == -1 {
		return nil
	}

	job := jobs[best]
	q.pending[queueName] = append(jobs[:best], jobs[best+1:]...)

	return job
}

func (q *MemoryQueue) process(ctx context.Context, reg registration, job *Job) {
	err := q.invoke(ctx, reg.handler, job)

	if err == nil {
		q.complete(job)
		return
	}

	q.Logger.Error().Caller().Msgf("job %s (%s/%s) failed on attempt %d: %v",
		job.ID, job.Queue, job.Name, job.Attempt+1, err)

	job.Attempt++

	if job.Attempt > q.MaxAttempts {
		q.fail(job)
		return
	}

	q.mu.Lock()
	job.RunAt = time.Now().Add(backoffDelay(q.BackoffBase, job.Attempt-1))
	q.pending[job.Queue] = append(q.pending[job.Queue], job)
	q.mu.Unlock()
}

// invoke shields the worker goroutine from handler panics; a panic is a
// retryable failure like any other handler error.
func (q *MemoryQueue) invoke(ctx context.Context, handler Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(ctx, job)
}

func (q *MemoryQueue) complete(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.releaseDedup(job)
}

func (q *MemoryQueue) fail(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.failed[job.Queue] = append(q.failed[job.Queue], job)
	q.releaseDedup(job)
}

func (q *MemoryQueue) releaseDedup(job *Job) {
	if job.DedupKey != "" {
		delete(q.dedup, dedupKey(job.Queue, job.DedupKey))
	}
}

func dedupKey(queueName, key string) string {
	return queueName + ":" + key
}
