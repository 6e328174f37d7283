package queue

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoPendingJob is returned by backends when a poll finds nothing
	// runnable.
	ErrNoPendingJob = errors.New("no pending job")

	// ErrDuplicateJob is returned when a dedup key is already held by a
	// not-yet-completed job. Callers treat it as a successful no-op.
	ErrDuplicateJob = errors.New("job with this dedup key is already pending")
)

// Job is one unit of work. Payloads are opaque bytes; each handler decodes
// the tagged payload struct for its own queue.
type Job struct {
	ID       string    `json:"id"`
	Queue    string    `json:"queue"`
	Name     string    `json:"name"`
	Payload  []byte    `json:"payload"`
	Attempt  int       `json:"attempt"`
	DedupKey string    `json:"dedup_key,omitempty"`
	RunAt    time.Time `json:"run_at"`
}

// Handler processes one job. A returned error counts as a retryable
// failure; handlers must not swallow errors they want retried.
type Handler func(ctx context.Context, job *Job) error

type EnqueueOptions struct {
	// DedupKey rejects duplicate submissions while an equivalent job is
	// pending or in flight.
	DedupKey string

	// Delay postpones the earliest run time.
	Delay time.Duration
}

// Queue is the durable job queue contract. Delivery is at-least-once;
// handlers are retried with exponential backoff up to the backend's attempt
// ceiling, after which the job lands in the failed set for inspection.
type Queue interface {
	Enqueue(ctx context.Context, queueName, jobName string, payload []byte, opts EnqueueOptions) error

	// RegisterWorker attaches a handler with a concurrency bound. Must be
	// called before Start.
	RegisterWorker(queueName string, handler Handler, concurrency int)

	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// backoffDelay doubles the base delay per prior attempt.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base

	for i := 0; i < attempt; i++ {
		d *= 2
	}

	return d
}
