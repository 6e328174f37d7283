package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchdock/agent/internal/logger"
)

func newTestQueue() *MemoryQueue {
	q := NewMemoryQueue(logger.NewConsole(false), 2, time.Millisecond)
	q.PollInterval = time.Millisecond

	return q
}

func TestDedupKeyRejectsSecondEnqueue(t *testing.T) {
	q := newTestQueue()

	processed := 0
	var mu sync.Mutex

	q.RegisterWorker("exec", func(ctx context.Context, job *Job) error {
		mu.Lock()
		processed++
		mu.Unlock()

		return nil
	}, 4)

	err := q.Enqueue(context.Background(), "exec", "tick", []byte("a"), EnqueueOptions{DedupKey: "exec:api-prod:60"})
	require.NoError(t, err)

	err = q.Enqueue(context.Background(), "exec", "tick", []byte("b"), EnqueueOptions{DedupKey: "exec:api-prod:60"})
	assert.ErrorIs(t, err, ErrDuplicateJob)

	require.NoError(t, q.Start(context.Background()))
	defer q.Shutdown(context.Background())

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, processed, "exactly one job must run for a deduped pair")
}

func TestDedupKeyReleasedAfterCompletion(t *testing.T) {
	q := newTestQueue()

	q.RegisterWorker("exec", func(ctx context.Context, job *Job) error {
		return nil
	}, 1)

	require.NoError(t, q.Enqueue(context.Background(), "exec", "tick", nil, EnqueueOptions{DedupKey: "k"}))
	require.NoError(t, q.Start(context.Background()))
	defer q.Shutdown(context.Background())

	time.Sleep(50 * time.Millisecond)

	// the first job completed, so the key is free again
	assert.NoError(t, q.Enqueue(context.Background(), "exec", "tick", nil, EnqueueOptions{DedupKey: "k"}))
}

func TestFailedJobRetriesThenLandsInFailedSet(t *testing.T) {
	q := newTestQueue()

	attempts := 0
	var mu sync.Mutex

	q.RegisterWorker("exec", func(ctx context.Context, job *Job) error {
		mu.Lock()
		attempts++
		mu.Unlock()

		return errors.New("boom")
	}, 1)

	require.NoError(t, q.Enqueue(context.Background(), "exec", "tick", nil, EnqueueOptions{}))
	require.NoError(t, q.Start(context.Background()))
	defer q.Shutdown(context.Background())

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	got := attempts
	mu.Unlock()

	// first run plus MaxAttempts retries
	assert.Equal(t, 3, got)
	assert.Len(t, q.FailedJobs("exec"), 1)
}

func TestDelayedJobDoesNotRunEarly(t *testing.T) {
	q := newTestQueue()

	ran := make(chan time.Time, 1)
	start := time.Now()

	q.RegisterWorker("exec", func(ctx context.Context, job *Job) error {
		ran <- time.Now()
		return nil
	}, 1)

	require.NoError(t, q.Enqueue(context.Background(), "exec", "tick", nil, EnqueueOptions{Delay: 60 * time.Millisecond}))
	require.NoError(t, q.Start(context.Background()))
	defer q.Shutdown(context.Background())

	select {
	case at := <-ran:
		assert.GreaterOrEqual(t, at.Sub(start), 60*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("delayed job never ran")
	}
}

func TestHandlerPanicIsRetryableFailure(t *testing.T) {
	q := newTestQueue()

	calls := 0
	var mu sync.Mutex

	q.RegisterWorker("exec", func(ctx context.Context, job *Job) error {
		mu.Lock()
		calls++
		mu.Unlock()

		panic("handler bug")
	}, 1)

	require.NoError(t, q.Enqueue(context.Background(), "exec", "tick", nil, EnqueueOptions{}))
	require.NoError(t, q.Start(context.Background()))
	defer q.Shutdown(context.Background())

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls, "panicking handler must be retried, not crash the worker")
}
