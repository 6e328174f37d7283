package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/pipeline"
	"github.com/watchdock/agent/pkg/queue"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
	seen map[string]bool
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{seen: make(map[string]bool)}
}

func (q *recordingQueue) Enqueue(ctx context.Context, queueName, jobName string, payload []byte, opts queue.EnqueueOptions) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if opts.DedupKey != "" {
		if q.seen[opts.DedupKey] {
			return queue.ErrDuplicateJob
		}

		q.seen[opts.DedupKey] = true
	}

	q.jobs = append(q.jobs, &queue.Job{Queue: queueName, Name: jobName, Payload: payload, DedupKey: opts.DedupKey})

	return nil
}

func (q *recordingQueue) RegisterWorker(queueName string, handler queue.Handler, concurrency int) {}

func (q *recordingQueue) Start(ctx context.Context) error { return nil }

func (q *recordingQueue) Shutdown(ctx context.Context) error { return nil }

func (q *recordingQueue) executions(t *testing.T) []pipeline.ExecutionPayload {
	q.mu.Lock()
	defer q.mu.Unlock()

	res := []pipeline.ExecutionPayload{}

	for _, job := range q.jobs {
		if job.Queue != pipeline.QueueExecution {
			continue
		}

		payload := pipeline.ExecutionPayload{}

		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			t.Fatalf("bad payload: %v", err)
		}

		res = append(res, payload)
	}

	return res
}

type staticMonitors struct {
	monitors []*models.Monitor
}

func (s *staticMonitors) ListActiveMonitors() ([]*models.Monitor, error) {
	return s.monitors, nil
}

func apiMonitor(tag, cronExpr string) *models.Monitor {
	return &models.Monitor{
		Tag:           tag,
		Name:          tag,
		Type:          models.MonitorTypeAPI,
		Cron:          cronExpr,
		DefaultStatus: models.StatusUp,
		Active:        true,
		TypeConfig:    `{"url":"https://example.com"}`,
	}
}

func newTestScheduler(store *staticMonitors, q queue.Queue) *MonitorScheduler {
	l := logger.NewConsole(false)
	s := NewMonitorScheduler(store, nil, q, l)
	s.Now = func() time.Time { return time.Unix(1700000045, 0) }

	return s
}

func TestReconcileAddsAndFiresImmediately(t *testing.T) {
	q := newRecordingQueue()
	store := &staticMonitors{monitors: []*models.Monitor{
		apiMonitor("api-1", "* * * * *"),
		apiMonitor("api-2", "*/5 * * * *"),
	}}

	s := newTestScheduler(store, q)

	err := s.Reconcile()
	assert.NoError(t, err)

	assert.ElementsMatch(t, []string{"api-1", "api-2"}, s.LiveTags())

	execs := q.executions(t)
	assert.Len(t, execs, 2, "each new monitor fires once on creation")

	for _, exec := range execs {
		assert.Equal(t, int64(1700000040), exec.Timestamp, "fired timestamp is minute aligned")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	q := newRecordingQueue()
	store := &staticMonitors{monitors: []*models.Monitor{apiMonitor("api-1", "* * * * *")}}

	s := newTestScheduler(store, q)

	assert.NoError(t, s.Reconcile())
	hashBefore, ok := s.liveHash("api-1")
	assert.True(t, ok)

	assert.NoError(t, s.Reconcile())
	hashAfter, ok := s.liveHash("api-1")
	assert.True(t, ok)

	assert.Equal(t, hashBefore, hashAfter)
	assert.Len(t, q.executions(t), 1, "an unchanged monitor does not re-fire")
}

func TestReconcileReplacesChangedConfig(t *testing.T) {
	q := newRecordingQueue()
	m := apiMonitor("api-1", "* * * * *")
	store := &staticMonitors{monitors: []*models.Monitor{m}}

	s := newTestScheduler(store, q)
	assert.NoError(t, s.Reconcile())

	hashBefore, _ := s.liveHash("api-1")

	m.TypeConfig = `{"url":"https://example.org"}`
	assert.NoError(t, s.Reconcile())

	hashAfter, ok := s.liveHash("api-1")
	assert.True(t, ok)
	assert.NotEqual(t, hashBefore, hashAfter)
}

func TestReconcileRemovesOrphans(t *testing.T) {
	q := newRecordingQueue()
	store := &staticMonitors{monitors: []*models.Monitor{apiMonitor("api-1", "* * * * *")}}

	s := newTestScheduler(store, q)
	assert.NoError(t, s.Reconcile())
	assert.Len(t, s.LiveTags(), 1)

	store.monitors = nil
	assert.NoError(t, s.Reconcile())
	assert.Empty(t, s.LiveTags())
}

func TestReconcileSkipsInvalidCron(t *testing.T) {
	q := newRecordingQueue()
	store := &staticMonitors{monitors: []*models.Monitor{
		apiMonitor("bad", "not a cron"),
		apiMonitor("good", "* * * * *"),
	}}

	s := newTestScheduler(store, q)
	assert.NoError(t, s.Reconcile())

	assert.ElementsMatch(t, []string{"good"}, s.LiveTags())
}
