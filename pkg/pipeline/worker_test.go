package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/watchdock/agent/internal/adapter"
	"github.com/watchdock/agent/internal/envconf"
	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/repository"
	"github.com/watchdock/agent/pkg/cache"
	"github.com/watchdock/agent/pkg/executor"
	"github.com/watchdock/agent/pkg/queue"
)

type captureQueue struct {
	jobs []*queue.Job
	seen map[string]bool
}

func newCaptureQueue() *captureQueue {
	return &captureQueue{seen: make(map[string]bool)}
}

func (q *captureQueue) Enqueue(ctx context.Context, queueName, jobName string, payload []byte, opts queue.EnqueueOptions) error {
	if opts.DedupKey != "" {
		if q.seen[opts.DedupKey] {
			return queue.ErrDuplicateJob
		}

		q.seen[opts.DedupKey] = true
	}

	q.jobs = append(q.jobs, &queue.Job{Queue: queueName, Name: jobName, Payload: payload, DedupKey: opts.DedupKey})

	return nil
}

func (q *captureQueue) RegisterWorker(queueName string, handler queue.Handler, concurrency int) {}

func (q *captureQueue) Start(ctx context.Context) error { return nil }

func (q *captureQueue) Shutdown(ctx context.Context) error { return nil }

func (q *captureQueue) byQueue(name string) []*queue.Job {
	res := []*queue.Job{}

	for _, job := range q.jobs {
		if job.Queue == name {
			res = append(res, job)
		}
	}

	return res
}

type stubExecutor struct {
	result executor.Result
	calls  int
}

func (e *stubExecutor) Execute(ctx context.Context, monitor *models.Monitor, ts int64) executor.Result {
	e.calls++
	return e.result
}

func setupRepo(t *testing.T, dbFileName string) *repository.Repository {
	t.Helper()

	db, err := adapter.New(&envconf.DBConf{SQLite: true, SQLitePath: dbFileName})

	if err != nil {
		t.Fatalf("%v\n", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		t.Fatalf("%v\n", err)
	}

	t.Cleanup(func() {
		os.Remove(dbFileName)
	})

	return repository.NewRepository(db)
}

func newExecutionWorker(repo *repository.Repository, q queue.Queue, stub executor.Executor) *ExecutionWorker {
	registry := executor.NewRegistry()
	registry.Register(models.MonitorTypeAPI, stub)

	return &ExecutionWorker{
		Repository:        repo,
		Executors:         registry,
		Queue:             q,
		Logger:            logger.NewConsole(false),
		MaxTimeoutRetries: 3,
		TimeoutRetryDelay: 500 * time.Millisecond,
		ExecutionTimeout:  30 * time.Second,
	}
}

func executionJob(t *testing.T, tag string, ts int64, retry int) *queue.Job {
	t.Helper()

	payload, err := json.Marshal(&ExecutionPayload{Tag: tag, Timestamp: ts, Retry: retry})
	assert.NoError(t, err)

	return &queue.Job{Queue: QueueExecution, Name: "execute", Payload: payload}
}

func TestExecutionWorkerProducesOneResponse(t *testing.T) {
	repo := setupRepo(t, "./pipeline_exec_test.db")
	q := newCaptureQueue()

	_, err := repo.Monitor.CreateMonitor(&models.Monitor{
		Tag:           "api-1",
		Name:          "API 1",
		Type:          models.MonitorTypeAPI,
		Cron:          "* * * * *",
		DefaultStatus: models.StatusUp,
		Active:        true,
	})
	assert.NoError(t, err)

	stub := &stubExecutor{result: executor.Result{
		Status:  models.StatusDown,
		Latency: 42,
		Type:    models.DataPointTypeRealtime,
	}}

	w := newExecutionWorker(repo, q, stub)

	err = w.Handle(context.Background(), executionJob(t, "api-1", 1700000040, 0))
	assert.NoError(t, err)

	responses := q.byQueue(QueueResponse)
	assert.Len(t, responses, 1)

	resp := ResponsePayload{}
	assert.NoError(t, json.Unmarshal(responses[0].Payload, &resp))
	assert.Equal(t, models.StatusDown, resp.Status)
	assert.Equal(t, 42.0, resp.Latency)
	assert.Equal(t, int64(1700000040), resp.Timestamp)
}

func TestExecutionWorkerRetriesTimeouts(t *testing.T) {
	repo := setupRepo(t, "./pipeline_timeout_test.db")
	q := newCaptureQueue()

	_, err := repo.Monitor.CreateMonitor(&models.Monitor{
		Tag:    "api-1",
		Name:   "API 1",
		Type:   models.MonitorTypeAPI,
		Cron:   "* * * * *",
		Active: true,
	})
	assert.NoError(t, err)

	stub := &stubExecutor{result: executor.Result{
		Status: models.StatusDown,
		Type:   models.DataPointTypeTimeout,
	}}

	w := newExecutionWorker(repo, q, stub)

	assert.NoError(t, w.Handle(context.Background(), executionJob(t, "api-1", 1700000040, 0)))

	// The timeout is re-executed, not persisted.
	assert.Empty(t, q.byQueue(QueueResponse))
	assert.Len(t, q.byQueue(QueueExecution), 1)

	// At the retry ceiling the timeout result is accepted as final.
	assert.NoError(t, w.Handle(context.Background(), executionJob(t, "api-1", 1700000040, 3)))
	assert.Len(t, q.byQueue(QueueResponse), 1)
}

func TestExecutionWorkerDropsUnknownMonitor(t *testing.T) {
	repo := setupRepo(t, "./pipeline_unknown_test.db")
	q := newCaptureQueue()

	w := newExecutionWorker(repo, q, &stubExecutor{})

	assert.NoError(t, w.Handle(context.Background(), executionJob(t, "ghost", 1700000040, 0)))
	assert.Empty(t, q.jobs)
}

func TestResponseWorkerPersistsCachesAndFansOut(t *testing.T) {
	repo := setupRepo(t, "./pipeline_resp_test.db")
	q := newCaptureQueue()
	statusCache := cache.NewStatusCache()

	w := &ResponseWorker{
		Repository: repo,
		Cache:      statusCache,
		Queue:      q,
		Logger:     logger.NewConsole(false),
	}

	payload, err := json.Marshal(&ResponsePayload{
		Tag:       "api-1",
		Timestamp: 1700000040,
		Status:    models.StatusUp,
		Latency:   120,
		Type:      models.DataPointTypeRealtime,
	})
	assert.NoError(t, err)

	err = w.Handle(context.Background(), &queue.Job{Queue: QueueResponse, Name: "persist", Payload: payload})
	assert.NoError(t, err)

	points, err := repo.DataPoint.ListLatestDataPoints("api-1", 1, 1700000040)
	assert.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, models.StatusUp, points[0].Status)

	entry, err := statusCache.Status("api-1", nil)
	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, models.StatusUp, entry.Status)

	alerts := q.byQueue(QueueAlert)
	assert.Len(t, alerts, 1)
}
