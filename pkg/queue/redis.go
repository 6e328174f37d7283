package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/watchdock/agent/internal/logger"
)

// dedupTTL bounds how long an orphaned dedup key can block resubmission if
// the process dies between pop and completion.
const dedupTTL = 24 * time.Hour

// RedisQueue is the durable backend. Pending jobs live in one sorted set
// per queue, scored by their earliest run time, so delayed submissions and
// backoff retries are both just a requeue with a future score.
type RedisQueue struct {
	Logger      *logger.Logger
	MaxAttempts int
	BackoffBase time.Duration

	PollInterval time.Duration

	client *goredis.Client

	registrations []registration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRedisQueue(host, port, username, password string, db int, l *logger.Logger, maxAttempts int, backoffBase time.Duration) *RedisQueue {
	return &RedisQueue{
		Logger:       l,
		MaxAttempts:  maxAttempts,
		BackoffBase:  backoffBase,
		PollInterval: 250 * time.Millisecond,
		client: goredis.NewClient(&goredis.Options{
			Addr:     fmt.Sprintf("%s:%s", host, port),
			Username: username,
			Password: password,
			DB:       db,
		}),
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, queueName, jobName string, payload []byte, opts EnqueueOptions) error {
	if opts.DedupKey != "" {
		set, err := q.client.SetNX(ctx, q.dedupRedisKey(queueName, opts.DedupKey), 1, dedupTTL).Result()

		if err != nil {
			return err
		}

		if !set {
			return ErrDuplicateJob
		}
	}

	job := &Job{
		ID:       uuid.New().String(),
		Queue:    queueName,
		Name:     jobName,
		Payload:  payload,
		DedupKey: opts.DedupKey,
		RunAt:    time.Now().Add(opts.Delay),
	}

	return q.push(ctx, job)
}

func (q *RedisQueue) RegisterWorker(queueName string, handler Handler, concurrency int) {
	if concurrency < 1 {
		concurrency = 1
	}

	q.registrations = append(q.registrations, registration{queueName, handler, concurrency})
}

// Start pings the backend first: an unreachable broker must block process
// start instead of surfacing later as handler noise.
func (q *RedisQueue) Start(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("queue backend unavailable: %w", err)
	}

	ctx, q.cancel = context.WithCancel(ctx)

	for _, reg := range q.registrations {
		for i := 0; i < reg.concurrency; i++ {
			q.wg.Add(1)

			go q.runWorker(ctx, reg)
		}
	}

	return nil
}

func (q *RedisQueue) Shutdown(ctx context.Context) error {
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
		return q.client.Close()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *RedisQueue) runWorker(ctx context.Context, reg registration) {
	defer q.wg.Done()

	ticker := time.NewTicker(q.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				job, err := q.pop(ctx, reg.queueName)

				if err == ErrNoPendingJob {
					break
				}

				if err != nil {
					q.Logger.Error().Caller().Msgf("error popping from queue %s: %v", reg.queueName, err)
					break
				}

				q.process(ctx, reg, job)
			}
		}
	}
}

func (q *RedisQueue) push(ctx context.Context, job *Job) error {
	packed, err := json.Marshal(job)

	if err != nil {
		return err
	}

	_, err = q.client.ZAdd(ctx, q.pendingRedisKey(job.Queue), &goredis.Z{
		Score:  float64(job.RunAt.Unix()),
		Member: packed,
	}).Result()

	return err
}

// pop takes the lowest-scored member. A member scheduled in the future is
// requeued with its original score and the poll backs off.
func (q *RedisQueue) pop(ctx context.Context, queueName string) (*Job, error) {
	key := q.pendingRedisKey(queueName)

	value, err := q.client.ZPopMin(ctx, key).Result()

	if err != nil {
		return nil, err
	}

	if len(value) == 0 {
		return nil, ErrNoPendingJob
	}

	rawBytes, ok := value[0].Member.(string)

	if !ok {
		return nil, fmt.Errorf("cannot cast queue member to bytearray, actual type: %T", value[0].Member)
	}

	if value[0].Score > float64(time.Now().Unix()) {
		_, err := q.client.ZAdd(ctx, key, &goredis.Z{
			Score:  value[0].Score,
			Member: rawBytes,
		}).Result()

		if err != nil {
			return nil, err
		}

		return nil, ErrNoPendingJob
	}

	job := &Job{}

	if err := json.Unmarshal([]byte(rawBytes), job); err != nil {
		return nil, fmt.Errorf("error unmarshalling job from queue %s: %w", queueName, err)
	}

	return job, nil
}

func (q *RedisQueue) process(ctx context.Context, reg registration, job *Job) {
	err := q.invoke(ctx, reg.handler, job)

	if err == nil {
		q.releaseDedup(ctx, job)
		return
	}

	q.Logger.Error().Caller().Msgf("job %s (%s/%s) failed on attempt %d: %v",
		job.ID, job.Queue, job.Name, job.Attempt+1, err)

	job.Attempt++

	if job.Attempt > q.MaxAttempts {
		q.fail(ctx, job)
		return
	}

	job.RunAt = time.Now().Add(backoffDelay(q.BackoffBase, job.Attempt-1))

	if err := q.push(ctx, job); err != nil {
		q.Logger.Error().Caller().Msgf("error requeueing job %s: %v", job.ID, err)
	}
}

func (q *RedisQueue) invoke(ctx context.Context, handler Handler, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(ctx, job)
}

// fail retains the job in a failed list for inspection and releases its
// dedup key so an equivalent job may be submitted again.
func (q *RedisQueue) fail(ctx context.Context, job *Job) {
	packed, err := json.Marshal(job)

	if err == nil {
		_, err = q.client.RPush(ctx, q.failedRedisKey(job.Queue), packed).Result()
	}

	if err != nil {
		q.Logger.Error().Caller().Msgf("error retaining failed job %s: %v", job.ID, err)
	}

	q.releaseDedup(ctx, job)
}

func (q *RedisQueue) releaseDedup(ctx context.Context, job *Job) {
	if job.DedupKey == "" {
		return
	}

	if _, err := q.client.Del(ctx, q.dedupRedisKey(job.Queue, job.DedupKey)).Result(); err != nil {
		q.Logger.Error().Caller().Msgf("error releasing dedup key for job %s: %v", job.ID, err)
	}
}

func (q *RedisQueue) pendingRedisKey(queueName string) string {
	return fmt.Sprintf("queue:%s:pending", queueName)
}

func (q *RedisQueue) failedRedisKey(queueName string) string {
	return fmt.Sprintf("queue:%s:failed", queueName)
}

func (q *RedisQueue) dedupRedisKey(queueName, key string) string {
	return fmt.Sprintf("queue:%s:dedup:%s", queueName, key)
}
