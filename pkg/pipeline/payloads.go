package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"time"

	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/queue"
)

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

const (
	QueueExecution = "monitor-exec"
	QueueResponse  = "monitor-resp"
	QueueAlert     = "monitor-alert"
)

// One payload struct per job kind; the handler registered for each queue
// decodes its own kind at dequeue time.

type ExecutionPayload struct {
	Tag       string `json:"tag"`
	Timestamp int64  `json:"timestamp"`
	Retry     int    `json:"retry"`
}

type ResponsePayload struct {
	Tag       string               `json:"tag"`
	Timestamp int64                `json:"timestamp"`
	Status    models.Status        `json:"status"`
	Latency   float64              `json:"latency"`
	Type      models.DataPointType `json:"type"`
}

type AlertPayload struct {
	Tag       string        `json:"tag"`
	Timestamp int64         `json:"timestamp"`
	Status    models.Status `json:"status"`
}

// PushExecution submits one check execution for a monitor-minute. The
// dedup key keeps at most one in-flight execution per (tag, minute); a
// duplicate submission is a no-op, not an error.
func PushExecution(ctx context.Context, q queue.Queue, tag string, ts int64) error {
	return pushExecution(ctx, q, tag, models.AlignMinute(ts), 0, 0)
}

func pushExecution(ctx context.Context, q queue.Queue, tag string, ts int64, retry int, delay int64) error {
	payload, err := json.Marshal(&ExecutionPayload{Tag: tag, Timestamp: ts, Retry: retry})

	if err != nil {
		return err
	}

	err = q.Enqueue(ctx, QueueExecution, "execute", payload, queue.EnqueueOptions{
		DedupKey: fmt.Sprintf("exec:%s:%d:%d", tag, ts, retry),
		Delay:    msToDuration(delay),
	})

	if errors.Is(err, queue.ErrDuplicateJob) {
		return nil
	}

	return err
}

// PushResponse submits one merged result for persistence.
func PushResponse(ctx context.Context, q queue.Queue, resp *ResponsePayload) error {
	resp.Timestamp = models.AlignMinute(resp.Timestamp)

	payload, err := json.Marshal(resp)

	if err != nil {
		return err
	}

	err = q.Enqueue(ctx, QueueResponse, "persist", payload, queue.EnqueueOptions{
		DedupKey: fmt.Sprintf("resp:%s:%d", resp.Tag, resp.Timestamp),
	})

	if errors.Is(err, queue.ErrDuplicateJob) {
		return nil
	}

	return err
}

// PushAlertEvaluation submits one alert evaluation for a monitor-minute.
func PushAlertEvaluation(ctx context.Context, q queue.Queue, tag string, ts int64, status models.Status) error {
	payload, err := json.Marshal(&AlertPayload{Tag: tag, Timestamp: models.AlignMinute(ts), Status: status})

	if err != nil {
		return err
	}

	err = q.Enqueue(ctx, QueueAlert, "evaluate", payload, queue.EnqueueOptions{
		DedupKey: fmt.Sprintf("alert:%s:%d", tag, models.AlignMinute(ts)),
	})

	if errors.Is(err, queue.ErrDuplicateJob) {
		return nil
	}

	return err
}
