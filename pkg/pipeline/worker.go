package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/watchdock/agent/internal/logger"
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/repository"
	"github.com/watchdock/agent/pkg/cache"
	"github.com/watchdock/agent/pkg/executor"
	"github.com/watchdock/agent/pkg/queue"
)

// AlertEvaluator is implemented by the alerting engine; the response
// worker only submits evaluation jobs, this seam exists for the alert
// queue's handler.
type AlertEvaluator interface {
	EvaluateMonitor(tag string, ts int64, status models.Status) error
}

// ExecutionWorker drains the execution queue. It runs the monitor's
// executor under a hard timeout, retries TIMEOUT results for retriable
// monitor types with a short fixed delay, merges the outcome with
// manual overrides and hands exactly one response job downstream.
type ExecutionWorker struct {
	Repository *repository.Repository
	Executors  *executor.Registry
	Queue      queue.Queue
	Logger     *logger.Logger

	// MaxTimeoutRetries bounds timeout re-executions per monitor-minute.
	MaxTimeoutRetries int

	// TimeoutRetryDelay spaces timeout re-executions.
	TimeoutRetryDelay time.Duration

	// ExecutionTimeout caps one executor call.
	ExecutionTimeout time.Duration
}

func (w *ExecutionWorker) Handle(ctx context.Context, job *queue.Job) error {
	payload := ExecutionPayload{}

	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		w.Logger.Error().Caller().Msgf("undecodable execution payload: %v", err)
		return nil
	}

	monitor, err := w.Repository.Monitor.ReadMonitor(payload.Tag)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Deleted after the job was enqueued. Skip, don't retry.
		w.Logger.Info().Msgf("monitor %s no longer exists, dropping execution", payload.Tag)
		return nil
	} else if err != nil {
		return err
	}

	if !monitor.Active {
		return nil
	}

	execCtx, cancel := context.WithTimeout(ctx, w.ExecutionTimeout)
	defer cancel()

	result := w.Executors.For(monitor.Type).Execute(execCtx, monitor, payload.Timestamp)

	if result.Err != nil {
		w.Logger.Info().Msgf("monitor %s check error: %v", payload.Tag, result.Err)
	}

	if result.Type == models.DataPointTypeTimeout &&
		monitor.RetriesOnTimeout() &&
		payload.Retry < w.MaxTimeoutRetries {
		return pushExecution(ctx, w.Queue, payload.Tag, payload.Timestamp, payload.Retry+1, w.TimeoutRetryDelay.Milliseconds())
	}

	status, pointType, err := w.merge(monitor, result, payload.Timestamp)

	if err != nil {
		return err
	}

	return PushResponse(ctx, w.Queue, &ResponsePayload{
		Tag:       payload.Tag,
		Timestamp: payload.Timestamp,
		Status:    status,
		Latency:   result.Latency,
		Type:      pointType,
	})
}

func (w *ExecutionWorker) merge(monitor *models.Monitor, result executor.Result, ts int64) (models.Status, models.DataPointType, error) {
	impacts, err := w.Repository.Incident.ListOpenImpactsForMonitor(monitor.Tag, ts)

	if err != nil {
		return "", "", err
	}

	windows, err := w.Repository.Maintenance.ListActiveWindowsForMonitor(monitor.Tag, ts)

	if err != nil {
		return "", "", err
	}

	status, pointType := Merge(monitor.DefaultStatus, result.Status, result.Type, impacts, windows)

	return status, pointType, nil
}

// ResponseWorker drains the response queue: upsert the data point, fold
// it into the status cache, enqueue one alert evaluation. Nothing else.
type ResponseWorker struct {
	Repository *repository.Repository
	Cache      *cache.StatusCache
	Queue      queue.Queue
	Logger     *logger.Logger
}

func (w *ResponseWorker) Handle(ctx context.Context, job *queue.Job) error {
	payload := ResponsePayload{}

	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		w.Logger.Error().Caller().Msgf("undecodable response payload: %v", err)
		return nil
	}

	dp := &models.MonitoringDataPoint{
		MonitorTag: payload.Tag,
		Timestamp:  models.AlignMinute(payload.Timestamp),
		Status:     payload.Status,
		Latency:    payload.Latency,
		Type:       payload.Type,
	}

	if _, err := w.Repository.DataPoint.UpsertDataPoint(dp); err != nil {
		return err
	}

	w.Cache.SetStatus(payload.Tag, &cache.StatusEntry{
		Status:    payload.Status,
		Latency:   payload.Latency,
		Timestamp: dp.Timestamp,
	})

	return PushAlertEvaluation(ctx, w.Queue, payload.Tag, dp.Timestamp, payload.Status)
}

// AlertWorker adapts the alerting engine to the alert queue.
type AlertWorker struct {
	Alerter AlertEvaluator
	Logger  *logger.Logger
}

func (w *AlertWorker) Handle(ctx context.Context, job *queue.Job) error {
	payload := AlertPayload{}

	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		w.Logger.Error().Caller().Msgf("undecodable alert payload: %v", err)
		return nil
	}

	return w.Alerter.EvaluateMonitor(payload.Tag, payload.Timestamp, payload.Status)
}
