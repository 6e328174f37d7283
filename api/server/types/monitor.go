package types

import (
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/lttb"
	"github.com/watchdock/agent/pkg/uptime"
)

type ExecuteMonitorRequest struct {
	// Timestamp defaults to the current minute when omitted.
	Timestamp int64 `schema:"ts"`
}

type ExecuteMonitorResponse struct {
	Tag       string `json:"tag"`
	Timestamp int64  `json:"timestamp"`
}

// PushResponseRequest submits a manual data point, e.g. an admin edit of
// a recorded minute.
type PushResponseRequest struct {
	Timestamp int64                `json:"timestamp"`
	Status    models.Status        `json:"status"`
	Latency   float64              `json:"latency"`
	Type      models.DataPointType `json:"type"`
}

type PushAlertRequest struct {
	Timestamp int64         `json:"timestamp"`
	Status    models.Status `json:"status"`
}

type UptimeBarRequest struct {
	Days     int   `schema:"days"`
	EndOfDay int64 `schema:"endOfDay"`
}

// DayBucket is one cell of the uptime bar.
type DayBucket struct {
	Timestamp int64         `json:"timestamp"`
	Status    models.Status `json:"status"`
	Uptime    string        `json:"uptime"`
}

type UptimeBarResponse struct {
	Buckets []DayBucket    `json:"buckets"`
	Summary uptime.Summary `json:"summary"`
}

type LatencySeriesRequest struct {
	Start  int64 `schema:"start"`
	End    int64 `schema:"end"`
	Points int   `schema:"points"`
}

type LatencySeriesResponse struct {
	Points []lttb.Point `json:"points"`
}

type MonitorStatusResponse struct {
	Tag       string        `json:"tag"`
	Status    models.Status `json:"status"`
	Latency   float64       `json:"latency"`
	Timestamp int64         `json:"timestamp"`
}
