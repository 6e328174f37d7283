package executor

import (
	"context"
	"encoding/json"

	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/pkg/cache"
)

// HeartbeatConfig is the TypeConfig blob for HEARTBEAT monitors.
type HeartbeatConfig struct {
	// StaleSeconds is the maximum silence before the target counts as
	// DOWN.
	StaleSeconds int64 `json:"stale_seconds,omitempty"`

	// DegradedSeconds, when positive and smaller than StaleSeconds, marks
	// a late-but-not-gone target DEGRADED.
	DegradedSeconds int64 `json:"degraded_seconds,omitempty"`
}

// HeartbeatExecutor is passive: the target pushes heartbeats through the
// external API surface into the status cache, and the check only judges
// how stale the newest one is.
type HeartbeatExecutor struct {
	Cache *cache.StatusCache
}

func (e *HeartbeatExecutor) Execute(ctx context.Context, monitor *models.Monitor, ts int64) Result {
	var conf HeartbeatConfig

	if monitor.TypeConfig != "" {
		if err := json.Unmarshal([]byte(monitor.TypeConfig), &conf); err != nil {
			return Result{
				Status: models.StatusDown,
				Type:   models.DataPointTypeRealtime,
				Err:    err,
			}
		}
	}

	stale := conf.StaleSeconds

	if stale <= 0 {
		stale = 300
	}

	last, ok := e.Cache.LastHeartbeat(monitor.Tag)

	if !ok {
		return Result{
			Status: models.StatusNoData,
			Type:   models.DataPointTypeRealtime,
		}
	}

	age := ts - last

	switch {
	case age > stale:
		return Result{
			Status: models.StatusDown,
			Type:   models.DataPointTypeRealtime,
		}
	case conf.DegradedSeconds > 0 && age > conf.DegradedSeconds:
		return Result{
			Status: models.StatusDegraded,
			Type:   models.DataPointTypeRealtime,
		}
	}

	return Result{
		Status: models.StatusUp,
		Type:   models.DataPointTypeRealtime,
	}
}
