package executor

import (
	"context"

	"github.com/watchdock/agent/internal/models"
)

// Result is the classified outcome of one check. Latency is milliseconds.
type Result struct {
	Status  models.Status
	Latency float64
	Type    models.DataPointType
	Err     error
}

// Executor runs the protocol-specific check for a monitor type. The check
// protocols themselves are pluggable capabilities; the pipeline only relies
// on the classified Result, in particular on Type being TIMEOUT when the
// check ran out of time.
type Executor interface {
	Execute(ctx context.Context, monitor *models.Monitor, ts int64) Result
}

// Registry maps monitor types to executors. Unregistered types fall back
// to the NoneExecutor so a half-configured deployment degrades to NO_DATA
// instead of failing jobs.
type Registry struct {
	executors map[models.MonitorType]Executor
	fallback  Executor
}

func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[models.MonitorType]Executor),
		fallback:  &NoneExecutor{},
	}
}

func (r *Registry) Register(monitorType models.MonitorType, e Executor) {
	r.executors[monitorType] = e
}

func (r *Registry) For(monitorType models.MonitorType) Executor {
	if e, ok := r.executors[monitorType]; ok {
		return e
	}

	return r.fallback
}

// NoneExecutor is the placeholder for NONE/GROUP monitors and types with no
// registered check.
type NoneExecutor struct{}

func (e *NoneExecutor) Execute(ctx context.Context, monitor *models.Monitor, ts int64) Result {
	return Result{
		Status: models.StatusNoData,
		Type:   models.DataPointTypeRealtime,
	}
}
