package pipeline

import (
	"github.com/watchdock/agent/internal/models"
)

// Merge reconciles a realtime check result with the monitor's default
// status and any manual overrides open at the same minute. Precedence is
// DEFAULT_STATUS below REALTIME below MANUAL; among manual overrides an
// active maintenance window wins over a declared DOWN impact, which wins
// over DEGRADED.
func Merge(
	defaultStatus models.Status,
	status models.Status,
	pointType models.DataPointType,
	impacts []*models.IncidentMonitor,
	windows []*models.MaintenanceEvent,
) (models.Status, models.DataPointType) {
	if status == models.StatusNoData && allowedDefault(defaultStatus) {
		status = defaultStatus
		pointType = models.DataPointTypeDefaultStatus
	}

	if manual, ok := manualOverride(impacts, windows); ok {
		return manual, models.DataPointTypeManual
	}

	return status, pointType
}

// allowedDefault limits the fallback to the statuses a monitor may
// declare as its default. MAINTENANCE and NO_DATA only enter through
// manual overrides or absent data, never through configuration.
func allowedDefault(status models.Status) bool {
	switch status {
	case models.StatusUp, models.StatusDown, models.StatusDegraded:
		return true
	}

	return false
}

func manualOverride(impacts []*models.IncidentMonitor, windows []*models.MaintenanceEvent) (models.Status, bool) {
	if len(windows) > 0 {
		return models.StatusMaintenance, true
	}

	degraded := false

	for _, impact := range impacts {
		switch impact.Impact {
		case models.StatusDown:
			return models.StatusDown, true
		case models.StatusDegraded:
			degraded = true
		}
	}

	if degraded {
		return models.StatusDegraded, true
	}

	return "", false
}
