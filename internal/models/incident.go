package models

import "gorm.io/gorm"

type IncidentState string

const (
	IncidentStateInvestigating IncidentState = "INVESTIGATING"
	IncidentStateIdentified    IncidentState = "IDENTIFIED"
	IncidentStateMonitoring    IncidentState = "MONITORING"
	IncidentStateResolved      IncidentState = "RESOLVED"
)

type Incident struct {
	gorm.Model

	UniqueID string `gorm:"unique"`

	Title string

	// StartDateTime/EndDateTime are UTC epoch seconds. A nil end means the
	// incident is still open.
	StartDateTime int64
	EndDateTime   *int64

	State IncidentState

	// Source records what opened the incident, e.g. "alert" or "admin".
	Source string

	Comments []IncidentComment
	Monitors []IncidentMonitor
}

func NewIncident() *Incident {
	randStr, _ := GenerateRandomBytes(16)

	return &Incident{
		UniqueID: randStr,
		State:    IncidentStateInvestigating,
	}
}

// Open reports whether the incident still covers new timestamps.
func (i *Incident) Open() bool {
	return i.State != IncidentStateResolved && i.EndDateTime == nil
}

// IncidentComment is one timestamped state transition on an incident.
type IncidentComment struct {
	gorm.Model

	IncidentID uint `gorm:"index"`

	State       IncidentState
	Comment     string
	CommentedAt int64
}

// IncidentMonitor records the manually-declared impact of an incident on
// one monitor. The merge pipeline scans these when reconciling statuses.
type IncidentMonitor struct {
	gorm.Model

	IncidentID uint   `gorm:"index"`
	MonitorTag string `gorm:"index"`

	// Impact is DOWN or DEGRADED.
	Impact Status
}
