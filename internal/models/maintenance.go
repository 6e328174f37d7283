package models

import "gorm.io/gorm"

type MaintenanceStatus string

const (
	MaintenanceStatusActive   MaintenanceStatus = "ACTIVE"
	MaintenanceStatusInactive MaintenanceStatus = "INACTIVE"
)

type MaintenanceEventStatus string

const (
	MaintenanceEventScheduled MaintenanceEventStatus = "SCHEDULED"
	MaintenanceEventOngoing   MaintenanceEventStatus = "ONGOING"
	MaintenanceEventCompleted MaintenanceEventStatus = "COMPLETED"
	MaintenanceEventCancelled MaintenanceEventStatus = "CANCELLED"
)

// Maintenance is a recurring maintenance definition. The expander turns it
// into concrete MaintenanceEvent rows inside a rolling look-ahead window.
type Maintenance struct {
	gorm.Model

	Title string

	// StartDateTime is the DTSTART of the recurrence, UTC epoch seconds.
	StartDateTime int64

	// RRule is an iCalendar recurrence rule, e.g. "FREQ=DAILY;INTERVAL=1".
	// A COUNT=1 rule is materialized once at creation time and skipped by
	// the expander.
	RRule string

	DurationSeconds int64

	Status MaintenanceStatus

	Monitors []MaintenanceMonitor
	Events   []MaintenanceEvent
}

// MaintenanceEvent is one concrete occurrence. No two events of the same
// maintenance share a StartDateTime; the expander relies on this to stay
// idempotent.
type MaintenanceEvent struct {
	gorm.Model

	MaintenanceID uint  `gorm:"index;uniqueIndex:idx_maintenance_occurrence"`
	StartDateTime int64 `gorm:"uniqueIndex:idx_maintenance_occurrence"`
	EndDateTime   int64

	Status MaintenanceEventStatus
}

// MaintenanceMonitor links a maintenance window to an affected monitor.
type MaintenanceMonitor struct {
	gorm.Model

	MaintenanceID uint   `gorm:"index"`
	MonitorTag    string `gorm:"index"`
}
