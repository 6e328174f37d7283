package models

import "gorm.io/gorm"

type MonitorType string

const (
	MonitorTypeAPI       MonitorType = "API"
	MonitorTypePing      MonitorType = "PING"
	MonitorTypeTCP       MonitorType = "TCP"
	MonitorTypeDNS       MonitorType = "DNS"
	MonitorTypeSSL       MonitorType = "SSL"
	MonitorTypeSQL       MonitorType = "SQL"
	MonitorTypeHeartbeat MonitorType = "HEARTBEAT"
	MonitorTypeGroup     MonitorType = "GROUP"
	MonitorTypeGamedig   MonitorType = "GAMEDIG"
	MonitorTypeNone      MonitorType = "NONE"
)

// Monitor is a configured check target. The admin surface owns writes; the
// scheduler and the execution pipeline only read.
type Monitor struct {
	gorm.Model

	// Tag is the stable identifier used to key data points, scheduler
	// entries and cache entries.
	Tag string `gorm:"unique"`

	Name string
	Type MonitorType

	// Cron is the schedule expression. An empty cron means the monitor is
	// never scheduled, even when active.
	Cron string

	// DefaultStatus seeds every merged result when it is one of
	// UP/DOWN/DEGRADED. Any other value means "no default".
	DefaultStatus Status

	Active bool

	// TypeConfig is the type-specific configuration blob, opaque to the
	// core and decoded by the executor for this monitor type.
	TypeConfig string

	// Uptime formula overrides.
	DayDegradedMinimumCount   int
	DayDownMinimumCount       int
	IncludeDegradedInDowntime bool
}

// Schedulable reports whether the scheduler should keep a live entry for
// this monitor.
func (m *Monitor) Schedulable() bool {
	return m.Active && m.Cron != ""
}

// RetriesOnTimeout reports whether a TIMEOUT result for this monitor type
// is retried before being accepted as final. Passive types have nothing to
// re-run.
func (m *Monitor) RetriesOnTimeout() bool {
	switch m.Type {
	case MonitorTypeHeartbeat, MonitorTypeGroup, MonitorTypeNone:
		return false
	}

	return true
}
