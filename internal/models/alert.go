package models

import "gorm.io/gorm"

type AlertMetric string

const (
	AlertMetricStatus  AlertMetric = "STATUS"
	AlertMetricLatency AlertMetric = "LATENCY"
	AlertMetricUptime  AlertMetric = "UPTIME"
)

type AlertState string

const (
	AlertStateTriggered AlertState = "TRIGGERED"
	AlertStateResolved  AlertState = "RESOLVED"
)

type SeverityType string

const (
	SeverityCritical SeverityType = "critical"
	SeverityWarning  SeverityType = "warning"
)

// AlertConfig is the admin-owned description of when a monitor should
// alert. The alerting engine only reads these.
type AlertConfig struct {
	gorm.Model

	MonitorTag string `gorm:"index"`

	// AlertFor selects the evaluated metric.
	AlertFor AlertMetric

	// AlertValue is the threshold: a status string for STATUS, a latency
	// in milliseconds for LATENCY, an uptime percentage for UPTIME.
	AlertValue string

	// FailureThreshold consecutive breaches trip the alert;
	// SuccessThreshold consecutive healthy evaluations clear it.
	FailureThreshold int
	SuccessThreshold int

	Severity       SeverityType
	CreateIncident bool
	IsActive       bool
}

// Alert is one firing of an AlertConfig.
//
// At most one TRIGGERED alert exists per config at any time. This is
// enforced by a read-before-write check in the alerter; evaluations for a
// given monitor-minute are already serialized by the queue's dedup key. A
// partial unique index would harden this under truly concurrent backends.
type Alert struct {
	gorm.Model

	UniqueID string `gorm:"unique"`

	ConfigID uint `gorm:"index"`

	State AlertState

	// IncidentID links the incident opened for this alert, when the config
	// asks for one.
	IncidentID *uint
}

func NewAlert(configID uint) *Alert {
	randStr, _ := GenerateRandomBytes(16)

	return &Alert{
		UniqueID: randStr,
		ConfigID: configID,
		State:    AlertStateTriggered,
	}
}

// AlertMeter carries the breach/ok streak for UPTIME configs, whose metric
// is an aggregate and can't be re-read as a run of data points.
type AlertMeter struct {
	gorm.Model

	ConfigID uint `gorm:"uniqueIndex"`

	BreachCount int
	OkCount     int
}
