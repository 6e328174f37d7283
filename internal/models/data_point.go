package models

import "time"

type Status string

const (
	StatusUp          Status = "UP"
	StatusDown        Status = "DOWN"
	StatusDegraded    Status = "DEGRADED"
	StatusMaintenance Status = "MAINTENANCE"
	StatusNoData      Status = "NO_DATA"
)

type DataPointType string

const (
	DataPointTypeRealtime      DataPointType = "REALTIME"
	DataPointTypeTimeout       DataPointType = "TIMEOUT"
	DataPointTypeDefaultStatus DataPointType = "DEFAULT_STATUS"
	DataPointTypeManual        DataPointType = "MANUAL"
)

// MonitoringDataPoint is one merged check result. The composite primary key
// makes persistence an upsert, so at most one row exists per monitor per
// minute.
type MonitoringDataPoint struct {
	MonitorTag string `gorm:"primaryKey;size:191"`

	// Timestamp is minute-aligned UTC epoch seconds.
	Timestamp int64 `gorm:"primaryKey;autoIncrement:false"`

	Status  Status
	Latency float64
	Type    DataPointType

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AlignMinute clamps an epoch-seconds timestamp to its minute boundary.
func AlignMinute(ts int64) int64 {
	return ts - ts%60
}

// TimestampStatusCount is the read-side aggregate for one bucket. It is
// derived from data points by a range query and never stored.
type TimestampStatusCount struct {
	Ts          int64
	Up          int
	Down        int
	Degraded    int
	Maintenance int
	NoData      int
	AvgLatency  float64
	MinLatency  float64
	MaxLatency  float64
}
