package repository

import (
	"github.com/watchdock/agent/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DataPointRepository struct {
	db *gorm.DB
}

// NewDataPointRepository returns pointer to repo along with the db
func NewDataPointRepository(db *gorm.DB) *DataPointRepository {
	return &DataPointRepository{db}
}

// UpsertDataPoint writes one merged result. The composite primary key on
// (monitor_tag, timestamp) makes re-delivery of the same persistence job a
// harmless overwrite.
func (r *DataPointRepository) UpsertDataPoint(dp *models.MonitoringDataPoint) (*models.MonitoringDataPoint, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "monitor_tag"}, {Name: "timestamp"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "latency", "type", "updated_at",
		}),
	}).Create(dp).Error

	if err != nil {
		return nil, err
	}

	return dp, nil
}

// ListLatestDataPoints returns up to n points for a monitor with timestamp
// <= upTo, newest first.
func (r *DataPointRepository) ListLatestDataPoints(tag string, n int, upTo int64) ([]*models.MonitoringDataPoint, error) {
	var points []*models.MonitoringDataPoint

	if err := r.db.Where("monitor_tag = ? AND timestamp <= ?", tag, upTo).
		Order("timestamp desc").
		Limit(n).
		Find(&points).Error; err != nil {
		return nil, err
	}

	return points, nil
}

// ListDataPointsInRange returns the raw points in [start, end), oldest
// first. The latency series handler feeds these to the downsampler.
func (r *DataPointRepository) ListDataPointsInRange(tag string, start, end int64) ([]*models.MonitoringDataPoint, error) {
	var points []*models.MonitoringDataPoint

	if err := r.db.Where("monitor_tag = ? AND timestamp >= ? AND timestamp < ?", tag, start, end).
		Order("timestamp asc").
		Find(&points).Error; err != nil {
		return nil, err
	}

	return points, nil
}

// RangeStatusCounts aggregates points into fixed buckets of bucketSeconds
// inside [start, end). Buckets with no rows are absent from the result; the
// uptime engine fills those gaps.
func (r *DataPointRepository) RangeStatusCounts(tag string, start, end, bucketSeconds int64) ([]*models.TimestampStatusCount, error) {
	var counts []*models.TimestampStatusCount

	err := r.db.Raw(`
		SELECT (timestamp / ?) * ? AS ts,
			SUM(CASE WHEN status = 'UP' THEN 1 ELSE 0 END) AS up,
			SUM(CASE WHEN status = 'DOWN' THEN 1 ELSE 0 END) AS down,
			SUM(CASE WHEN status = 'DEGRADED' THEN 1 ELSE 0 END) AS degraded,
			SUM(CASE WHEN status = 'MAINTENANCE' THEN 1 ELSE 0 END) AS maintenance,
			SUM(CASE WHEN status = 'NO_DATA' THEN 1 ELSE 0 END) AS no_data,
			COALESCE(AVG(CASE WHEN latency > 0 THEN latency END), 0) AS avg_latency,
			COALESCE(MIN(CASE WHEN latency > 0 THEN latency END), 0) AS min_latency,
			COALESCE(MAX(CASE WHEN latency > 0 THEN latency END), 0) AS max_latency
		FROM monitoring_data_points
		WHERE monitor_tag = ? AND timestamp >= ? AND timestamp < ?
		GROUP BY (timestamp / ?)
		ORDER BY ts ASC
	`, bucketSeconds, bucketSeconds, tag, start, end, bucketSeconds).Scan(&counts).Error

	if err != nil {
		return nil, err
	}

	return counts, nil
}

// DeleteDataPointsBefore prunes points older than the cutoff, returning the
// number of rows removed.
func (r *DataPointRepository) DeleteDataPointsBefore(cutoff int64) (int64, error) {
	result := r.db.Where("timestamp < ?", cutoff).Delete(&models.MonitoringDataPoint{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
