package repository

import (
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/utils"
	"gorm.io/gorm"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository returns pointer to repo along with the db
func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db}
}

func (r *MaintenanceRepository) CreateMaintenance(maintenance *models.Maintenance) (*models.Maintenance, error) {
	if err := r.db.Create(maintenance).Error; err != nil {
		return nil, err
	}

	return maintenance, nil
}

func (r *MaintenanceRepository) ListMaintenances(filter *utils.ListMaintenancesFilter) ([]*models.Maintenance, error) {
	var maintenances []*models.Maintenance

	db := r.db

	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	if err := db.Preload("Monitors").Find(&maintenances).Error; err != nil {
		return nil, err
	}

	return maintenances, nil
}

func (r *MaintenanceRepository) CreateEvent(event *models.MaintenanceEvent) (*models.MaintenanceEvent, error) {
	if err := r.db.Create(event).Error; err != nil {
		return nil, err
	}

	return event, nil
}

// ListEventStarts returns the start timestamps of all existing events for a
// maintenance. The expander checks occurrences against this set so a re-run
// never duplicates rows.
func (r *MaintenanceRepository) ListEventStarts(maintenanceID uint) (map[int64]bool, error) {
	var events []*models.MaintenanceEvent

	if err := r.db.Where("maintenance_id = ?", maintenanceID).Find(&events).Error; err != nil {
		return nil, err
	}

	starts := make(map[int64]bool, len(events))

	for _, event := range events {
		starts[event.StartDateTime] = true
	}

	return starts, nil
}

// ListActiveWindowsForMonitor returns non-cancelled maintenance events that
// cover the monitor at the given timestamp.
func (r *MaintenanceRepository) ListActiveWindowsForMonitor(tag string, ts int64) ([]*models.MaintenanceEvent, error) {
	var events []*models.MaintenanceEvent

	err := r.db.
		Joins("JOIN maintenance_monitors ON maintenance_monitors.maintenance_id = maintenance_events.maintenance_id").
		Where("maintenance_monitors.monitor_tag = ?", tag).
		Where("maintenance_events.status IN ?", []models.MaintenanceEventStatus{
			models.MaintenanceEventScheduled,
			models.MaintenanceEventOngoing,
		}).
		Where("maintenance_events.start_date_time <= ? AND maintenance_events.end_date_time >= ?", ts, ts).
		Find(&events).Error

	if err != nil {
		return nil, err
	}

	return events, nil
}

// DeleteScheduledEventsAfter removes future SCHEDULED events for a
// maintenance. Callers use this after editing schedule fields so the next
// expander run regenerates from the new rule.
func (r *MaintenanceRepository) DeleteScheduledEventsAfter(maintenanceID uint, ts int64) error {
	return r.db.Where("maintenance_id = ? AND status = ? AND start_date_time > ?",
		maintenanceID, models.MaintenanceEventScheduled, ts).
		Delete(&models.MaintenanceEvent{}).Error
}
