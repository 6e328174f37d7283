package repository

import (
	"github.com/watchdock/agent/internal/models"
	"gorm.io/gorm"
)

type MonitorRepository struct {
	db *gorm.DB
}

// NewMonitorRepository returns pointer to repo along with the db
func NewMonitorRepository(db *gorm.DB) *MonitorRepository {
	return &MonitorRepository{db}
}

func (r *MonitorRepository) CreateMonitor(monitor *models.Monitor) (*models.Monitor, error) {
	if err := r.db.Create(monitor).Error; err != nil {
		return nil, err
	}

	return monitor, nil
}

func (r *MonitorRepository) ReadMonitor(tag string) (*models.Monitor, error) {
	monitor := &models.Monitor{}

	if err := r.db.Where("tag = ?", tag).First(monitor).Error; err != nil {
		return nil, err
	}

	return monitor, nil
}

func (r *MonitorRepository) UpdateMonitor(monitor *models.Monitor) (*models.Monitor, error) {
	if err := r.db.Save(monitor).Error; err != nil {
		return nil, err
	}

	return monitor, nil
}

func (r *MonitorRepository) ListActiveMonitors() ([]*models.Monitor, error) {
	var monitors []*models.Monitor

	if err := r.db.Where("active = ?", true).Find(&monitors).Error; err != nil {
		return nil, err
	}

	return monitors, nil
}

func (r *MonitorRepository) DeleteMonitor(tag string) error {
	monitor := &models.Monitor{}

	if err := r.db.Where("tag = ?", tag).First(monitor).Error; err != nil {
		return err
	}

	return r.db.Delete(monitor).Error
}
