package repository

import (
	"github.com/watchdock/agent/internal/models"
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, debug bool) error {
	instanceDB := db

	if debug {
		instanceDB = instanceDB.Debug()
	}

	return instanceDB.AutoMigrate(
		&models.Monitor{},
		&models.MonitoringDataPoint{},
		&models.AlertConfig{},
		&models.Alert{},
		&models.AlertMeter{},
		&models.Incident{},
		&models.IncidentComment{},
		&models.IncidentMonitor{},
		&models.Maintenance{},
		&models.MaintenanceEvent{},
		&models.MaintenanceMonitor{},
		&models.Trigger{},
		&models.Secret{},
	)
}
