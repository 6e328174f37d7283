package repository

import "gorm.io/gorm"

type Repository struct {
	DB *gorm.DB

	Monitor     *MonitorRepository
	DataPoint   *DataPointRepository
	AlertConfig *AlertConfigRepository
	Alert       *AlertRepository
	AlertMeter  *AlertMeterRepository
	Incident    *IncidentRepository
	Maintenance *MaintenanceRepository
	Trigger     *TriggerRepository
	Secret      *SecretRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:          db,
		Monitor:     NewMonitorRepository(db),
		DataPoint:   NewDataPointRepository(db),
		AlertConfig: NewAlertConfigRepository(db),
		Alert:       NewAlertRepository(db),
		AlertMeter:  NewAlertMeterRepository(db),
		Incident:    NewIncidentRepository(db),
		Maintenance: NewMaintenanceRepository(db),
		Trigger:     NewTriggerRepository(db),
		Secret:      NewSecretRepository(db),
	}
}
