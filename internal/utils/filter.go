package utils

import "github.com/watchdock/agent/internal/models"

type ListIncidentsFilter struct {
	State      *models.IncidentState
	MonitorTag *string
	Open       *bool
}

type ListAlertConfigsFilter struct {
	MonitorTag *string
	IsActive   *bool
}

type ListMaintenancesFilter struct {
	Status *models.MaintenanceStatus
}
