package repository

import (
	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/utils"
	"gorm.io/gorm"
)

type IncidentRepository struct {
	db *gorm.DB
}

// NewIncidentRepository returns pointer to repo along with the db
func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db}
}

func (r *IncidentRepository) CreateIncident(incident *models.Incident) (*models.Incident, error) {
	if err := r.db.Create(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) ReadIncident(uid string) (*models.Incident, error) {
	incident := &models.Incident{}

	if err := r.db.Preload("Comments").Preload("Monitors").
		Where("unique_id = ?", uid).First(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) ReadIncidentByID(id uint) (*models.Incident, error) {
	incident := &models.Incident{}

	if err := r.db.Preload("Comments").Preload("Monitors").
		First(incident, id).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) UpdateIncident(incident *models.Incident) (*models.Incident, error) {
	if err := r.db.Save(incident).Error; err != nil {
		return nil, err
	}

	return incident, nil
}

func (r *IncidentRepository) AddComment(comment *models.IncidentComment) (*models.IncidentComment, error) {
	if err := r.db.Create(comment).Error; err != nil {
		return nil, err
	}

	return comment, nil
}

func (r *IncidentRepository) ListIncidents(filter *utils.ListIncidentsFilter, opts ...utils.QueryOption) ([]*models.Incident, error) {
	var incidents []*models.Incident

	db := r.db.Scopes(utils.Paginate(opts))

	if filter.State != nil {
		db = db.Where("state = ?", *filter.State)
	}

	if filter.Open != nil && *filter.Open {
		db = db.Where("state != ? AND end_date_time IS NULL", models.IncidentStateResolved)
	}

	if filter.MonitorTag != nil {
		db = db.Joins("JOIN incident_monitors ON incident_monitors.incident_id = incidents.id").
			Where("incident_monitors.monitor_tag = ?", *filter.MonitorTag)
	}

	if err := db.Preload("Comments").Preload("Monitors").Find(&incidents).Error; err != nil {
		return nil, err
	}

	return incidents, nil
}

// ListOpenImpactsForMonitor returns the declared impacts of open incidents
// covering the monitor at the given timestamp. The merge pipeline overlays
// these on top of the realtime result.
func (r *IncidentRepository) ListOpenImpactsForMonitor(tag string, ts int64) ([]*models.IncidentMonitor, error) {
	var impacts []*models.IncidentMonitor

	err := r.db.
		Joins("JOIN incidents ON incidents.id = incident_monitors.incident_id").
		Where("incident_monitors.monitor_tag = ?", tag).
		Where("incidents.state != ?", models.IncidentStateResolved).
		Where("incidents.start_date_time <= ?", ts).
		Where("incidents.end_date_time IS NULL OR incidents.end_date_time >= ?", ts).
		Find(&impacts).Error

	if err != nil {
		return nil, err
	}

	return impacts, nil
}
