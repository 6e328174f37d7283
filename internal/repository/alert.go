package repository

import (
	"errors"

	"github.com/watchdock/agent/internal/models"
	"github.com/watchdock/agent/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertConfigRepository struct {
	db *gorm.DB
}

// NewAlertConfigRepository returns pointer to repo along with the db
func NewAlertConfigRepository(db *gorm.DB) *AlertConfigRepository {
	return &AlertConfigRepository{db}
}

func (r *AlertConfigRepository) CreateAlertConfig(config *models.AlertConfig) (*models.AlertConfig, error) {
	if err := r.db.Create(config).Error; err != nil {
		return nil, err
	}

	return config, nil
}

// ListAlertConfigs returns configs matching the filter. A nil filter
// lists everything.
func (r *AlertConfigRepository) ListAlertConfigs(filter *utils.ListAlertConfigsFilter) ([]*models.AlertConfig, error) {
	var configs []*models.AlertConfig

	if filter == nil {
		filter = &utils.ListAlertConfigsFilter{}
	}

	db := r.db

	if filter.MonitorTag != nil {
		db = db.Where("monitor_tag = ?", *filter.MonitorTag)
	}

	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}

	if err := db.Find(&configs).Error; err != nil {
		return nil, err
	}

	return configs, nil
}

type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository returns pointer to repo along with the db
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db}
}

func (r *AlertRepository) CreateAlert(alert *models.Alert) (*models.Alert, error) {
	if err := r.db.Create(alert).Error; err != nil {
		return nil, err
	}

	return alert, nil
}

func (r *AlertRepository) UpdateAlert(alert *models.Alert) (*models.Alert, error) {
	if err := r.db.Save(alert).Error; err != nil {
		return nil, err
	}

	return alert, nil
}

// ReadTriggeredAlert returns the open alert for a config, or nil when no
// TRIGGERED alert exists. This read-before-write check is what keeps the
// one-open-alert-per-config invariant.
func (r *AlertRepository) ReadTriggeredAlert(configID uint) (*models.Alert, error) {
	alert := &models.Alert{}

	err := r.db.Where("config_id = ? AND state = ?", configID, models.AlertStateTriggered).
		First(alert).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return alert, nil
}

func (r *AlertRepository) ListAlertsByConfig(configID uint) ([]*models.Alert, error) {
	var alerts []*models.Alert

	if err := r.db.Where("config_id = ?", configID).Order("created_at desc").Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

type AlertMeterRepository struct {
	db *gorm.DB
}

// NewAlertMeterRepository returns pointer to repo along with the db
func NewAlertMeterRepository(db *gorm.DB) *AlertMeterRepository {
	return &AlertMeterRepository{db}
}

func (r *AlertMeterRepository) ReadMeter(configID uint) (*models.AlertMeter, error) {
	meter := &models.AlertMeter{}

	err := r.db.Where("config_id = ?", configID).First(meter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.AlertMeter{ConfigID: configID}, nil
	}

	if err != nil {
		return nil, err
	}

	return meter, nil
}

func (r *AlertMeterRepository) UpsertMeter(meter *models.AlertMeter) (*models.AlertMeter, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"breach_count", "ok_count", "updated_at"}),
	}).Create(meter).Error

	if err != nil {
		return nil, err
	}

	return meter, nil
}
