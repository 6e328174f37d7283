package repository

import (
	"github.com/watchdock/agent/internal/models"
	"gorm.io/gorm"
)

type TriggerRepository struct {
	db *gorm.DB
}

// NewTriggerRepository returns pointer to repo along with the db
func NewTriggerRepository(db *gorm.DB) *TriggerRepository {
	return &TriggerRepository{db}
}

func (r *TriggerRepository) CreateTrigger(trigger *models.Trigger) (*models.Trigger, error) {
	if err := r.db.Create(trigger).Error; err != nil {
		return nil, err
	}

	return trigger, nil
}

func (r *TriggerRepository) ListActiveTriggersForConfig(configID uint) ([]*models.Trigger, error) {
	var triggers []*models.Trigger

	if err := r.db.Where("config_id = ? AND is_active = ?", configID, true).
		Find(&triggers).Error; err != nil {
		return nil, err
	}

	return triggers, nil
}

type SecretRepository struct {
	db *gorm.DB
}

// NewSecretRepository returns pointer to repo along with the db
func NewSecretRepository(db *gorm.DB) *SecretRepository {
	return &SecretRepository{db}
}

func (r *SecretRepository) CreateSecret(secret *models.Secret) (*models.Secret, error) {
	if err := r.db.Create(secret).Error; err != nil {
		return nil, err
	}

	return secret, nil
}

func (r *SecretRepository) ListSecrets() ([]*models.Secret, error) {
	var secrets []*models.Secret

	if err := r.db.Find(&secrets).Error; err != nil {
		return nil, err
	}

	return secrets, nil
}
