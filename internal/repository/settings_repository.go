package repository

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

type SettingsRepository interface {
	Get(key string) (*models.StorefrontSetting, error)
	Put(key string, value datatypes.JSON) (*models.StorefrontSetting, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(key string) (*models.StorefrontSetting, error) {
	var setting models.StorefrontSetting
	err := r.db.First(&setting, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("setting", key)
		}
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) Put(key string, value datatypes.JSON) (*models.StorefrontSetting, error) {
	setting := models.StorefrontSetting{Key: key, Value: value}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}
	return r.Get(key)
}
