package services

import (
	"encoding/json"

	"gorm.io/datatypes"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// SettingsService reads and writes keyed storefront settings documents.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the setting for a key.
func (s *SettingsService) Get(key string) (*models.StorefrontSetting, error) {
	if key == "" {
		return nil, apperr.Validation("setting key is required")
	}
	return s.settings.Get(key)
}

// Put writes the setting for a key. The value must be valid JSON.
func (s *SettingsService) Put(key string, value datatypes.JSON) (*models.StorefrontSetting, error) {
	if key == "" {
		return nil, apperr.Validation("setting key is required")
	}
	if !json.Valid(value) {
		return nil, apperr.Validation("setting value must be valid JSON")
	}
	return s.settings.Put(key, value)
}
