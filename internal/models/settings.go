package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StorefrontSetting is a keyed JSON settings document (shipping rates,
// announcement banner, opening hours and the like).
type StorefrontSetting struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Key       string         `json:"key" gorm:"type:varchar(120);uniqueIndex;not null"`
	Value     datatypes.JSON `json:"value" gorm:"type:jsonb"`
	UpdatedAt time.Time      `json:"updatedAt"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PutSettingRequest is the admin payload for writing a setting.
type PutSettingRequest struct {
	Value datatypes.JSON `json:"value" binding:"required"`
}
