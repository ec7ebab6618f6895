package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product represents a catalog item. Soft-deleted products disappear from
// listings but stay referenced by historical order lines.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	ImageURL    string          `json:"imageUrl" gorm:"type:varchar(2048)"`
	Category    string          `json:"category" gorm:"type:varchar(100);index"`
	Stock       int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Tags        datatypes.JSON  `json:"tags,omitempty" gorm:"type:jsonb"`
	// BoxPrices maps a box format (e.g. "9", "16", "25") to its price.
	BoxPrices datatypes.JSON `json:"boxPrices,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	ImageURL    string          `json:"imageUrl"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Tags        []string        `json:"tags"`
	BoxPrices   map[string]decimal.Decimal `json:"boxPrices"`
}

// UpdateProductRequest is the admin payload for updating a product. Nil
// fields are left untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	ImageURL    *string          `json:"imageUrl"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
}
