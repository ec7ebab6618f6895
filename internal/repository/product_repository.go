package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

type ProductFilters struct {
	Category string
	Page     int
	Limit    int
}

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uuid.UUID) (*models.Product, error)
	List(filters ProductFilters) ([]models.Product, int64, error)
	Update(product *models.Product) error
	SoftDelete(id uuid.UUID) error
	// DecrementStock subtracts quantity from stock, flooring at zero.
	// Concurrent checkouts are not serialized against each other.
	DecrementStock(id uuid.UUID, quantity int) error
	SetStock(id uuid.UUID, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", id.String())
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(filters ProductFilters) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 {
		filters.Limit = 50
	}
	offset := (filters.Page - 1) * filters.Limit

	err := query.Order("created_at DESC").Offset(offset).Limit(filters.Limit).Find(&products).Error
	return products, total, err
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) SoftDelete(id uuid.UUID) error {
	result := r.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product", id.String())
	}
	return nil
}

func (r *productRepository) DecrementStock(id uuid.UUID, quantity int) error {
	result := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("GREATEST(stock - ?, 0)", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product", id.String())
	}
	return nil
}

func (r *productRepository) SetStock(id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return apperr.Validation("stock must be >= 0")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("product", id.String())
	}
	return nil
}
