package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id uuid.UUID) (*models.Review, error)
	// HasNonRejected reports whether the user already holds a pending or
	// approved review for the product.
	HasNonRejected(productID, userID uuid.UUID) (bool, error)
	ListByProduct(productID uuid.UUID, status models.ReviewStatus) ([]models.Review, error)
	ListByStatus(status models.ReviewStatus) ([]models.Review, error)
	UpdateStatus(id uuid.UUID, status models.ReviewStatus) (*models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) GetByID(id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("review", id.String())
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) HasNonRejected(productID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("product_id = ? AND user_id = ? AND status <> ?", productID, userID, models.ReviewRejected).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) ListByProduct(productID uuid.UUID, status models.ReviewStatus) ([]models.Review, error) {
	var reviews []models.Review
	query := r.db.Where("product_id = ?", productID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) ListByStatus(status models.ReviewStatus) ([]models.Review, error) {
	var reviews []models.Review
	query := r.db.Model(&models.Review{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) UpdateStatus(id uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	result := r.db.Model(&models.Review{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("review", id.String())
	}
	return r.GetByID(id)
}
