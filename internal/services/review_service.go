package services

import (
	"github.com/google/uuid"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ReviewService handles review submission and moderation. The one-review-
// per-(product,user) rule counts pending and approved reviews; a rejected
// review frees the slot.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
}

// NewReviewService creates a new review service
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository) *ReviewService {
	return &ReviewService{reviews: reviews, products: products}
}

// Submit creates a review in pending state.
func (s *ReviewService) Submit(identity models.Identity, req models.SubmitReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}
	if _, err := s.products.GetByID(req.ProductID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.HasNonRejected(req.ProductID, identity.UserID)
	if err != nil {
		return nil, apperr.Upstream("review lookup", err)
	}
	if exists {
		return nil, apperr.Duplicate("user already reviewed this product")
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: req.ProductID,
		UserID:    identity.UserID,
		UserEmail: identity.Email,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
		Status:    models.ReviewPending,
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, apperr.Upstream("insert review", err)
	}
	return review, nil
}

// ListApproved returns a product's approved reviews for the storefront.
func (s *ReviewService) ListApproved(productID uuid.UUID) ([]models.Review, error) {
	return s.reviews.ListByProduct(productID, models.ReviewApproved)
}

// ListForModeration returns reviews by status for the admin screen. An
// empty status lists everything.
func (s *ReviewService) ListForModeration(status models.ReviewStatus) ([]models.Review, error) {
	if status != "" && status != models.ReviewPending && status != models.ReviewApproved && status != models.ReviewRejected {
		return nil, apperr.Validation("unknown review status %q", status)
	}
	return s.reviews.ListByStatus(status)
}

// Moderate approves or rejects a review.
func (s *ReviewService) Moderate(id uuid.UUID, action string) (*models.Review, error) {
	var status models.ReviewStatus
	switch action {
	case "approve":
		status = models.ReviewApproved
	case "reject":
		status = models.ReviewRejected
	default:
		return nil, apperr.Validation("action must be approve or reject")
	}
	return s.reviews.UpdateStatus(id, status)
}
