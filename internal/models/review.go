package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the moderation state of a review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review is a customer product review. Reviews are created pending and
// only their status is ever changed afterwards, by admin moderation.
type Review struct {
	ID        uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ProductID uuid.UUID    `json:"productId" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID    `json:"userId" gorm:"type:uuid;not null;index"`
	UserEmail string       `json:"userEmail" gorm:"type:varchar(255)"`
	Rating    int          `json:"rating" gorm:"not null"`
	Title     string       `json:"title,omitempty" gorm:"type:varchar(255)"`
	Body      string       `json:"body,omitempty" gorm:"type:text"`
	Status    ReviewStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SubmitReviewRequest is the payload for creating a review.
type SubmitReviewRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Rating    int       `json:"rating" binding:"required"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
}

// ModerateReviewRequest is the admin payload for approving or rejecting a
// review.
type ModerateReviewRequest struct {
	Action string `json:"action" binding:"required"` // approve | reject
}
