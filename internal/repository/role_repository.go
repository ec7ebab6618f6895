package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

type RoleRepository interface {
	// GetRole returns the stored role for a user, or RoleUser when no
	// assignment exists.
	GetRole(userID uuid.UUID) (models.Role, error)
	SetRole(userID uuid.UUID, email string, role models.Role) (*models.RoleAssignment, error)
	List() ([]models.RoleAssignment, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetRole(userID uuid.UUID) (models.Role, error) {
	var assignment models.RoleAssignment
	err := r.db.First(&assignment, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoleUser, nil
		}
		return models.RoleUser, err
	}
	return models.NormalizeRole(string(assignment.Role)), nil
}

func (r *roleRepository) SetRole(userID uuid.UUID, email string, role models.Role) (*models.RoleAssignment, error) {
	if !role.IsAdmin() && role != models.RoleUser {
		return nil, apperr.Validation("unknown role %q", role)
	}
	assignment := models.RoleAssignment{UserID: userID, Email: email, Role: role}
	err := r.db.Save(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *roleRepository) List() ([]models.RoleAssignment, error) {
	var assignments []models.RoleAssignment
	err := r.db.Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}
