package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// OrderRepository persists order headers and lines. Header and lines are
// written as separate steps; the caller compensates a failed line insert
// by deleting the just-created header (see OrderService.Create).
type OrderRepository interface {
	Insert(order *models.Order) error
	InsertItems(items []models.OrderItem) error
	// Delete removes an order header. Only used as the compensating
	// action after a failed line insert; orders are otherwise immortal.
	Delete(id uuid.UUID) error
	GetByID(id uuid.UUID) (*models.Order, error)
	GetByPaymentRef(ref string) (*models.Order, error)
	ListByCustomer(email string) ([]models.Order, error)
	ListAll() ([]models.Order, error)
	UpdateStatus(id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Insert(order *models.Order) error {
	// Items are inserted separately so the compensating-delete path stays
	// observable; omit them from the header write.
	return r.db.Omit("Items").Create(order).Error
}

func (r *orderRepository) InsertItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *orderRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Order{}, "id = ?", id).Error
}

func (r *orderRepository) GetByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", id.String())
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByPaymentRef(ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, "payment_ref = ?", ref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", ref)
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) UpdateStatus(id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	result := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("order", id.String())
	}
	return r.GetByID(id)
}
