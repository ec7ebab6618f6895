package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the order lifecycle state.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the five defined values.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// PaymentMethod identifies which provider captured the payment.
type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
)

// ShippingAddress is embedded into Order.
type ShippingAddress struct {
	Name       string `json:"name" gorm:"type:varchar(255)"`
	Street     string `json:"street" gorm:"type:varchar(255)"`
	City       string `json:"city" gorm:"type:varchar(120)"`
	PostalCode string `json:"postalCode" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(120)"`
	Phone      string `json:"phone" gorm:"type:varchar(50)"`
}

// Order represents a customer order. Orders are never physically deleted;
// the only delete path is the compensating removal of a header whose
// lines failed to persist.
type Order struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerEmail string          `json:"customerEmail" gorm:"type:varchar(255);not null;index"`
	UserID        *uuid.UUID      `json:"userId,omitempty" gorm:"type:uuid;index"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(10,2);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Shipping      ShippingAddress `json:"shipping" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20)"`
	PaymentRef    string          `json:"paymentRef" gorm:"type:varchar(255);index"`
	AdminNote     string          `json:"adminNote,omitempty" gorm:"type:text"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OrderItem is one product+quantity entry within an order. ProductName and
// UnitPrice are snapshots taken at order time and never follow later
// catalog changes.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	ProductName string          `json:"productName" gorm:"type:varchar(255);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:numeric(10,2);not null"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CheckoutItem is a client-submitted cart line. Only the product id and
// quantity are trusted; unit prices are resolved server-side.
type CheckoutItem struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
}

// OrderSnapshot is the immutable view handed to the invoice renderer and
// the email templates after an order is paid.
type OrderSnapshot struct {
	OrderID       uuid.UUID
	CustomerEmail string
	Status        OrderStatus
	Total         decimal.Decimal
	Shipping      ShippingAddress
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	Lines         []SnapshotLine
}

// SnapshotLine is one rendered invoice line.
type SnapshotLine struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}
