package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// OrderEventPublisher fans order lifecycle events out to the message bus.
// Nil when event publishing is disabled.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderPaid(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order) error
}

// OrderService owns the order lifecycle: creation with server-side totals
// and the compensating delete, status updates, and best-effort stock
// bookkeeping.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher OrderEventPublisher
	logger    *logrus.Entry
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, publisher OrderEventPublisher, logger *logrus.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    logger.WithField("component", "orders"),
	}
}

// CreateParams are the inputs for creating an order.
type CreateParams struct {
	CustomerEmail string
	UserID        *uuid.UUID
	Items         []models.CheckoutItem
	Shipping      models.ShippingAddress
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	PaymentRef    string
}

// Create validates the cart, resolves product snapshots, computes the
// total server-side and persists header plus lines. A failed line insert
// rolls the header back so no orphaned empty order survives.
func (s *OrderService) Create(params CreateParams) (*models.Order, error) {
	if params.CustomerEmail == "" {
		return nil, apperr.Validation("customer email is required")
	}
	if len(params.Items) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}

	status := params.Status
	if status == "" {
		status = models.OrderPending
	}

	// Resolve every line before writing anything. Unit prices are
	// snapshots of the current catalog price; a client-sent total is
	// never consulted.
	lines := make([]models.OrderItem, 0, len(params.Items))
	total := decimal.Zero
	for _, item := range params.Items {
		if item.Quantity < 1 {
			return nil, apperr.Validation("quantity must be >= 1 for product %s", item.ProductID)
		}
		product, err := s.products.GetByID(item.ProductID)
		if err != nil {
			return nil, apperr.Validation("unknown product %s", item.ProductID)
		}
		amount := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(amount)
		lines = append(lines, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
	}

	order := &models.Order{
		ID:            uuid.New(),
		CustomerEmail: params.CustomerEmail,
		UserID:        params.UserID,
		Total:         total,
		Status:        status,
		Shipping:      params.Shipping,
		PaymentMethod: params.PaymentMethod,
		PaymentRef:    params.PaymentRef,
	}

	if err := s.orders.Insert(order); err != nil {
		return nil, apperr.Upstream("insert order", err)
	}

	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := s.orders.InsertItems(lines); err != nil {
		// Compensating action: no multi-table transaction is available
		// across the backend boundary, so remove the orphaned header.
		if delErr := s.orders.Delete(order.ID); delErr != nil {
			s.logger.WithError(delErr).WithField("order_id", order.ID).
				Error("failed to roll back order header after line insert failure")
		}
		return nil, apperr.Upstream("insert order lines", err)
	}
	order.Items = lines

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(context.Background(), order); err != nil {
			// Deliberately discarded: event fan-out never blocks creation.
			s.logger.WithError(err).WithField("order_id", order.ID).
				Warn("order.created event publish failed")
		}
	}

	return order, nil
}

// Get returns an order with its lines.
func (s *OrderService) Get(id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(id)
}

// ListForCustomer returns a customer's orders, newest first.
func (s *OrderService) ListForCustomer(email string) ([]models.Order, error) {
	if email == "" {
		return nil, apperr.Validation("customer email is required")
	}
	return s.orders.ListByCustomer(email)
}

// ListAll returns every order. Admin gating is the caller's job.
func (s *OrderService) ListAll() ([]models.Order, error) {
	return s.orders.ListAll()
}

// UpdateStatus moves an order to any of the five defined statuses. No
// transition graph is enforced; an admin may move any status to any other.
func (s *OrderService) UpdateStatus(id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, apperr.Validation("unknown order status %q", status)
	}
	order, err := s.orders.UpdateStatus(id, status)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOrderStatusChanged(context.Background(), order); err != nil {
			// Deliberately discarded.
			s.logger.WithError(err).WithField("order_id", order.ID).
				Warn("order.status_changed event publish failed")
		}
	}
	return order, nil
}

// DecrementStock reduces stock for each order line. Failures are logged
// and swallowed: stock bookkeeping never blocks the customer-facing
// success path.
func (s *OrderService) DecrementStock(items []models.OrderItem) {
	for _, item := range items {
		if err := s.products.DecrementStock(item.ProductID, item.Quantity); err != nil {
			// Deliberately discarded: stock bookkeeping never blocks the
			// customer-facing success path.
			s.logger.WithError(err).WithFields(logrus.Fields{
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}).Warn("stock decrement failed")
		}
	}
}

// Snapshot builds the immutable view used by the invoice renderer and the
// confirmation emails.
func (s *OrderService) Snapshot(order *models.Order) models.OrderSnapshot {
	snapshot := models.OrderSnapshot{
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		Status:        order.Status,
		Total:         order.Total,
		Shipping:      order.Shipping,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
	}
	for _, item := range order.Items {
		snapshot.Lines = append(snapshot.Lines, models.SnapshotLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return snapshot
}

// FindByPaymentRef resolves an order by its external payment reference.
func (s *OrderService) FindByPaymentRef(ref string) (*models.Order, error) {
	if ref == "" {
		return nil, apperr.Validation("payment reference is required")
	}
	return s.orders.GetByPaymentRef(ref)
}
