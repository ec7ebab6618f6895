// Package events publishes order lifecycle events to NATS. Publishing is
// optional: when NATS_URL is unset the publisher stays nil and every
// caller treats publishing as a discarded side effect.
package events

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

const (
	SubjectOrderCreated       = "orders.order.created"
	SubjectOrderPaid          = "orders.order.paid"
	SubjectOrderStatusChanged = "orders.order.status_changed"
)

// Publisher wraps a NATS connection for storefront order events
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Entry
}

// OrderEvent is the wire format of an order lifecycle event.
type OrderEvent struct {
	OrderID       string    `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	Status        string    `json:"status"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"paymentMethod"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewPublisher connects to NATS when NATS_URL is set; it returns nil
// (publishing disabled) otherwise.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		logger.Warn("NATS_URL not set, event publishing disabled")
		return nil, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS events publisher initialized for storefront-service")
	return &Publisher{
		conn:   conn,
		logger: logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishOrderCreated publishes an order created event
func (p *Publisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderCreated, order)
}

// PublishOrderPaid publishes an order paid event
func (p *Publisher) PublishOrderPaid(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderPaid, order)
}

// PublishOrderStatusChanged publishes an order status change event
func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderStatusChanged, order)
}

func (p *Publisher) publish(subject string, order *models.Order) error {
	if !p.IsConnected() {
		return nats.ErrConnectionClosed
	}
	event := OrderEvent{
		OrderID:       order.ID.String(),
		CustomerEmail: order.CustomerEmail,
		Status:        string(order.Status),
		Total:         order.Total.StringFixed(2),
		PaymentMethod: string(order.PaymentMethod),
		OccurredAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
