package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

// InvoiceRenderer renders an order snapshot into a PDF document.
type InvoiceRenderer interface {
	Render(snapshot models.OrderSnapshot) ([]byte, error)
}

// EventDeduper remembers webhook events that fulfillment already handled
// so provider retries do not re-run it. The marker is written only after
// successful handling; a failed event stays unmarked so the provider's
// redelivery gets a fresh attempt.
type EventDeduper interface {
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

const dedupTTL = 24 * time.Hour

type redisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper creates a Redis-backed event deduper.
func NewRedisDeduper(client *redis.Client) EventDeduper {
	return &redisDeduper{client: client}
}

func dedupKey(eventID string) string { return "webhook:event:" + eventID }

func (d *redisDeduper) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(eventID)).Result()
	return n > 0, err
}

func (d *redisDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	return d.client.Set(ctx, dedupKey(eventID), 1, dedupTTL).Err()
}

// PaymentCompleted is the provider-neutral view of a "payment completed"
// webhook event, built by the webhook handler after signature
// verification.
type PaymentCompleted struct {
	EventID       string
	PaymentRef    string
	OrderID       string // client reference to an existing order, may be empty
	CustomerEmail string
	ItemsJSON     string // deferred-order cart payload from session metadata
	ShippingJSON  string
}

// FulfillmentService reacts to confirmed payments: it moves the order to
// processing, renders the invoice and notifies customer and shop. The
// three side effects are isolated from each other; only a failure to
// identify or persist the order is reported to the caller.
type FulfillmentService struct {
	orders    *OrderService
	renderer  InvoiceRenderer
	mailer    OrderMailer
	deduper   EventDeduper
	publisher OrderEventPublisher
	logger    *logrus.Entry
}

// NewFulfillmentService creates a new fulfillment service. Deduper and
// publisher may be nil; both degrade to no-ops.
func NewFulfillmentService(orders *OrderService, renderer InvoiceRenderer, mailer OrderMailer, deduper EventDeduper, publisher OrderEventPublisher, logger *logrus.Logger) *FulfillmentService {
	return &FulfillmentService{
		orders:    orders,
		renderer:  renderer,
		mailer:    mailer,
		deduper:   deduper,
		publisher: publisher,
		logger:    logger.WithField("component", "fulfillment"),
	}
}

// HandlePaymentCompleted processes a verified payment-completed event.
func (s *FulfillmentService) HandlePaymentCompleted(ctx context.Context, evt PaymentCompleted) error {
	if s.deduper != nil && evt.EventID != "" {
		seen, err := s.deduper.AlreadyProcessed(ctx, evt.EventID)
		if err != nil {
			// Dedup is an optimization; a broken Redis must not block
			// fulfillment.
			s.logger.WithError(err).Warn("event dedup unavailable, proceeding")
		} else if seen {
			s.logger.WithField("event_id", evt.EventID).Info("duplicate webhook event, already handled")
			return nil
		}
	}

	order, err := s.resolveOrder(evt)
	if err != nil {
		return err
	}

	// The order is persisted; only now does the event count as handled.
	// An event that failed above stays unmarked so a redelivery retries.
	if s.deduper != nil && evt.EventID != "" {
		if err := s.deduper.MarkProcessed(ctx, evt.EventID); err != nil {
			s.logger.WithError(err).Warn("failed to record processed webhook event")
		}
	}

	snapshot := s.orders.Snapshot(order)

	s.publishPaid(ctx, order)

	// PDF rendering is isolated: a renderer failure downgrades the emails
	// to attachment-less, it never stops them.
	var invoicePDF []byte
	if pdf, err := s.renderer.Render(snapshot); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("invoice rendering failed, sending emails without attachment")
	} else {
		invoicePDF = pdf
	}

	if err := s.mailer.SendOrderConfirmation(ctx, snapshot, invoicePDF); err != nil {
		// Deliberately discarded: the webhook must still acknowledge.
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("customer confirmation email failed")
	}
	if err := s.mailer.SendAdminOrderNotice(ctx, snapshot, invoicePDF); err != nil {
		// Deliberately discarded.
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("admin notification email failed")
	}

	return nil
}

// resolveOrder finds the order the event refers to. A client reference to
// an existing order is moved to processing; otherwise the order is created
// now from the session metadata (Flow A defers creation to this point).
func (s *FulfillmentService) resolveOrder(evt PaymentCompleted) (*models.Order, error) {
	if evt.OrderID != "" {
		if id, err := uuid.Parse(evt.OrderID); err == nil {
			order, err := s.orders.UpdateStatus(id, models.OrderProcessing)
			if err == nil {
				return order, nil
			}
			s.logger.WithField("order_id", evt.OrderID).
				Warn("client reference did not match an order, falling back to metadata")
		}
	}

	if evt.ItemsJSON == "" {
		return nil, fmt.Errorf("payment event %s carries no order reference and no cart metadata", evt.EventID)
	}

	var items []models.CheckoutItem
	if err := json.Unmarshal([]byte(evt.ItemsJSON), &items); err != nil {
		return nil, fmt.Errorf("malformed cart metadata on event %s: %w", evt.EventID, err)
	}
	var shipping models.ShippingAddress
	if evt.ShippingJSON != "" {
		if err := json.Unmarshal([]byte(evt.ShippingJSON), &shipping); err != nil {
			return nil, fmt.Errorf("malformed shipping metadata on event %s: %w", evt.EventID, err)
		}
	}

	order, err := s.orders.Create(CreateParams{
		CustomerEmail: evt.CustomerEmail,
		Items:         items,
		Shipping:      shipping,
		Status:        models.OrderProcessing,
		PaymentMethod: models.PaymentCard,
		PaymentRef:    evt.PaymentRef,
	})
	if err != nil {
		return nil, err
	}

	// Stock bookkeeping for deferred orders happens here, after the order
	// exists. Best-effort, as everywhere.
	s.orders.DecrementStock(order.Items)

	return order, nil
}

func (s *FulfillmentService) publishPaid(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderPaid(ctx, order); err != nil {
		// Deliberately discarded.
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("order.paid event publish failed")
	}
}
