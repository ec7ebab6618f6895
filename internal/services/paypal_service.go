package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/apperr"
	"storefront-service/internal/clients/paypal"
	"storefront-service/internal/models"
)

// WalletGateway is the slice of the PayPal client the capture flow needs.
type WalletGateway interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetOrder(ctx context.Context, accessToken, orderID string) (*paypal.OrderResponse, error)
}

// OrderMailer sends order-related emails.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error
	SendAdminOrderNotice(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error
}

// PayPalService implements the direct-capture flow (Flow B): the browser
// completes a wallet payment and posts the provider order id here; the
// payment is verified server-side against PayPal before anything is
// persisted.
type PayPalService struct {
	gateway WalletGateway
	orders  *OrderService
	mailer  OrderMailer
	logger  *logrus.Entry
}

// NewPayPalService creates a new PayPal capture service. Gateway is nil
// when wallet credentials are not configured.
func NewPayPalService(gateway WalletGateway, orders *OrderService, mailer OrderMailer, logger *logrus.Logger) *PayPalService {
	return &PayPalService{
		gateway: gateway,
		orders:  orders,
		mailer:  mailer,
		logger:  logger.WithField("component", "paypal"),
	}
}

// CaptureRequest is the client payload for a completed wallet payment.
type CaptureRequest struct {
	PayPalOrderID string                 `json:"paypalOrderId" binding:"required"`
	CustomerEmail string                 `json:"customerEmail" binding:"required"`
	UserID        *uuid.UUID             `json:"userId"`
	Items         []models.CheckoutItem  `json:"items" binding:"required"`
	Shipping      models.ShippingAddress `json:"shipping"`
}

// Capture verifies the payment with PayPal and persists the order. The
// ordering is load-bearing: verification precedes persistence, persistence
// precedes stock mutation, and the notification email can never fail the
// request because the payment already succeeded.
func (s *PayPalService) Capture(ctx context.Context, req CaptureRequest) (*models.Order, error) {
	if s.gateway == nil {
		return nil, apperr.Configuration("wallet payments are not configured")
	}
	if req.PayPalOrderID == "" {
		return nil, apperr.Validation("paypal order id is required")
	}

	token, err := s.gateway.GetAccessToken(ctx)
	if err != nil {
		return nil, apperr.Upstream("paypal token exchange", err)
	}

	providerOrder, err := s.gateway.GetOrder(ctx, token, req.PayPalOrderID)
	if err != nil {
		return nil, apperr.Upstream("paypal order lookup", err)
	}
	if providerOrder.Status != paypal.StatusCompleted {
		return nil, &apperr.PaymentNotCompletedError{Status: providerOrder.Status}
	}

	// Total is recomputed from the submitted line items inside Create; a
	// client-sent total is never trusted.
	order, err := s.orders.Create(CreateParams{
		CustomerEmail: req.CustomerEmail,
		UserID:        req.UserID,
		Items:         req.Items,
		Shipping:      req.Shipping,
		Status:        models.OrderProcessing,
		PaymentMethod: models.PaymentPayPal,
		PaymentRef:    providerOrder.ID,
	})
	if err != nil {
		return nil, err
	}

	// Best-effort from here on: the payment is captured and must not be
	// reversed by bookkeeping or notification failures.
	s.orders.DecrementStock(order.Items)

	snapshot := s.orders.Snapshot(order)
	if err := s.mailer.SendOrderConfirmation(ctx, snapshot, nil); err != nil {
		// Deliberately discarded.
		s.logger.WithError(err).WithField("order_id", order.ID).
			Warn("order confirmation email failed")
	}

	return order, nil
}
