package services

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"storefront-service/internal/apperr"
	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CheckoutService creates hosted card-payment sessions (Flow A). No order
// is written here; order creation is deferred to the payment webhook once
// the provider confirms the payment.
type CheckoutService struct {
	cfg      config.StripeConfig
	products repository.ProductRepository
	logger   *logrus.Entry
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(cfg config.StripeConfig, products repository.ProductRepository, logger *logrus.Logger) *CheckoutService {
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	return &CheckoutService{
		cfg:      cfg,
		products: products,
		logger:   logger.WithField("component", "checkout"),
	}
}

// SessionRequest is the cart summary submitted by the storefront.
type SessionRequest struct {
	CustomerEmail string                 `json:"customerEmail" binding:"required"`
	Items         []models.CheckoutItem  `json:"items" binding:"required"`
	Shipping      models.ShippingAddress `json:"shipping"`
}

// CreateSession builds a hosted checkout session and returns the redirect
// URL. The cart payload rides in the session metadata so the webhook can
// create the order after payment completes.
func (s *CheckoutService) CreateSession(ctx context.Context, req SessionRequest) (*models.CheckoutSessionResponse, error) {
	if s.cfg.SecretKey == "" {
		return nil, apperr.Configuration("card payments are not configured")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, apperr.Validation("quantity must be >= 1 for product %s", item.ProductID)
		}
		product, err := s.products.GetByID(item.ProductID)
		if err != nil {
			return nil, apperr.Validation("unknown product %s", item.ProductID)
		}
		unitAmount := product.Price.Mul(decimal.NewFromInt(100)).IntPart()
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(product.Name),
				},
			},
		})
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, apperr.Validation("invalid cart payload")
	}
	shippingJSON, err := json.Marshal(req.Shipping)
	if err != nil {
		return nil, apperr.Validation("invalid shipping payload")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.cfg.SuccessURL),
		CancelURL:     stripe.String(s.cfg.CancelURL),
		CustomerEmail: stripe.String(req.CustomerEmail),
		LineItems:     lineItems,
	}
	params.AddMetadata("items", string(itemsJSON))
	params.AddMetadata("shipping", string(shippingJSON))
	params.AddMetadata("customer_email", req.CustomerEmail)

	sess, err := session.New(params)
	if err != nil {
		s.logger.WithError(err).Error("checkout session creation rejected")
		return nil, apperr.Upstream("create checkout session", err)
	}

	return &models.CheckoutSessionResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}
