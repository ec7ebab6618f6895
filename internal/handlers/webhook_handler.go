package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type WebhookHandler struct {
	fulfillment   *services.FulfillmentService
	webhookSecret string
	production    bool
	logger        *logrus.Entry
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(fulfillment *services.FulfillmentService, cfg *config.Config, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		fulfillment:   fulfillment,
		webhookSecret: cfg.Stripe.WebhookSecret,
		production:    cfg.App.IsProduction(),
		logger:        logger.WithField("component", "webhook"),
	}
}

// HandleStripe ingests Stripe webhook events
// @Summary Stripe webhook endpoint
// @Description Verifies the provider signature and triggers fulfillment on completed payments.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} models.WebhookAck
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /api/v1/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "unreadable payload",
		})
		return
	}

	event, ok := h.verifyEvent(c, payload)
	if !ok {
		return
	}

	if event.Type == "checkout.session.completed" {
		// Unverified dev-mode payloads may lack the data envelope entirely.
		if event.Data == nil {
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Message: "malformed event payload",
			})
			return
		}

		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			h.logger.WithError(err).Error("malformed checkout.session.completed payload")
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Message: "malformed event payload",
			})
			return
		}

		evt := services.PaymentCompleted{
			EventID:       event.ID,
			PaymentRef:    sess.ID,
			OrderID:       sess.ClientReferenceID,
			CustomerEmail: customerEmail(&sess),
			ItemsJSON:     sess.Metadata["items"],
			ShippingJSON:  sess.Metadata["shipping"],
		}
		if err := h.fulfillment.HandlePaymentCompleted(c.Request.Context(), evt); err != nil {
			// The event could not be tied to a persisted order. A non-2xx
			// answer makes the provider redeliver; fulfillment side-effect
			// failures (emails, PDF, events) never reach this path.
			h.logger.WithError(err).WithField("event_id", event.ID).
				Error("failed to process payment completed event")
			respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, models.WebhookAck{Received: true})
}

// verifyEvent authenticates the webhook payload. With a configured secret
// the provider signature is verified via the payment SDK; without one the
// event is rejected in production and accepted unverified in development
// (a local convenience, not a security default).
func (h *WebhookHandler) verifyEvent(c *gin.Context, payload []byte) (stripe.Event, bool) {
	if h.webhookSecret != "" {
		event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
		if err != nil {
			h.logger.WithError(err).Warn("webhook signature verification failed")
			c.JSON(http.StatusBadRequest, models.APIResponse{
				Success: false,
				Message: "invalid signature",
			})
			return stripe.Event{}, false
		}
		return event, true
	}

	if h.production {
		h.logger.Error("webhook received but STRIPE_WEBHOOK_SECRET is not configured")
		c.JSON(http.StatusInternalServerError, models.APIResponse{
			Success: false,
			Message: "webhook not configured",
		})
		return stripe.Event{}, false
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "malformed event payload",
		})
		return stripe.Event{}, false
	}
	return event, true
}

func customerEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerEmail != "" {
		return sess.CustomerEmail
	}
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.Metadata["customer_email"]
}
