package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/apperr"
	"storefront-service/internal/health"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
	paypal   *services.PayPalService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *services.CheckoutService, paypal *services.PayPalService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, paypal: paypal}
}

// CreateSession creates a hosted card checkout session
// @Summary Create hosted checkout session
// @Description Creates a card checkout session and returns the redirect URL. The order itself is created later by the payment webhook.
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body services.SessionRequest true "Cart summary"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /api/v1/checkout/session [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req services.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	resp, err := h.checkout.CreateSession(c.Request.Context(), req)
	if err != nil {
		health.RecordPaymentOperation("stripe", "create_session", false)
		respondError(c, err)
		return
	}

	health.RecordPaymentOperation("stripe", "create_session", true)
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    resp,
	})
}

// CapturePayPal verifies and persists a completed wallet payment
// @Summary Capture a completed PayPal payment
// @Description Verifies the payment server-side with PayPal, then creates the order.
// @Tags checkout
// @Accept json
// @Produce json
// @Param request body services.CaptureRequest true "Capture payload"
// @Success 200 {object} models.CaptureResponse
// @Failure 400 {object} models.APIResponse
// @Failure 500 {object} models.APIResponse
// @Router /api/v1/checkout/paypal/capture [post]
func (h *CheckoutHandler) CapturePayPal(c *gin.Context) {
	var req services.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	order, err := h.paypal.Capture(c.Request.Context(), req)
	if err != nil {
		health.RecordPaymentOperation("paypal", "capture", false)
		respondError(c, err)
		return
	}

	health.RecordPaymentOperation("paypal", "capture", true)
	c.JSON(http.StatusOK, models.CaptureResponse{
		Success: true,
		OrderID: order.ID.String(),
	})
}
