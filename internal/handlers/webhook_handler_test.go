package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"

	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var pralineBoxID = uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b002")

type noopRenderer struct{}

func (noopRenderer) Render(snapshot models.OrderSnapshot) ([]byte, error) {
	return []byte("%PDF-1.4 test"), nil
}

type noopMailer struct{}

func (noopMailer) SendOrderConfirmation(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	return nil
}

func (noopMailer) SendAdminOrderNotice(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newWebhookRouter(webhookSecret, environment string) (*gin.Engine, *repository.FixtureStore) {
	fixtures := repository.NewFixtureStore()
	orders := services.NewOrderService(fixtures.Orders(), fixtures.Products(), nil, quietLogger())
	fulfillment := services.NewFulfillmentService(orders, noopRenderer{}, noopMailer{}, nil, nil, quietLogger())

	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = webhookSecret
	cfg.App.Environment = environment

	handler := NewWebhookHandler(fulfillment, cfg, quietLogger())

	router := gin.New()
	router.POST("/api/v1/webhooks/stripe", handler.HandleStripe)
	return router, fixtures
}

func sessionCompletedPayload(t *testing.T, paymentRef string) []byte {
	t.Helper()
	items, err := json.Marshal([]models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 2}})
	if err != nil {
		t.Fatal(err)
	}
	payload := map[string]interface{}{
		"id": "evt_test_1",
		// ConstructEvent rejects events from a different API version.
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             paymentRef,
				"object":         "checkout.session",
				"customer_email": "anna@example.com",
				"metadata": map[string]string{
					"items": string(items),
				},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

// stripeSignature builds a Stripe-Signature header the SDK accepts.
func stripeSignature(secret string, payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleStripe_ValidSignatureTriggersFulfillment(t *testing.T) {
	const secret = "whsec_test"
	router, fixtures := newWebhookRouter(secret, "production")

	payload := sessionCompletedPayload(t, "cs_test_valid")
	w := postWebhook(router, payload, stripeSignature(secret, payload, time.Now()))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var ack models.WebhookAck
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("Failed to parse ack: %v", err)
	}
	if !ack.Received {
		t.Error("Expected received=true ack")
	}

	order, err := fixtures.Orders().GetByPaymentRef("cs_test_valid")
	if err != nil {
		t.Fatalf("Expected order to be created: %v", err)
	}
	if order.Status != models.OrderProcessing {
		t.Errorf("Expected processing status, got %s", order.Status)
	}
}

func TestHandleStripe_BadSignatureRejected(t *testing.T) {
	router, fixtures := newWebhookRouter("whsec_test", "production")

	payload := sessionCompletedPayload(t, "cs_test_forged")
	w := postWebhook(router, payload, stripeSignature("whsec_wrong", payload, time.Now()))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	if _, err := fixtures.Orders().GetByPaymentRef("cs_test_forged"); err == nil {
		t.Error("Expected no order for rejected event")
	}
}

func TestHandleStripe_MissingSignatureRejected(t *testing.T) {
	router, _ := newWebhookRouter("whsec_test", "production")

	w := postWebhook(router, sessionCompletedPayload(t, "cs_test_nosig"), "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestHandleStripe_NoSecretInProduction(t *testing.T) {
	router, _ := newWebhookRouter("", "production")

	w := postWebhook(router, sessionCompletedPayload(t, "cs_test_nosecret"), "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
}

func TestHandleStripe_NoSecretInDevelopmentAcceptsUnverified(t *testing.T) {
	router, fixtures := newWebhookRouter("", "development")

	w := postWebhook(router, sessionCompletedPayload(t, "cs_test_dev"), "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := fixtures.Orders().GetByPaymentRef("cs_test_dev"); err != nil {
		t.Errorf("Expected order to be created in dev mode: %v", err)
	}
}

func TestHandleStripe_UnrelatedEventAcknowledged(t *testing.T) {
	router, _ := newWebhookRouter("", "development")

	payload := []byte(`{"id":"evt_test_2","type":"invoice.created","data":{"object":{}}}`)
	w := postWebhook(router, payload, "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for ignored event type, got %d", w.Code)
	}
}

func TestHandleStripe_UnresolvableEventNotAcknowledged(t *testing.T) {
	// An event with no order reference and no cart metadata cannot be
	// fulfilled; a non-2xx answer keeps the provider redelivering.
	router, _ := newWebhookRouter("", "development")

	payload := []byte(`{"id":"evt_test_3","type":"checkout.session.completed","data":{"object":{"id":"cs_test_bare","object":"checkout.session"}}}`)
	w := postWebhook(router, payload, "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}
}

func TestHandleStripe_MissingDataEnvelopeRejected(t *testing.T) {
	// checkout.session.completed without a data field must be answered,
	// not crash the handler.
	router, _ := newWebhookRouter("", "development")

	payload := []byte(`{"id":"evt_test_4","type":"checkout.session.completed"}`)
	w := postWebhook(router, payload, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}
