package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperr"
	"storefront-service/internal/clients/paypal"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type fakeGateway struct {
	status   string
	tokenErr error
}

func (g *fakeGateway) GetAccessToken(ctx context.Context) (string, error) {
	if g.tokenErr != nil {
		return "", g.tokenErr
	}
	return "test-token", nil
}

func (g *fakeGateway) GetOrder(ctx context.Context, accessToken, orderID string) (*paypal.OrderResponse, error) {
	return &paypal.OrderResponse{ID: orderID, Status: g.status}, nil
}

type recordingMailer struct {
	confirmations int
	adminNotices  int
	fail          bool
}

func (m *recordingMailer) SendOrderConfirmation(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	m.confirmations++
	if m.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (m *recordingMailer) SendAdminOrderNotice(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	m.adminNotices++
	if m.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func newTestPayPalService(gateway WalletGateway, mailer OrderMailer) (*PayPalService, *repository.FixtureStore) {
	fixtures := repository.NewFixtureStore()
	orders := NewOrderService(fixtures.Orders(), fixtures.Products(), nil, testLogger())
	return NewPayPalService(gateway, orders, mailer, testLogger()), fixtures
}

func TestCapture_CompletedPaymentCreatesProcessingOrder(t *testing.T) {
	mailer := &recordingMailer{}
	svc, fixtures := newTestPayPalService(&fakeGateway{status: paypal.StatusCompleted}, mailer)

	order, err := svc.Capture(context.Background(), CaptureRequest{
		PayPalOrderID: "5O190127TN364715T",
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: caramelsID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, models.PaymentPayPal, order.PaymentMethod)
	assert.Equal(t, "5O190127TN364715T", order.PaymentRef)
	assert.Equal(t, 1, mailer.confirmations)

	// Stock was decremented for the captured order.
	product, err := fixtures.GetByID(caramelsID)
	require.NoError(t, err)
	assert.Equal(t, 58, product.Stock)
}

func TestCapture_NonCompletedStatusPersistsNothing(t *testing.T) {
	mailer := &recordingMailer{}
	svc, fixtures := newTestPayPalService(&fakeGateway{status: "PAYER_ACTION_REQUIRED"}, mailer)

	_, err := svc.Capture(context.Background(), CaptureRequest{
		PayPalOrderID: "5O190127TN364715T",
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: caramelsID, Quantity: 1}},
	})

	var notPaid *apperr.PaymentNotCompletedError
	require.ErrorAs(t, err, &notPaid)
	assert.Equal(t, "PAYER_ACTION_REQUIRED", notPaid.Status)
	assert.Equal(t, 0, mailer.confirmations)

	orders, err := fixtures.Orders().ListAll()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCapture_EmailFailureDoesNotFailCapture(t *testing.T) {
	mailer := &recordingMailer{fail: true}
	svc, _ := newTestPayPalService(&fakeGateway{status: paypal.StatusCompleted}, mailer)

	order, err := svc.Capture(context.Background(), CaptureRequest{
		PayPalOrderID: "5O190127TN364715T",
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, 1, mailer.confirmations)
}

func TestCapture_MissingGatewayConfiguration(t *testing.T) {
	svc, _ := newTestPayPalService(nil, &recordingMailer{})

	_, err := svc.Capture(context.Background(), CaptureRequest{
		PayPalOrderID: "5O190127TN364715T",
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})

	var conf *apperr.ConfigurationError
	require.ErrorAs(t, err, &conf)
}

func TestCapture_TokenExchangeFailure(t *testing.T) {
	svc, _ := newTestPayPalService(&fakeGateway{tokenErr: errors.New("401")}, &recordingMailer{})

	_, err := svc.Capture(context.Background(), CaptureRequest{
		PayPalOrderID: "5O190127TN364715T",
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})

	var upstream *apperr.UpstreamError
	require.ErrorAs(t, err, &upstream)
}
