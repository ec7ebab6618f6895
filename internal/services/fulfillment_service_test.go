package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type fakeRenderer struct {
	fail  bool
	calls int
}

func (r *fakeRenderer) Render(snapshot models.OrderSnapshot) ([]byte, error) {
	r.calls++
	if r.fail {
		return nil, errors.New("font load failed")
	}
	return []byte("%PDF-1.4 test"), nil
}

type memoryDeduper struct {
	seen map[string]bool
}

func (d *memoryDeduper) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	return d.seen[eventID], nil
}

func (d *memoryDeduper) MarkProcessed(ctx context.Context, eventID string) error {
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	d.seen[eventID] = true
	return nil
}

type capturingMailer struct {
	confirmationPDFs [][]byte
	adminPDFs        [][]byte
}

func (m *capturingMailer) SendOrderConfirmation(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	m.confirmationPDFs = append(m.confirmationPDFs, invoicePDF)
	return nil
}

func (m *capturingMailer) SendAdminOrderNotice(ctx context.Context, snapshot models.OrderSnapshot, invoicePDF []byte) error {
	m.adminPDFs = append(m.adminPDFs, invoicePDF)
	return nil
}

func newTestFulfillment(renderer InvoiceRenderer, mailer OrderMailer, deduper EventDeduper) (*FulfillmentService, *repository.FixtureStore) {
	fixtures := repository.NewFixtureStore()
	orders := NewOrderService(fixtures.Orders(), fixtures.Products(), nil, testLogger())
	return NewFulfillmentService(orders, renderer, mailer, deduper, nil, testLogger()), fixtures
}

func cartMetadata(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal([]models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}})
	require.NoError(t, err)
	return string(raw)
}

func TestHandlePaymentCompleted_DeferredOrderFromMetadata(t *testing.T) {
	mailer := &capturingMailer{}
	svc, fixtures := newTestFulfillment(&fakeRenderer{}, mailer, nil)

	err := svc.HandlePaymentCompleted(context.Background(), PaymentCompleted{
		EventID:       "evt_1",
		PaymentRef:    "cs_test_a1",
		CustomerEmail: "anna@example.com",
		ItemsJSON:     cartMetadata(t),
	})
	require.NoError(t, err)

	order, err := fixtures.Orders().GetByPaymentRef("cs_test_a1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, order.Status)
	assert.Equal(t, models.PaymentCard, order.PaymentMethod)

	// Deferred creation also decrements stock.
	product, err := fixtures.GetByID(pralineBoxID)
	require.NoError(t, err)
	assert.Equal(t, 44, product.Stock)

	// Both emails went out with the invoice attached.
	require.Len(t, mailer.confirmationPDFs, 1)
	require.Len(t, mailer.adminPDFs, 1)
	assert.NotEmpty(t, mailer.confirmationPDFs[0])
}

func TestHandlePaymentCompleted_ExistingOrderMovedToProcessing(t *testing.T) {
	mailer := &capturingMailer{}
	svc, fixtures := newTestFulfillment(&fakeRenderer{}, mailer, nil)

	orders := NewOrderService(fixtures.Orders(), fixtures.Products(), nil, testLogger())
	order, err := orders.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: caramelsID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = svc.HandlePaymentCompleted(context.Background(), PaymentCompleted{
		EventID:    "evt_2",
		PaymentRef: "cs_test_b2",
		OrderID:    order.ID.String(),
	})
	require.NoError(t, err)

	updated, err := fixtures.Orders().GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.Status)
}

func TestHandlePaymentCompleted_RendererFailureStillSendsEmails(t *testing.T) {
	mailer := &capturingMailer{}
	svc, _ := newTestFulfillment(&fakeRenderer{fail: true}, mailer, nil)

	err := svc.HandlePaymentCompleted(context.Background(), PaymentCompleted{
		EventID:       "evt_3",
		PaymentRef:    "cs_test_c3",
		CustomerEmail: "anna@example.com",
		ItemsJSON:     cartMetadata(t),
	})
	require.NoError(t, err)

	require.Len(t, mailer.confirmationPDFs, 1)
	require.Len(t, mailer.adminPDFs, 1)
	assert.Nil(t, mailer.confirmationPDFs[0])
	assert.Nil(t, mailer.adminPDFs[0])
}

func TestHandlePaymentCompleted_DuplicateEventSkipped(t *testing.T) {
	mailer := &capturingMailer{}
	svc, _ := newTestFulfillment(&fakeRenderer{}, mailer, &memoryDeduper{})

	evt := PaymentCompleted{
		EventID:       "evt_4",
		PaymentRef:    "cs_test_d4",
		CustomerEmail: "anna@example.com",
		ItemsJSON:     cartMetadata(t),
	}
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), evt))
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), evt))

	assert.Len(t, mailer.confirmationPDFs, 1)
}

func TestHandlePaymentCompleted_NoReferenceNoMetadata(t *testing.T) {
	svc, _ := newTestFulfillment(&fakeRenderer{}, &capturingMailer{}, nil)

	err := svc.HandlePaymentCompleted(context.Background(), PaymentCompleted{
		EventID:    "evt_5",
		PaymentRef: "cs_test_e5",
	})
	require.Error(t, err)
}

func TestHandlePaymentCompleted_FailedEventStaysUnmarked(t *testing.T) {
	// A transient failure must not consume the event id, otherwise the
	// provider's redelivery would be treated as a duplicate and the order
	// lost for good.
	deduper := &memoryDeduper{}
	mailer := &capturingMailer{}
	svc, _ := newTestFulfillment(&fakeRenderer{}, mailer, deduper)

	bad := PaymentCompleted{
		EventID:       "evt_6",
		PaymentRef:    "cs_test_f6",
		CustomerEmail: "anna@example.com",
		ItemsJSON:     "not-json",
	}
	require.Error(t, svc.HandlePaymentCompleted(context.Background(), bad))
	assert.False(t, deduper.seen["evt_6"])

	// The redelivery with a fixed payload succeeds.
	good := bad
	good.ItemsJSON = cartMetadata(t)
	require.NoError(t, svc.HandlePaymentCompleted(context.Background(), good))
	assert.True(t, deduper.seen["evt_6"])
	assert.Len(t, mailer.confirmationPDFs, 1)
}

func TestHandlePaymentCompleted_PublishesOrderPaid(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	publisher := &recordingPublisher{}
	orders := NewOrderService(fixtures.Orders(), fixtures.Products(), publisher, testLogger())
	svc := NewFulfillmentService(orders, &fakeRenderer{}, &capturingMailer{}, nil, publisher, testLogger())

	err := svc.HandlePaymentCompleted(context.Background(), PaymentCompleted{
		EventID:       "evt_7",
		PaymentRef:    "cs_test_g7",
		CustomerEmail: "anna@example.com",
		ItemsJSON:     cartMetadata(t),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, publisher.created)
	assert.Equal(t, 1, publisher.paid)
}
