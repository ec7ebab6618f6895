package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

var (
	pralineBoxID = uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b002")
	caramelsID   = uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b003")
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestOrderService() (*OrderService, *repository.FixtureStore) {
	fixtures := repository.NewFixtureStore()
	return NewOrderService(fixtures.Orders(), fixtures.Products(), nil, testLogger()), fixtures
}

// recordingPublisher counts lifecycle events per subject.
type recordingPublisher struct {
	created       int
	paid          int
	statusChanged int
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.created++
	return nil
}

func (p *recordingPublisher) PublishOrderPaid(ctx context.Context, order *models.Order) error {
	p.paid++
	return nil
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order) error {
	p.statusChanged++
	return nil
}

func TestCreateOrder_ComputesTotalServerSide(t *testing.T) {
	svc, _ := newTestOrderService()

	// 2 x 24.90 + 1 x 18.50 = 68.30
	order, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items: []models.CheckoutItem{
			{ProductID: pralineBoxID, Quantity: 2},
			{ProductID: caramelsID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.RequireFromString("68.30")),
		"expected total 68.30, got %s", order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Praliné Box", order.Items[0].ProductName)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("24.90")))
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(CreateParams{CustomerEmail: "anna@example.com"})

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateOrder_MissingEmail(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(CreateParams{
		Items: []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: uuid.New(), Quantity: 1}},
	})

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateOrder_QuantityBelowOne(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 0}},
	})

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

// flakyOrderRepo accepts the header insert but fails the line insert, to
// exercise the compensating delete.
type flakyOrderRepo struct {
	repository.OrderRepository
	insertedID uuid.UUID
	deletedIDs []uuid.UUID
}

func (r *flakyOrderRepo) Insert(order *models.Order) error {
	r.insertedID = order.ID
	return nil
}

func (r *flakyOrderRepo) InsertItems(items []models.OrderItem) error {
	return errors.New("connection reset")
}

func (r *flakyOrderRepo) Delete(id uuid.UUID) error {
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func TestCreateOrder_FailedLineInsertRollsBackHeader(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	repo := &flakyOrderRepo{}
	svc := NewOrderService(repo, fixtures.Products(), nil, testLogger())

	_, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})

	var upstream *apperr.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Len(t, repo.deletedIDs, 1)
	assert.Equal(t, repo.insertedID, repo.deletedIDs[0])
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	svc, _ := newTestOrderService()

	_, err := svc.UpdateStatus(uuid.New(), "refunded")

	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateStatus_AnyStatusToAnyOther(t *testing.T) {
	svc, _ := newTestOrderService()

	order, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: caramelsID, Quantity: 1}},
	})
	require.NoError(t, err)

	// No transition graph: delivered straight back to pending is allowed.
	updated, err := svc.UpdateStatus(order.ID, models.OrderDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.Status)

	updated, err = svc.UpdateStatus(order.ID, models.OrderPending)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, updated.Status)
}

func TestDecrementStock_FlooredAtZeroAndBestEffort(t *testing.T) {
	svc, fixtures := newTestOrderService()

	svc.DecrementStock([]models.OrderItem{
		{ProductID: caramelsID, Quantity: 1000},
		{ProductID: uuid.New(), Quantity: 1}, // unknown product must not panic
	})

	product, err := fixtures.GetByID(caramelsID)
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
}

func TestLifecycleEventsPublished(t *testing.T) {
	fixtures := repository.NewFixtureStore()
	publisher := &recordingPublisher{}
	svc := NewOrderService(fixtures.Orders(), fixtures.Products(), publisher, testLogger())

	order, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.created)

	_, err = svc.UpdateStatus(order.ID, models.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, 1, publisher.statusChanged)
}

func TestSnapshot_LineAmounts(t *testing.T) {
	svc, _ := newTestOrderService()

	order, err := svc.Create(CreateParams{
		CustomerEmail: "anna@example.com",
		Items:         []models.CheckoutItem{{ProductID: pralineBoxID, Quantity: 3}},
	})
	require.NoError(t, err)

	snapshot := svc.Snapshot(order)
	require.Len(t, snapshot.Lines, 1)
	assert.True(t, snapshot.Lines[0].Amount.Equal(decimal.RequireFromString("74.70")))
	assert.Equal(t, order.CustomerEmail, snapshot.CustomerEmail)
}
