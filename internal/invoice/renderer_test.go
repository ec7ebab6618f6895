package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/models"
)

func sampleSnapshot() models.OrderSnapshot {
	return models.OrderSnapshot{
		OrderID:       uuid.MustParse("3f1d6a2e-9c33-4a8b-b6a1-5a0d9e6f1c22"),
		CustomerEmail: "anna@example.com",
		Status:        models.OrderProcessing,
		Total:         decimal.RequireFromString("68.30"),
		PaymentMethod: models.PaymentCard,
		CreatedAt:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Shipping: models.ShippingAddress{
			Name:       "Anna Rossi",
			Street:     "Via Roma 12",
			City:       "Napoli",
			PostalCode: "80100",
			Country:    "Italy",
		},
		Lines: []models.SnapshotLine{
			{ProductName: "Praliné Box", Quantity: 2, UnitPrice: decimal.RequireFromString("24.90"), Amount: decimal.RequireFromString("49.80")},
			{ProductName: "Sea Salt Caramels", Quantity: 1, UnitPrice: decimal.RequireFromString("18.50"), Amount: decimal.RequireFromString("18.50")},
		},
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	r := NewRenderer("Maison Cacao")

	pdf, err := r.Render(sampleSnapshot())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("Expected non-empty PDF output")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("Expected PDF magic header, got %q", pdf[:8])
	}
}

func TestRender_EmptySnapshotRejected(t *testing.T) {
	r := NewRenderer("Maison Cacao")

	snapshot := sampleSnapshot()
	snapshot.Lines = nil

	if _, err := r.Render(snapshot); err == nil {
		t.Fatal("Expected error for snapshot without lines")
	}
}

func TestRender_WithoutShippingAddress(t *testing.T) {
	r := NewRenderer("Maison Cacao")

	snapshot := sampleSnapshot()
	snapshot.Shipping = models.ShippingAddress{}

	pdf, err := r.Render(snapshot)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("Expected non-empty PDF output")
	}
}
