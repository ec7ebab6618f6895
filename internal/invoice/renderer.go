// Package invoice renders order invoices as PDF documents. Render is a
// pure function over the order snapshot: no I/O, no clock reads beyond the
// snapshot itself, so the same snapshot always yields an equivalent
// document.
package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"storefront-service/internal/models"
)

// Renderer renders invoices for a named store.
type Renderer struct {
	storeName string
}

// NewRenderer creates a new invoice renderer
func NewRenderer(storeName string) *Renderer {
	return &Renderer{storeName: storeName}
}

// Render produces the PDF invoice for an order snapshot.
func (r *Renderer) Render(snapshot models.OrderSnapshot) ([]byte, error) {
	if len(snapshot.Lines) == 0 {
		return nil, fmt.Errorf("order snapshot has no lines")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", snapshot.OrderID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, r.storeName)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice for order %s", snapshot.OrderID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", snapshot.CreatedAt.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Customer: %s", snapshot.CustomerEmail))
	pdf.Ln(10)

	if snapshot.Shipping.Name != "" {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, "Ship to")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, snapshot.Shipping.Name)
		pdf.Ln(5)
		pdf.Cell(0, 6, snapshot.Shipping.Street)
		pdf.Ln(5)
		pdf.Cell(0, 6, fmt.Sprintf("%s %s, %s", snapshot.Shipping.PostalCode, snapshot.Shipping.City, snapshot.Shipping.Country))
		pdf.Ln(10)
	}

	// Line items table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 0, "R", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range snapshot.Lines {
		pdf.CellFormat(90, 8, line.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, "EUR "+line.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, "EUR "+line.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(145, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, "EUR "+snapshot.Total.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Paid via %s. Thank you for your order.", snapshot.PaymentMethod))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.Bytes(), nil
}
