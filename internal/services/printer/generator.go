package printer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/xelth-com/finflowgo/internal/finance"
	"github.com/xelth-com/finflowgo/internal/models"
)

// InvoiceLayout holds the fixed parts of a printed invoice
type InvoiceLayout struct {
	IssuerName string  `json:"issuerName"`
	Currency   string  `json:"currency"`   // printed before amounts; core PDF fonts cannot draw the rupee sign
	PaymentURI string  `json:"paymentUri"` // encoded as QR code when set
	MarginLeft float64 `json:"marginLeft"`
	MarginTop  float64 `json:"marginTop"`
}

// GenerateInvoicePDF renders an A4 invoice with its line items and an optional payment QR code
func GenerateInvoicePDF(inv *models.Invoice, layout InvoiceLayout) ([]byte, error) {
	if layout.Currency == "" {
		layout.Currency = "INR"
	}
	if layout.MarginLeft == 0 {
		layout.MarginLeft = 15
	}
	if layout.MarginTop == 0 {
		layout.MarginTop = 15
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(layout.MarginLeft, layout.MarginTop, layout.MarginLeft)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// A4 width minus both margins
	contentW := 210.0 - 2*layout.MarginLeft
	money := func(d decimal.Decimal) string {
		return layout.Currency + " " + d.StringFixed(2)
	}

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(contentW/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(contentW/2, 10, layout.IssuerName, "", 1, "R", false, 0, "")
	pdf.Ln(4)

	meta := [][2]string{
		{"Invoice No.", inv.InvoiceNumber},
		{"Bill To", inv.ClientName},
		{"Due Date", inv.DueDate.Format("02 Jan 2006")},
		{"Status", strings.ToUpper(string(inv.Status))},
	}
	for _, row := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(contentW-35, 6, row[1], "", 1, "L", false, 0, "")
	}
	if inv.Description != nil && *inv.Description != "" {
		pdf.Ln(2)
		pdf.MultiCell(contentW, 5, *inv.Description, "", "L", false)
	}
	pdf.Ln(6)

	// Items table
	cols := []float64{contentW * 0.5, contentW * 0.15, contentW * 0.15, contentW * 0.2}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Description", "Qty", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 8, h, "B", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	lines := make([]finance.LineItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		line := finance.LineItem{Description: item.Description, Quantity: item.Quantity, Rate: item.Rate}
		lines = append(lines, line)
		pdf.CellFormat(cols[0], 7, item.Description, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, item.Rate.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, line.Amount().StringFixed(2), "", 1, "R", false, 0, "")
	}
	if len(lines) == 0 {
		desc := "Services"
		if inv.Description != nil && *inv.Description != "" {
			desc = *inv.Description
		}
		pdf.CellFormat(cols[0], 7, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, "1", "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[2], 7, inv.Amount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 7, inv.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// Totals
	pdf.Ln(3)
	labelW := cols[0] + cols[1] + cols[2]
	if len(lines) > 0 {
		rate := decimal.Zero
		if inv.TaxRate.Valid {
			rate = inv.TaxRate.Decimal
		}
		totals := finance.CalculateInvoiceTotals(lines, rate)
		pdf.CellFormat(labelW, 6, "Subtotal", "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, money(totals.Subtotal), "", 1, "R", false, 0, "")
		pdf.CellFormat(labelW, 6, fmt.Sprintf("GST (%s%%)", rate.String()), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[3], 6, money(totals.TaxAmount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(labelW, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(cols[3], 8, money(inv.Amount), "T", 1, "R", false, 0, "")

	if layout.PaymentURI != "" {
		qrPng, err := qrcode.Encode(layout.PaymentURI, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encode payment qr: %w", err)
		}
		imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("payment_qr", imgOptions, bytes.NewReader(qrPng))

		qrSize := 40.0
		y := pdf.GetY() + 10
		pdf.ImageOptions("payment_qr", layout.MarginLeft, y, qrSize, qrSize, false, imgOptions, 0, "")
		pdf.SetXY(layout.MarginLeft, y+qrSize+1)
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(qrSize, 4, "Scan to pay via UPI", "", 1, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
