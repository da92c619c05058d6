package printer

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/xelth-com/finflowgo/internal/models"
)

func sampleInvoice() *models.Invoice {
	desc := "Website redesign"
	return &models.Invoice{
		InvoiceNumber: "INV-2026-000042",
		ClientName:    "Acme Traders",
		Amount:        decimal.RequireFromString("6491.76"),
		Status:        models.InvoiceStatusPending,
		DueDate:       time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Description:   &desc,
		Items: []models.InvoiceItem{
			{Description: "Design", Quantity: decimal.NewFromInt(3), Rate: decimal.RequireFromString("1500.50")},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("999.99")},
		},
		TaxRate:   decimal.NewNullDecimal(decimal.NewFromInt(18)),
		CreatedAt: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestGenerateInvoicePDF(t *testing.T) {
	pdf, err := GenerateInvoicePDF(sampleInvoice(), InvoiceLayout{
		IssuerName: "FinFlow Demo Pvt Ltd",
		PaymentURI: "upi://pay?pa=shop@upi&am=6491.76",
	})
	if err != nil {
		t.Fatalf("GenerateInvoicePDF failed: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("Output is not a PDF")
	}
}

func TestGenerateInvoicePDFWithoutItems(t *testing.T) {
	inv := sampleInvoice()
	inv.Items = nil
	inv.TaxRate = decimal.NullDecimal{}

	pdf, err := GenerateInvoicePDF(inv, InvoiceLayout{})
	if err != nil {
		t.Fatalf("GenerateInvoicePDF failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Error("Expected non-empty PDF")
	}
}

func TestExportInvoicesXLSX(t *testing.T) {
	data, err := ExportInvoicesXLSX([]models.Invoice{*sampleInvoice()})
	if err != nil {
		t.Fatalf("ExportInvoicesXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Workbook does not open: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(invoiceSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one row, got %d", len(rows))
	}
	if rows[0][0] != "Invoice No." || rows[1][0] != "INV-2026-000042" || rows[1][1] != "Acme Traders" {
		t.Errorf("Unexpected rows: %v", rows)
	}
	raw, err := f.GetCellValue(invoiceSheet, "C2", excelize.Options{RawCellValue: true})
	if err != nil || raw != "6491.76" {
		t.Errorf("Amount cell = %q (%v)", raw, err)
	}
}
