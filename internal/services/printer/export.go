package printer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/xelth-com/finflowgo/internal/models"
)

const invoiceSheet = "Invoices"

var invoiceHeadings = []string{"Invoice No.", "Client", "Amount", "Status", "Due Date", "Description", "Created"}

// ExportInvoicesXLSX writes one row per invoice into a single-sheet workbook
func ExportInvoicesXLSX(invoices []models.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	for i, h := range invoiceHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(invoiceSheet, cell, h); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(invoiceSheet, 1, 1, bold); err != nil {
		return nil, err
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return nil, err
	}

	for i, inv := range invoices {
		row := i + 2
		desc := ""
		if inv.Description != nil {
			desc = *inv.Description
		}
		// amounts go in as float cells so spreadsheets can sum them; the value is already rounded to paise
		amount, _ := inv.Amount.Round(2).Float64()
		values := []any{
			inv.InvoiceNumber,
			inv.ClientName,
			amount,
			string(inv.Status),
			inv.DueDate.Format("2006-01-02"),
			desc,
			inv.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(invoiceSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
	}
	if len(invoices) > 0 {
		if err := f.SetCellStyle(invoiceSheet, "C2", fmt.Sprintf("C%d", len(invoices)+1), amountStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(invoiceSheet, "A", "B", 22); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
