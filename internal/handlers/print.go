package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/services/printer"
)

// invoicePDF renders one invoice with a UPI QR code for the outstanding amount
func (r *Router) invoicePDF(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "invoicePDF", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "invoicePDF", err, "Failed to generate PDF")
		return
	}

	inv, err := r.store.Invoices.Get(req.Context(), uid, id)
	if err != nil {
		r.respondStoreError(w, req, "invoicePDF", err, "Failed to generate PDF")
		return
	}

	layout := printer.InvoiceLayout{IssuerName: r.issuer}
	if r.upi != nil && inv.Status != models.InvoiceStatusPaid {
		layout.PaymentURI = r.upi.Intent(inv.InvoiceNumber, payments.Request{
			Amount:      inv.Amount,
			Description: "Invoice " + inv.InvoiceNumber,
		})
	}

	pdfBytes, err := printer.GenerateInvoicePDF(inv, layout)
	if err != nil {
		r.respondStoreError(w, req, "invoicePDF", err, "Failed to generate PDF")
		return
	}

	// Set headers for download
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", inv.InvoiceNumber+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

// exportInvoices downloads the filtered invoice list as a spreadsheet
func (r *Router) exportInvoices(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "exportInvoices", err, "Unauthorized")
		return
	}

	invoices, err := r.store.Invoices.List(req.Context(), uid, invoiceFilter(req))
	if err != nil {
		r.respondStoreError(w, req, "exportInvoices", err, "Failed to export invoices")
		return
	}
	data, err := printer.ExportInvoicesXLSX(invoices)
	if err != nil {
		r.respondStoreError(w, req, "exportInvoices", err, "Failed to export invoices")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"invoices_%s.xlsx\"", time.Now().UTC().Format("20060102")))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
