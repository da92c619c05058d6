package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/store"
)

type invoiceItemRequest struct {
	Description string          `json:"description" validate:"required,max=200"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// createInvoiceRequest: amount may be omitted when items are given
type createInvoiceRequest struct {
	InvoiceNumber *string              `json:"invoiceNumber" validate:"omitempty,max=50"`
	ClientName    string               `json:"clientName" validate:"required,max=200"`
	Amount        *decimal.Decimal     `json:"amount" validate:"omitempty,gt=0"`
	Status        *string              `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate       *Date                `json:"dueDate" validate:"required"`
	Description   *string              `json:"description" validate:"omitempty,max=2000"`
	Items         []invoiceItemRequest `json:"items" validate:"omitempty,max=100,dive"`
	TaxRate       *decimal.Decimal     `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
}

type updateInvoiceRequest struct {
	InvoiceNumber *string              `json:"invoiceNumber" validate:"omitempty,min=1,max=50"`
	ClientName    *string              `json:"clientName" validate:"omitempty,min=1,max=200"`
	Amount        *decimal.Decimal     `json:"amount" validate:"omitempty,gt=0"`
	Status        *string              `json:"status" validate:"omitempty,oneof=pending paid overdue"`
	DueDate       *Date                `json:"dueDate"`
	Description   *string              `json:"description" validate:"omitempty,max=2000"`
	Items         []invoiceItemRequest `json:"items" validate:"omitempty,max=100,dive"`
	TaxRate       *decimal.Decimal     `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
}

func invoiceItems(items []invoiceItemRequest) []models.InvoiceItem {
	if items == nil {
		return nil
	}
	out := make([]models.InvoiceItem, 0, len(items))
	for _, it := range items {
		out = append(out, models.InvoiceItem{Description: it.Description, Quantity: it.Quantity, Rate: it.Rate})
	}
	return out
}

func invoiceStatus(s *string) *models.InvoiceStatus {
	if s == nil {
		return nil
	}
	status := models.InvoiceStatus(*s)
	return &status
}

// createInvoice stores a new invoice; duplicate numbers are a conflict
func (r *Router) createInvoice(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createInvoice", err, "Unauthorized")
		return
	}

	var body createInvoiceRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createInvoice", err, "Failed to create invoice")
		return
	}
	if body.Amount == nil && len(body.Items) == 0 {
		r.respondStoreError(w, req, "createInvoice", store.NewValidationError("amount", "is required when no items are given"), "Failed to create invoice")
		return
	}

	inv, err := r.store.Invoices.Create(req.Context(), uid, store.InvoiceInput{
		InvoiceNumber: body.InvoiceNumber,
		ClientName:    &body.ClientName,
		Amount:        body.Amount,
		Status:        invoiceStatus(body.Status),
		DueDate:       body.DueDate.ptr(),
		Description:   body.Description,
		Items:         invoiceItems(body.Items),
		TaxRate:       body.TaxRate,
	})
	if err != nil {
		r.respondStoreError(w, req, "createInvoice", err, "Failed to create invoice")
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

// listInvoices supports ?status= and ?search=
func (r *Router) listInvoices(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "listInvoices", err, "Unauthorized")
		return
	}

	invoices, err := r.store.Invoices.List(req.Context(), uid, invoiceFilter(req))
	if err != nil {
		r.respondStoreError(w, req, "listInvoices", err, "Failed to fetch invoices")
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func invoiceFilter(req *http.Request) store.ListFilter {
	q := req.URL.Query()
	return store.ListFilter{Status: q.Get("status"), Search: q.Get("search")}
}

// updateInvoice merges the provided fields
func (r *Router) updateInvoice(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateInvoice", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateInvoice", err, "Failed to update invoice")
		return
	}

	var body updateInvoiceRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "updateInvoice", err, "Failed to update invoice")
		return
	}

	inv, err := r.store.Invoices.Update(req.Context(), uid, id, store.InvoiceInput{
		InvoiceNumber: body.InvoiceNumber,
		ClientName:    body.ClientName,
		Amount:        body.Amount,
		Status:        invoiceStatus(body.Status),
		DueDate:       body.DueDate.ptr(),
		Description:   body.Description,
		Items:         invoiceItems(body.Items),
		TaxRate:       body.TaxRate,
	})
	if err != nil {
		r.respondStoreError(w, req, "updateInvoice", err, "Failed to update invoice")
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

// deleteInvoice permanently removes an invoice
func (r *Router) deleteInvoice(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "deleteInvoice", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "deleteInvoice", err, "Failed to delete invoice")
		return
	}

	if err := r.store.Invoices.Delete(req.Context(), uid, id); err != nil {
		r.respondStoreError(w, req, "deleteInvoice", err, "Failed to delete invoice")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Invoice deleted successfully",
		"id":      id,
	})
}
