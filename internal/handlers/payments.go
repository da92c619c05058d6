package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/store"
)

type createPaymentRequest struct {
	InvoiceID   *uint           `json:"invoiceId" validate:"omitempty,gt=0"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
}

type updatePaymentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed"`
}

// createPayment generates a payment link and QR code for the amount
func (r *Router) createPayment(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createPayment", err, "Unauthorized")
		return
	}

	var body createPaymentRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createPayment", err, "Failed to create UPI payment")
		return
	}

	payment, err := r.store.Payments.Create(req.Context(), uid, store.PaymentInput{
		InvoiceID:   body.InvoiceID,
		Amount:      body.Amount,
		Description: body.Description,
	})
	if err != nil {
		r.respondStoreError(w, req, "createPayment", err, "Failed to create UPI payment")
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

// listPayments returns the caller's payment requests, newest first
func (r *Router) listPayments(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "listPayments", err, "Unauthorized")
		return
	}

	list, err := r.store.Payments.List(req.Context(), uid, store.ListFilter{Status: req.URL.Query().Get("status")})
	if err != nil {
		r.respondStoreError(w, req, "listPayments", err, "Failed to fetch UPI payments")
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// updatePayment records the settlement result of a payment request
func (r *Router) updatePayment(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "updatePayment", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "updatePayment", err, "Failed to update UPI payment")
		return
	}

	var body updatePaymentRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "updatePayment", err, "Failed to update UPI payment")
		return
	}

	payment, err := r.store.Payments.UpdateStatus(req.Context(), uid, id, models.PaymentStatus(body.Status))
	if err != nil {
		r.respondStoreError(w, req, "updatePayment", err, "Failed to update UPI payment")
		return
	}
	respondJSON(w, http.StatusOK, payment)
}
