package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/finance"
	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/store"
)

// loanRequest is the wizard payload for both create and update
type loanRequest struct {
	Amount    *decimal.Decimal      `json:"amount" validate:"omitempty,gte=0"`
	Tenure    *int                  `json:"tenure" validate:"omitempty,gte=0,lte=360"`
	Purpose   *string               `json:"purpose" validate:"omitempty,max=500"`
	Documents []models.LoanDocument `json:"documents" validate:"omitempty,max=20"`
	Step      *int                  `json:"step" validate:"omitempty,min=1,max=3"`
	Action    string                `json:"action" validate:"omitempty,oneof=submit save_draft"`
	Status    *string               `json:"status" validate:"omitempty,oneof=draft submitted approved rejected disbursed"`
}

func (l loanRequest) input() store.LoanInput {
	in := store.LoanInput{
		Amount:       l.Amount,
		TenureMonths: l.Tenure,
		Purpose:      l.Purpose,
		Documents:    l.Documents,
		Step:         l.Step,
		Action:       store.LoanAction(l.Action),
	}
	if l.Status != nil {
		status := models.LoanStatus(*l.Status)
		in.Status = &status
	}
	return in
}

// createLoan starts a loan application
func (r *Router) createLoan(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createLoan", err, "Unauthorized")
		return
	}

	var body loanRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createLoan", err, "Failed to create loan application")
		return
	}

	loan, err := r.store.Loans.Create(req.Context(), uid, body.input())
	if err != nil {
		r.respondStoreError(w, req, "createLoan", err, "Failed to create loan application")
		return
	}
	respondJSON(w, http.StatusCreated, loan)
}

// listLoans returns the caller's applications, newest first
func (r *Router) listLoans(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "listLoans", err, "Unauthorized")
		return
	}

	loans, err := r.store.Loans.List(req.Context(), uid, store.ListFilter{Status: req.URL.Query().Get("status")})
	if err != nil {
		r.respondStoreError(w, req, "listLoans", err, "Failed to fetch loan applications")
		return
	}
	respondJSON(w, http.StatusOK, loans)
}

// updateLoan advances the wizard or applies a lifecycle transition
func (r *Router) updateLoan(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateLoan", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateLoan", err, "Failed to update loan application")
		return
	}

	var body loanRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "updateLoan", err, "Failed to update loan application")
		return
	}

	loan, err := r.store.Loans.Advance(req.Context(), uid, id, body.input())
	if err != nil {
		r.respondStoreError(w, req, "updateLoan", err, "Failed to update loan application")
		return
	}
	respondJSON(w, http.StatusOK, loan)
}

// calculateEMI returns the amortized monthly installment for ?principal=&rate=&tenure=
func (r *Router) calculateEMI(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	errs := &store.ValidationError{}

	principal, err := decimal.NewFromString(q.Get("principal"))
	if err != nil || !principal.IsPositive() {
		errs.Add("principal", "must be a positive number")
	}
	rate := finance.DefaultAnnualRate
	if v := q.Get("rate"); v != "" {
		if rate, err = decimal.NewFromString(v); err != nil || rate.IsNegative() {
			errs.Add("rate", "must be a non-negative number")
		}
	}
	tenure, err := strconv.Atoi(q.Get("tenure"))
	if err != nil || tenure <= 0 || tenure > 360 {
		errs.Add("tenure", "must be between 1 and 360 months")
	}
	if err := errs.OrNil(); err != nil {
		r.respondStoreError(w, req, "calculateEMI", err, "Failed to calculate EMI")
		return
	}

	breakdown, err := finance.CalculateEMI(principal, rate, tenure)
	if err != nil {
		r.respondStoreError(w, req, "calculateEMI", err, "Failed to calculate EMI")
		return
	}
	respondJSON(w, http.StatusOK, breakdown)
}
