package handlers

import (
	"net/http"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/store"
)

type createFilingRequest struct {
	FilingType string  `json:"filingType" validate:"required,max=50"`
	Period     string  `json:"period" validate:"required,len=7"`
	DueDate    *Date   `json:"dueDate" validate:"required"`
	Status     *string `json:"status" validate:"omitempty,oneof=pending filed overdue"`
}

type updateFilingRequest struct {
	FilingType *string `json:"filingType" validate:"omitempty,min=1,max=50"`
	Period     *string `json:"period" validate:"omitempty,len=7"`
	DueDate    *Date   `json:"dueDate"`
	Status     *string `json:"status" validate:"omitempty,oneof=pending filed overdue"`
}

func filingStatus(s *string) *models.FilingStatus {
	if s == nil {
		return nil
	}
	status := models.FilingStatus(*s)
	return &status
}

// createFiling records a GST return due
func (r *Router) createFiling(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createFiling", err, "Unauthorized")
		return
	}

	var body createFilingRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createFiling", err, "Failed to create GST filing")
		return
	}

	filing, err := r.store.Filings.Create(req.Context(), uid, store.FilingInput{
		FilingType: &body.FilingType,
		Period:     &body.Period,
		DueDate:    body.DueDate.ptr(),
		Status:     filingStatus(body.Status),
	})
	if err != nil {
		r.respondStoreError(w, req, "createFiling", err, "Failed to create GST filing")
		return
	}
	respondJSON(w, http.StatusCreated, filing)
}

// listFilings returns the caller's filings, soonest due first
func (r *Router) listFilings(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "listFilings", err, "Unauthorized")
		return
	}

	q := req.URL.Query()
	filings, err := r.store.Filings.List(req.Context(), uid, store.ListFilter{Status: q.Get("status"), Search: q.Get("search")})
	if err != nil {
		r.respondStoreError(w, req, "listFilings", err, "Failed to fetch GST filings")
		return
	}
	respondJSON(w, http.StatusOK, filings)
}

// updateFiling merges the provided fields; marking a filing filed stamps filedAt
func (r *Router) updateFiling(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateFiling", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "updateFiling", err, "Failed to update GST filing")
		return
	}

	var body updateFilingRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "updateFiling", err, "Failed to update GST filing")
		return
	}

	filing, err := r.store.Filings.Update(req.Context(), uid, id, store.FilingInput{
		FilingType: body.FilingType,
		Period:     body.Period,
		DueDate:    body.DueDate.ptr(),
		Status:     filingStatus(body.Status),
	})
	if err != nil {
		r.respondStoreError(w, req, "updateFiling", err, "Failed to update GST filing")
		return
	}
	respondJSON(w, http.StatusOK, filing)
}
