package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/documents"
	"github.com/xelth-com/finflowgo/internal/store"
)

type createKycDocumentRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=pan aadhaar address_proof bank_statement gst_certificate incorporation_certificate"`
	FileName     string `json:"fileName" validate:"required,max=255"`
	FileURL      string `json:"fileUrl" validate:"required,max=2048"`
}

type reviewKycDocumentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

type uploadURLRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=pan aadhaar address_proof bank_statement gst_certificate incorporation_certificate"`
	FileName     string `json:"fileName" validate:"required,max=255"`
	ContentType  string `json:"contentType" validate:"omitempty,max=100"`
}

// createKycDocument records an uploaded document awaiting review
func (r *Router) createKycDocument(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createKycDocument", err, "Unauthorized")
		return
	}

	var body createKycDocumentRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createKycDocument", err, "Failed to upload document")
		return
	}

	doc, err := r.store.KYC.Create(req.Context(), uid, store.KycInput{
		DocumentType: models.KycDocumentType(body.DocumentType),
		FileName:     body.FileName,
		FileURL:      body.FileURL,
	})
	if err != nil {
		r.respondStoreError(w, req, "createKycDocument", err, "Failed to upload document")
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// listKycDocuments returns every upload, or with ?view=latest only the newest per type
func (r *Router) listKycDocuments(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "listKycDocuments", err, "Unauthorized")
		return
	}

	var docs []models.KycDocument
	if req.URL.Query().Get("view") == "latest" {
		docs, err = r.store.KYC.LatestByType(req.Context(), uid)
	} else {
		docs, err = r.store.KYC.List(req.Context(), uid, store.ListFilter{Status: req.URL.Query().Get("status")})
	}
	if err != nil {
		r.respondStoreError(w, req, "listKycDocuments", err, "Failed to fetch KYC documents")
		return
	}
	respondJSON(w, http.StatusOK, docs)
}

// reviewKycDocument approves or rejects a document and resyncs the user's KYC status
func (r *Router) reviewKycDocument(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "reviewKycDocument", err, "Unauthorized")
		return
	}
	id, err := pathID(req)
	if err != nil {
		r.respondStoreError(w, req, "reviewKycDocument", err, "Failed to review document")
		return
	}

	var body reviewKycDocumentRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "reviewKycDocument", err, "Failed to review document")
		return
	}

	doc, err := r.store.KYC.Review(req.Context(), uid, id, models.KycDocumentStatus(body.Status))
	if err != nil {
		r.respondStoreError(w, req, "reviewKycDocument", err, "Failed to review document")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

// getKycSummary reports verification progress
func (r *Router) getKycSummary(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "getKycSummary", err, "Unauthorized")
		return
	}

	summary, err := r.store.KYC.Summary(req.Context(), uid)
	if err != nil {
		r.respondStoreError(w, req, "getKycSummary", err, "Failed to fetch KYC summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// createUploadURL hands out an upload target for a KYC document file
func (r *Router) createUploadURL(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "createUploadURL", err, "Unauthorized")
		return
	}

	var body uploadURLRequest
	if err := r.decodeAndValidate(req, &body); err != nil {
		r.respondStoreError(w, req, "createUploadURL", err, "Failed to prepare upload")
		return
	}

	upload, err := r.uploads.SignUpload(req.Context(), documents.UploadRequest{
		OwnerID:      uid,
		DocumentType: body.DocumentType,
		FileName:     body.FileName,
		ContentType:  body.ContentType,
	})
	if err != nil {
		r.respondStoreError(w, req, "createUploadURL", err, "Failed to prepare upload")
		return
	}
	respondJSON(w, http.StatusOK, upload)
}

// uploadKey extracts the object key and checks that it lies in the caller's folder
func uploadKey(req *http.Request, uid string) (string, bool) {
	key := strings.TrimPrefix(req.URL.Path, "/uploads/")
	return key, documents.ValidKey(key) && strings.HasPrefix(key, documents.OwnerPrefix(uid))
}

// putUpload stores a file sent to a local upload URL
func (r *Router) putUpload(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "putUpload", err, "Unauthorized")
		return
	}
	key, ok := uploadKey(req, uid)
	if !ok {
		respondError(w, http.StatusNotFound, "upload target not found")
		return
	}

	n, err := r.local.Save(key, req.Body)
	if err != nil {
		if errors.Is(err, documents.ErrInvalidKey) {
			respondError(w, http.StatusNotFound, "upload target not found")
			return
		}
		r.respondStoreError(w, req, "putUpload", err, "Failed to store upload")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"objectKey": key, "size": n})
}

// getUpload serves a locally stored file back to its owner
func (r *Router) getUpload(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "getUpload", err, "Unauthorized")
		return
	}
	key, ok := uploadKey(req, uid)
	if !ok {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	path, err := r.local.Path(key)
	if err != nil {
		respondError(w, http.StatusNotFound, "file not found")
		return
	}
	http.ServeFile(w, req, path)
}
