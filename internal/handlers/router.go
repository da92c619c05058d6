package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/finflowgo/internal/buildinfo"
	"github.com/xelth-com/finflowgo/internal/metrics"
	"github.com/xelth-com/finflowgo/internal/middleware"
	"github.com/xelth-com/finflowgo/internal/services/documents"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/store"
)

// Pinger reports database liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the collaborators the router serves
type Options struct {
	DB      Pinger
	Store   *store.Store
	Metrics *metrics.Aggregator
	Auth    *middleware.Authenticator
	Uploads documents.StorageProvider
	// LocalUploads, when set, receives PUT uploads and serves them under /uploads/
	LocalUploads *documents.LocalProvider
	// UPI builds the payment QR printed on invoice PDFs
	UPI        *payments.UPIProvider
	IssuerName string
	Log        logrus.FieldLogger
}

// Router wraps the mux router and its collaborators
type Router struct {
	*mux.Router
	db       Pinger
	store    *store.Store
	metrics  *metrics.Aggregator
	uploads  documents.StorageProvider
	local    *documents.LocalProvider
	upi      *payments.UPIProvider
	issuer   string
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(opts Options) *Router {
	r := &Router{
		Router:   mux.NewRouter(),
		db:       opts.DB,
		store:    opts.Store,
		metrics:  opts.Metrics,
		uploads:  opts.Uploads,
		local:    opts.LocalUploads,
		upi:      opts.UPI,
		issuer:   opts.IssuerName,
		validate: newValidator(),
		log:      opts.Log,
	}
	r.Use(middleware.RequestLogger(opts.Log))

	// Public endpoints
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.HandleFunc("/api/status", r.getStatus).Methods("GET")

	// Everything else under /api requires a session
	api := r.PathPrefix("/api").Subrouter()
	api.Use(opts.Auth.Middleware)

	api.HandleFunc("/auth/user", r.getAuthUser).Methods("GET")
	api.HandleFunc("/dashboard/metrics", r.getDashboardMetrics).Methods("GET")

	// Loan routes
	api.HandleFunc("/loan-applications/emi", r.calculateEMI).Methods("GET")
	api.HandleFunc("/loan-applications", r.createLoan).Methods("POST")
	api.HandleFunc("/loan-applications", r.listLoans).Methods("GET")
	api.HandleFunc("/loan-applications/{id:[0-9]+}", r.updateLoan).Methods("PUT")

	// Invoice routes
	api.HandleFunc("/invoices/export", r.exportInvoices).Methods("GET")
	api.HandleFunc("/invoices", r.createInvoice).Methods("POST")
	api.HandleFunc("/invoices", r.listInvoices).Methods("GET")
	api.HandleFunc("/invoices/{id:[0-9]+}", r.updateInvoice).Methods("PUT")
	api.HandleFunc("/invoices/{id:[0-9]+}", r.deleteInvoice).Methods("DELETE")
	api.HandleFunc("/invoices/{id:[0-9]+}/pdf", r.invoicePDF).Methods("GET")

	// UPI payment routes
	api.HandleFunc("/upi-payments", r.createPayment).Methods("POST")
	api.HandleFunc("/upi-payments", r.listPayments).Methods("GET")
	api.HandleFunc("/upi-payments/{id:[0-9]+}", r.updatePayment).Methods("PUT")

	// GST filing routes
	api.HandleFunc("/gst-filings", r.createFiling).Methods("POST")
	api.HandleFunc("/gst-filings", r.listFilings).Methods("GET")
	api.HandleFunc("/gst-filings/{id:[0-9]+}", r.updateFiling).Methods("PUT")

	// KYC routes
	api.HandleFunc("/kyc-documents/summary", r.getKycSummary).Methods("GET")
	api.HandleFunc("/kyc-documents/upload-url", r.createUploadURL).Methods("POST")
	api.HandleFunc("/kyc-documents", r.createKycDocument).Methods("POST")
	api.HandleFunc("/kyc-documents", r.listKycDocuments).Methods("GET")
	api.HandleFunc("/kyc-documents/{id:[0-9]+}", r.reviewKycDocument).Methods("PUT")

	if r.local != nil {
		uploads := r.PathPrefix("/uploads/").Subrouter()
		uploads.Use(opts.Auth.Middleware)
		uploads.PathPrefix("/").HandlerFunc(r.putUpload).Methods("PUT")
		uploads.PathPrefix("/").HandlerFunc(r.getUpload).Methods("GET")
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		r.log.WithError(err).Error("Health check: database unreachable")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "ok",
	})
}

// getStatus returns build information
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "running",
		"buildTime":  buildinfo.BuildTime,
		"commitTime": buildinfo.CommitTime,
		"commitHash": buildinfo.CommitHash,
		"startTime":  buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"message": message,
	})
}

// pathID parses the numeric {id} route variable
func pathID(req *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, store.NewValidationError("id", "must be a positive integer")
	}
	return uint(id), nil
}
