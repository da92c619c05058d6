package handlers

import (
	"errors"
	"net/http"

	"github.com/xelth-com/finflowgo/internal/logging"
	"github.com/xelth-com/finflowgo/internal/middleware"
	"github.com/xelth-com/finflowgo/internal/store"
)

type validationResponse struct {
	Message string             `json:"message"`
	Errors  []store.FieldError `json:"errors"`
}

// respondStoreError maps store errors onto response status codes.
// Uncategorized errors are logged and replaced by fallback.
func (r *Router) respondStoreError(w http.ResponseWriter, req *http.Request, op string, err error, fallback string) {
	var (
		validation *store.ValidationError
		conflict   *store.ConflictError
		notFound   *store.NotFoundError
	)
	switch {
	case errors.Is(err, middleware.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, validationResponse{Message: "Invalid input", Errors: validation.Fields})
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, map[string]string{
			"message": conflict.Error(),
			"field":   conflict.Field,
		})
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	default:
		entry := r.log.WithField("path", req.URL.Path)
		if claims, idErr := middleware.IdentityFromContext(req.Context()); idErr == nil {
			entry = entry.WithField("userId", claims.Subject)
		}
		logging.LogError(entry, "handlers", op, nil, err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// userID resolves the caller; owner ids in request bodies are never consulted
func userID(req *http.Request) (string, error) {
	claims, err := middleware.IdentityFromContext(req.Context())
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
