package handlers

import (
	"net/http"

	"github.com/xelth-com/finflowgo/internal/middleware"
)

// getAuthUser syncs the session identity onto the user record and returns it
func (r *Router) getAuthUser(w http.ResponseWriter, req *http.Request) {
	claims, err := middleware.IdentityFromContext(req.Context())
	if err != nil {
		r.respondStoreError(w, req, "getAuthUser", err, "Unauthorized")
		return
	}

	user, err := r.store.Users.Upsert(req.Context(), claims.Identity())
	if err != nil {
		r.respondStoreError(w, req, "getAuthUser", err, "Failed to fetch user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
