package handlers

import (
	"net/http"
)

// getDashboardMetrics computes the caller's dashboard summary
func (r *Router) getDashboardMetrics(w http.ResponseWriter, req *http.Request) {
	uid, err := userID(req)
	if err != nil {
		r.respondStoreError(w, req, "getDashboardMetrics", err, "Unauthorized")
		return
	}

	dashboard, err := r.metrics.Dashboard(req.Context(), uid)
	if err != nil {
		r.respondStoreError(w, req, "getDashboardMetrics", err, "Failed to fetch dashboard metrics")
		return
	}
	respondJSON(w, http.StatusOK, dashboard)
}
