// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// InsightDependencies defines the interface for insight reads.
type InsightDependencies interface {
	EnsureWeeklyInsights(ctx context.Context, userID string, force bool) (model.InsightBatch, error)
}

// InsightsHandler handles weekly insight requests.
type InsightsHandler struct {
	deps InsightDependencies
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(deps InsightDependencies) *InsightsHandler {
	return &InsightsHandler{deps: deps}
}

// HandleGetInsights handles GET /insights requests. Passing refresh=1
// bypasses the staleness gate and regenerates immediately.
func (h *InsightsHandler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}
	force := r.URL.Query().Get("refresh") == "1"
	batch, err := h.deps.EnsureWeeklyInsights(r.Context(), userID, force)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}
