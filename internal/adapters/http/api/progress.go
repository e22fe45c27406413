// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/wingmate/wingmate/internal/domain/heatmap"
	"github.com/wingmate/wingmate/internal/domain/model"
)

// ProgressDependencies defines the interface for progress reads.
type ProgressDependencies interface {
	Profile(ctx context.Context, userID string) (model.Profile, error)
	ActivityHeatmap(ctx context.Context, userID string) []heatmap.Day
}

// ProgressHandler handles progress and heatmap requests.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleGetProgress handles GET /progress requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}
	p, err := h.deps.Profile(r.Context(), userID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// heatmapResponse wraps the seven-day activity view.
type heatmapResponse struct {
	Days []heatmap.Day `json:"days"`
}

// HandleGetHeatmap handles GET /progress/heatmap requests. The view is
// best-effort and never fails the screen.
func (h *ProgressHandler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, heatmapResponse{Days: h.deps.ActivityHeatmap(r.Context(), userID)})
}
