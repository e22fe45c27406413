// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// DebriefDependencies defines the interface for coach feedback.
type DebriefDependencies interface {
	Debrief(ctx context.Context, userID string, outcome model.Outcome, note string) (string, error)
}

// DebriefHandler handles coach debrief requests.
type DebriefHandler struct {
	deps DebriefDependencies
}

// NewDebriefHandler creates a new debrief handler.
func NewDebriefHandler(deps DebriefDependencies) *DebriefHandler {
	return &DebriefHandler{deps: deps}
}

// debriefRequest mirrors the body for POST /coach/debrief.
type debriefRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note,omitempty"`
}

type debriefResponse struct {
	Message string `json:"message"`
}

// HandlePostDebrief handles POST /coach/debrief requests.
func (h *DebriefHandler) HandlePostDebrief(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req debriefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if !model.Outcome(req.Outcome).Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid outcome"))
		return
	}

	msg, err := h.deps.Debrief(r.Context(), userID, model.Outcome(req.Outcome), req.Note)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, debriefResponse{Message: msg})
}
