// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// EventDependencies defines the interface for event recording dependencies.
type EventDependencies interface {
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	RecordEvent(ctx context.Context, e model.Event) error
}

// EventsHandler handles activity event requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the body for POST /events.
type eventRequest struct {
	SubmissionID   string `json:"submission_id"`
	Kind           string `json:"kind"`
	Outcome        string `json:"outcome"`
	TimerStartedAt string `json:"timer_started_at,omitempty"`
	TimerCompleted bool   `json:"timer_completed,omitempty"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.SubmissionID) == "":
		return errors.New("missing submission_id")
	case !model.Kind(e.Kind).Valid():
		return errors.New("invalid kind")
	case !model.Outcome(e.Outcome).Valid():
		return errors.New("invalid outcome")
	}
	if e.TimerStartedAt != "" {
		if _, err := time.Parse(time.RFC3339, e.TimerStartedAt); err != nil {
			return errors.New("invalid timer_started_at; must be RFC3339")
		}
	}
	return nil
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check for mobile retries; mark as seen first.
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	e := model.Event{
		ID:             uuid.New(),
		UserID:         userID,
		Kind:           model.Kind(req.Kind),
		Outcome:        model.Outcome(req.Outcome),
		TimerCompleted: req.TimerCompleted,
	}
	if req.TimerStartedAt != "" {
		ts, _ := time.Parse(time.RFC3339, req.TimerStartedAt)
		e.TimerStartedAt = &ts
	}

	if err := h.deps.RecordEvent(r.Context(), e); err != nil {
		// Roll back the seen mark so the client retry can land.
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "recorded", Duplicate: false})
}
