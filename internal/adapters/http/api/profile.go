// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// ProfileDependencies defines the interface for onboarding.
type ProfileDependencies interface {
	CreateProfile(ctx context.Context, userID string) (model.Profile, error)
}

// ProfileHandler handles onboarding requests.
type ProfileHandler struct {
	deps ProfileDependencies
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(deps ProfileDependencies) *ProfileHandler {
	return &ProfileHandler{deps: deps}
}

// profileResponse mirrors the read shape of the aggregate.
type profileResponse struct {
	UserID           string  `json:"user_id"`
	TotalApproaches  int     `json:"total_approaches"`
	TimerRuns        int     `json:"timer_runs"`
	PastSuccesses    int     `json:"past_successes"`
	PastRejections   int     `json:"past_rejections"`
	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"`
	SuccessRate      float64 `json:"success_rate"`
	LastApproachDate string  `json:"last_approach_date,omitempty"`
}

func toProfileResponse(p model.Profile) profileResponse {
	resp := profileResponse{
		UserID:          p.UserID,
		TotalApproaches: p.TotalApproaches,
		TimerRuns:       p.TimerRuns,
		PastSuccesses:   p.PastSuccesses,
		PastRejections:  p.PastRejections,
		CurrentStreak:   p.CurrentStreak,
		LongestStreak:   p.LongestStreak,
		SuccessRate:     p.SuccessRate,
	}
	if p.LastApproachDate != nil {
		resp.LastApproachDate = p.LastApproachDate.Format(time.DateOnly)
	}
	return resp
}

// HandleCreateProfile handles POST /onboarding/profile requests.
// Repeating the call is safe; an existing aggregate is returned as-is.
func (h *ProfileHandler) HandleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", ErrUnauthorized)
		return
	}
	p, err := h.deps.CreateProfile(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p))
}
