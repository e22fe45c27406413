// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wingmate/wingmate/internal/adapters/repository"
	"github.com/wingmate/wingmate/internal/domain/heatmap"
	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/internal/domain/starters"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Idempotency tracking for client retries.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Write path.
	CreateProfile(ctx context.Context, userID string) (model.Profile, error)
	RecordEvent(ctx context.Context, e model.Event) error

	// Read path.
	Profile(ctx context.Context, userID string) (model.Profile, error)
	ActivityHeatmap(ctx context.Context, userID string) []heatmap.Day
	EnsureWeeklyInsights(ctx context.Context, userID string, force bool) (model.InsightBatch, error)
	Starters(category string) (map[starters.Category][]string, error)
	RandomStarter(category string) (string, error)

	// Coach feedback.
	Debrief(ctx context.Context, userID string, outcome model.Outcome, note string) (string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	eventsHandler   *EventsHandler
	profileHandler  *ProfileHandler
	progressHandler *ProgressHandler
	insightsHandler *InsightsHandler
	startersHandler *StartersHandler
	debriefHandler  *DebriefHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		profileHandler:  NewProfileHandler(deps),
		progressHandler: NewProgressHandler(deps),
		insightsHandler: NewInsightsHandler(deps),
		startersHandler: NewStartersHandler(deps),
		debriefHandler:  NewDebriefHandler(deps),
	}
}

// Register attaches all HTTP routes to mux. Everything except the health
// and stats endpoints sits behind bearer-token auth.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, auth *Authenticator) {
	protect := func(next http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(auth.Require(next), endpoint)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/events", protect(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("/onboarding/profile", protect(s.profileHandler.HandleCreateProfile, "onboarding_profile"))
	mux.HandleFunc("/progress", protect(s.progressHandler.HandleGetProgress, "progress"))
	mux.HandleFunc("/progress/heatmap", protect(s.progressHandler.HandleGetHeatmap, "progress_heatmap"))
	mux.HandleFunc("/insights", protect(s.insightsHandler.HandleGetInsights, "insights"))
	mux.HandleFunc("/starters", protect(s.startersHandler.HandleGetStarters, "starters"))
	mux.HandleFunc("/starters/random", protect(s.startersHandler.HandleGetRandomStarter, "starters_random"))
	mux.HandleFunc("/coach/debrief", protect(s.debriefHandler.HandlePostDebrief, "coach_debrief"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
