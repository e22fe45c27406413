// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/wingmate/wingmate/internal/domain/starters"
)

// StarterDependencies defines the interface for the opener library.
type StarterDependencies interface {
	Starters(category string) (map[starters.Category][]string, error)
	RandomStarter(category string) (string, error)
}

// StartersHandler handles conversation starter requests.
type StartersHandler struct {
	deps StarterDependencies
}

// NewStartersHandler creates a new starters handler.
func NewStartersHandler(deps StarterDependencies) *StartersHandler {
	return &StartersHandler{deps: deps}
}

// HandleGetStarters handles GET /starters requests. An optional
// category query narrows the library to one category.
func (h *StartersHandler) HandleGetStarters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	lib, err := h.deps.Starters(r.URL.Query().Get("category"))
	if err != nil {
		if errors.Is(err, starters.ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, lib)
}

type randomStarterResponse struct {
	Category string `json:"category"`
	Line     string `json:"line"`
}

// HandleGetRandomStarter handles GET /starters/random requests.
func (h *StartersHandler) HandleGetRandomStarter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	category := r.URL.Query().Get("category")
	line, err := h.deps.RandomStarter(category)
	if err != nil {
		if errors.Is(err, starters.ErrUnknownCategory) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, randomStarterResponse{Category: category, Line: line})
}
