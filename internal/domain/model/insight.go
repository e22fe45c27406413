package model

import (
	"time"

	"github.com/google/uuid"
)

// InsightBatch is what the insight generator hands back to screens:
// between two and four observations plus a single weekly challenge.
type InsightBatch struct {
	Insights  []string `json:"insights"`
	Challenge string   `json:"challenge"`
}

// InsightRecord is one persisted insight batch. Records are immutable
// once written; newer batches supersede older ones by GeneratedAt.
type InsightRecord struct {
	ID          uuid.UUID
	UserID      string
	GeneratedAt time.Time
	Insights    []string
	Challenge   string
}

// Batch extracts the screen-facing shape from a stored record.
func (r InsightRecord) Batch() InsightBatch {
	return InsightBatch{Insights: r.Insights, Challenge: r.Challenge}
}

// Age returns the fractional day count since the record was generated.
func (r InsightRecord) Age(now time.Time) float64 {
	return now.Sub(r.GeneratedAt).Hours() / 24
}
