// Package repository defines the durable store contracts and the
// Postgres implementation behind them.
package repository

import (
	"context"
	"time"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// ProfileStore provides access to the per-user profile aggregate.
type ProfileStore interface {
	// CreateProfile inserts a zeroed aggregate. Creating an existing
	// profile is a no-op; onboarding retries must not reset counters.
	CreateProfile(ctx context.Context, p model.Profile) error

	// Profile returns the aggregate for a user.
	// Returns ErrNotFound when the user has no profile.
	Profile(ctx context.Context, userID string) (model.Profile, error)

	// UpdateProfile writes an advanced aggregate conditionally on the
	// version it was read at. Returns ErrConflict when a concurrent
	// writer advanced the row first.
	UpdateProfile(ctx context.Context, p model.Profile) error
}

// EventStore provides access to the append-only activity log.
type EventStore interface {
	// AppendEvent records one approach attempt or timer run.
	AppendEvent(ctx context.Context, e model.Event) error

	// EventsSince returns a user's events created at or after since,
	// newest first.
	EventsSince(ctx context.Context, userID string, since time.Time) ([]model.Event, error)
}

// InsightStore provides access to the insight history.
type InsightStore interface {
	// AppendInsight persists one immutable insight batch.
	AppendInsight(ctx context.Context, rec model.InsightRecord) error

	// LatestInsight returns the most recent record by generation time.
	// Returns ErrNotFound when no batch was ever generated.
	LatestInsight(ctx context.Context, userID string) (model.InsightRecord, error)
}

// Store bundles the three tables the service reads and writes.
type Store interface {
	ProfileStore
	EventStore
	InsightStore
}
