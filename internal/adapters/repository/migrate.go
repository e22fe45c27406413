package repository

import (
	"context"
	"fmt"
)

// Schema bootstrap statements, idempotent by construction. The event
// table is append-only; the profile table carries the version column the
// optimistic update conditions on.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id            TEXT PRIMARY KEY,
		total_approaches   INTEGER NOT NULL DEFAULT 0,
		timer_runs         INTEGER NOT NULL DEFAULT 0,
		past_successes     INTEGER NOT NULL DEFAULT 0,
		past_rejections    INTEGER NOT NULL DEFAULT 0,
		current_streak     INTEGER NOT NULL DEFAULT 0,
		longest_streak     INTEGER NOT NULL DEFAULT 0,
		success_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_approach_date TIMESTAMPTZ,
		version            BIGINT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id               UUID PRIMARY KEY,
		user_id          TEXT NOT NULL,
		kind             TEXT NOT NULL,
		outcome          TEXT NOT NULL DEFAULT '',
		timer_started_at TIMESTAMPTZ,
		timer_completed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_created
		ON events (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS insights (
		id           UUID PRIMARY KEY,
		user_id      TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL,
		insights     JSONB NOT NULL,
		challenge    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_insights_user_generated
		ON insights (user_id, generated_at DESC)`,
}

func (s *Postgres) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
