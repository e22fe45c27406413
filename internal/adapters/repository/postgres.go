package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/pkg/logger"
	"github.com/wingmate/wingmate/pkg/metrics"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

// NewPostgres connects a pool, verifies connectivity, and bootstraps the
// schema.
func NewPostgres(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	cfg := newOptions(opts...)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.maxConns > 0 {
		poolCfg.MaxConns = cfg.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Postgres{pool: pool, logger: cfg.logger}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

const profileColumns = `user_id, total_approaches, timer_runs, past_successes, past_rejections,
	current_streak, longest_streak, success_rate, last_approach_date, version, created_at, updated_at`

func (s *Postgres) CreateProfile(ctx context.Context, p model.Profile) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("create_profile", msSince(start)) }()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id) DO NOTHING`,
		p.UserID, p.TotalApproaches, p.TimerRuns, p.PastSuccesses, p.PastRejections,
		p.CurrentStreak, p.LongestStreak, p.SuccessRate, p.LastApproachDate,
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Postgres) Profile(ctx context.Context, userID string) (model.Profile, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("get_profile", msSince(start)) }()

	row := s.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE user_id = $1`, userID)

	var p model.Profile
	err := row.Scan(
		&p.UserID, &p.TotalApproaches, &p.TimerRuns, &p.PastSuccesses, &p.PastRejections,
		&p.CurrentStreak, &p.LongestStreak, &p.SuccessRate, &p.LastApproachDate,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return p, nil
}

// UpdateProfile is the optimistic half of the progress updater's
// read-compute-write round: the write only lands if the row still holds
// the version the caller read.
func (s *Postgres) UpdateProfile(ctx context.Context, p model.Profile) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("update_profile", msSince(start)) }()

	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles
		SET total_approaches = $2, timer_runs = $3, past_successes = $4,
			past_rejections = $5, current_streak = $6, longest_streak = $7,
			success_rate = $8, last_approach_date = $9,
			version = version + 1, updated_at = $10
		WHERE user_id = $1 AND version = $11`,
		p.UserID, p.TotalApproaches, p.TimerRuns, p.PastSuccesses, p.PastRejections,
		p.CurrentStreak, p.LongestStreak, p.SuccessRate, p.LastApproachDate,
		p.UpdatedAt, p.Version,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s at version %d: %w", p.UserID, p.Version, ErrConflict)
	}
	return nil
}

func (s *Postgres) AppendEvent(ctx context.Context, e model.Event) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append_event", msSince(start)) }()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (id, user_id, kind, outcome, timer_started_at, timer_completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, string(e.Kind), string(e.Outcome), e.TimerStartedAt, e.TimerCompleted, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Postgres) EventsSince(ctx context.Context, userID string, since time.Time) ([]model.Event, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("events_since", msSince(start)) }()

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, kind, outcome, timer_started_at, timer_completed, created_at
		FROM events
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var (
			e       model.Event
			kind    string
			outcome string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &kind, &outcome, &e.TimerStartedAt, &e.TimerCompleted, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = model.Kind(kind)
		e.Outcome = model.Outcome(outcome)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Postgres) AppendInsight(ctx context.Context, rec model.InsightRecord) error {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("append_insight", msSince(start)) }()

	payload, err := json.Marshal(rec.Insights)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO insights (id, user_id, generated_at, insights, challenge)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.GeneratedAt, payload, rec.Challenge,
	)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

func (s *Postgres) LatestInsight(ctx context.Context, userID string) (model.InsightRecord, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreLatency("latest_insight", msSince(start)) }()

	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, generated_at, insights, challenge
		FROM insights
		WHERE user_id = $1
		ORDER BY generated_at DESC
		LIMIT 1`, userID)

	var (
		rec     model.InsightRecord
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.GeneratedAt, &payload, &rec.Challenge)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.InsightRecord{}, fmt.Errorf("insights for %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.InsightRecord{}, fmt.Errorf("select latest insight: %w", err)
	}
	if err := json.Unmarshal(payload, &rec.Insights); err != nil {
		return model.InsightRecord{}, fmt.Errorf("decode insights: %w", err)
	}
	return rec, nil
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
