// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate/wingmate/internal/adapters/cache"
	"github.com/wingmate/wingmate/internal/adapters/coach"
	"github.com/wingmate/wingmate/internal/adapters/repository"
	"github.com/wingmate/wingmate/internal/domain/dedupe"
	"github.com/wingmate/wingmate/internal/domain/heatmap"
	"github.com/wingmate/wingmate/internal/domain/insight"
	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/internal/domain/progress"
	"github.com/wingmate/wingmate/internal/domain/starters"
	"github.com/wingmate/wingmate/pkg/logger"
	"github.com/wingmate/wingmate/pkg/metrics"
)

// Defaults for the tunable knobs.
const (
	defaultDedupeSize      = 50000
	defaultProgressRetries = 3
	defaultStaleDays       = 7.0
	defaultCoachTimeout    = 30 * time.Second
)

// coachFallback is returned whenever the completion API cannot answer
// within the timeout. The screen never blocks on the model.
const coachFallback = "You showed up and that already counts. Take a breath, note one thing " +
	"that went well, and line up your next approach while the momentum is fresh."

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithInsightCache attaches a Redis-backed cache for the latest insight
// batch. Without it every freshness check reads the store.
func WithInsightCache(c *cache.InsightCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithCoach attaches the completion API client used for debriefs.
func WithCoach(c coach.Client) Option {
	return func(s *Service) {
		s.coach = c
	}
}

// WithDeduper overrides the submission-id tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		s.deduper = d
	}
}

// WithDedupeSize bounds how many submission ids the tracker remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithProgressRetries bounds how many times a conflicted progress round
// is retried before giving up.
func WithProgressRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.progressRetries = n
		}
	}
}

// WithStaleDays sets the insight staleness threshold in fractional days.
func WithStaleDays(days float64) Option {
	return func(s *Service) {
		if days > 0 {
			s.staleDays = days
		}
	}
}

// WithCoachTimeout bounds how long a debrief waits for the model.
func WithCoachTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.coachTimeout = d
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service implements the operations behind the coaching API.
type Service struct {
	store   repository.Store
	cache   *cache.InsightCache
	coach   coach.Client
	deduper dedupe.Deduper

	dedupeSize      int
	progressRetries int
	staleDays       float64
	coachTimeout    time.Duration

	now func() time.Time

	logger logger.Logger
}

// New constructs a Service. A store is required; cache and coach are
// optional and degrade gracefully when absent.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		dedupeSize:      defaultDedupeSize,
		progressRetries: defaultProgressRetries,
		staleDays:       defaultStaleDays,
		coachTimeout:    defaultCoachTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewTracker(dedupe.WithMaxSize(s.dedupeSize))
	}
	return s
}

// SeenAndRecord atomically checks whether a submission id was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes a submission id, allowing the client retry to land.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// CreateProfile inserts a zeroed aggregate for a freshly onboarded user.
// Repeating the call for an existing user changes nothing.
func (s *Service) CreateProfile(ctx context.Context, userID string) (model.Profile, error) {
	p := model.NewProfile(userID, s.now())
	if err := s.store.CreateProfile(ctx, p); err != nil {
		return model.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return s.store.Profile(ctx, userID)
}

// Profile returns the aggregate for the stats screen.
func (s *Service) Profile(ctx context.Context, userID string) (model.Profile, error) {
	return s.store.Profile(ctx, userID)
}

// RecordEvent appends one activity event and synchronously advances the
// profile aggregate. Store write errors propagate so the screen can show
// a failure notice.
func (s *Service) RecordEvent(ctx context.Context, e model.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.store.AppendEvent(ctx, e); err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	metrics.RecordEventRecorded()

	return s.UpdateProgress(ctx, e.UserID, e.Kind, e.Outcome)
}

// UpdateProgress runs the read-compute-write round for one activity.
//
// A missing or unreadable profile is logged and treated as a no-op: the
// event is already durable and the aggregate can be rebuilt. Version
// conflicts retry the whole round; write failures propagate.
func (s *Service) UpdateProgress(ctx context.Context, userID string, kind model.Kind, outcome model.Outcome) error {
	for attempt := 0; attempt < s.progressRetries; attempt++ {
		p, err := s.store.Profile(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn(ctx, "progress update skipped, profile missing", logger.String("userID", userID))
			} else {
				s.logger.Error(ctx, "progress update skipped, profile fetch failed",
					logger.String("userID", userID), logger.Error(err))
			}
			return nil
		}

		updated := progress.Apply(p, kind, outcome, s.now())
		err = s.store.UpdateProfile(ctx, updated)
		if err == nil {
			metrics.RecordProgressUpdate()
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("update progress: %w", err)
		}
		metrics.RecordProgressConflict()
		s.logger.Debug(ctx, "profile version conflict, retrying",
			logger.String("userID", userID), logger.Int("attempt", attempt+1))
	}
	metrics.RecordProgressRetryExhausted()
	return fmt.Errorf("update progress for %s: %w", userID, repository.ErrConflict)
}

// ActivityHeatmap returns the seven-day activity view. The heatmap is a
// best-effort read: store failures degrade to an empty slice.
func (s *Service) ActivityHeatmap(ctx context.Context, userID string) []heatmap.Day {
	now := s.now()
	events, err := s.store.EventsSince(ctx, userID, heatmap.WindowStart(now))
	if err != nil {
		s.logger.Warn(ctx, "heatmap degraded to empty", logger.String("userID", userID), logger.Error(err))
		metrics.RecordHeatmapDegradation()
		return []heatmap.Day{}
	}
	return heatmap.BuildWeek(now, events)
}

// GenerateWeeklyInsights builds and persists a fresh insight batch.
// Unlike the heatmap, any store failure here is fatal for the call: no
// partial batch is handed out un-persisted.
func (s *Service) GenerateWeeklyInsights(ctx context.Context, userID string) (model.InsightBatch, error) {
	p, err := s.store.Profile(ctx, userID)
	if err != nil {
		metrics.RecordInsightGenerationError()
		return model.InsightBatch{}, fmt.Errorf("generate insights: %w", err)
	}
	now := s.now()
	events, err := s.store.EventsSince(ctx, userID, now.AddDate(0, 0, -insight.HistoryDays))
	if err != nil {
		metrics.RecordInsightGenerationError()
		return model.InsightBatch{}, fmt.Errorf("generate insights: %w", err)
	}

	batch := insight.Generate(insight.Input{Profile: p, Events: events, Now: now})

	rec := model.InsightRecord{
		ID:          uuid.New(),
		UserID:      userID,
		GeneratedAt: now,
		Insights:    batch.Insights,
		Challenge:   batch.Challenge,
	}
	if err := s.store.AppendInsight(ctx, rec); err != nil {
		metrics.RecordInsightGenerationError()
		return model.InsightBatch{}, fmt.Errorf("persist insights: %w", err)
	}
	s.cache.Store(ctx, rec)
	metrics.RecordInsightGeneration()
	return batch, nil
}

// EnsureWeeklyInsights is the freshness gate: it reuses the latest
// stored batch while it is younger than the staleness threshold and
// regenerates otherwise. force bypasses the check entirely.
func (s *Service) EnsureWeeklyInsights(ctx context.Context, userID string, force bool) (model.InsightBatch, error) {
	if force {
		return s.GenerateWeeklyInsights(ctx, userID)
	}

	rec, ok := s.cache.Latest(ctx, userID)
	if !ok {
		var err error
		rec, err = s.store.LatestInsight(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return s.GenerateWeeklyInsights(ctx, userID)
		}
		if err != nil {
			return model.InsightBatch{}, fmt.Errorf("ensure insights: %w", err)
		}
	}

	if rec.Age(s.now()) >= s.staleDays {
		return s.GenerateWeeklyInsights(ctx, userID)
	}
	return rec.Batch(), nil
}

// Starters returns the opener library for one category, or the whole
// library when category is empty.
func (s *Service) Starters(category string) (map[starters.Category][]string, error) {
	if category == "" {
		return starters.All(), nil
	}
	lines, err := starters.ForCategory(starters.Category(category))
	if err != nil {
		return nil, err
	}
	return map[starters.Category][]string{starters.Category(category): lines}, nil
}

// RandomStarter draws one opener from a category.
func (s *Service) RandomStarter(category string) (string, error) {
	return starters.Random(starters.Category(category))
}

// Debrief asks the coach model for feedback on a logged approach. The
// call races the configured timeout; timeouts and API failures fall back
// to a canned encouragement instead of failing the screen.
func (s *Service) Debrief(ctx context.Context, userID string, outcome model.Outcome, note string) (string, error) {
	if s.coach == nil {
		return coachFallback, nil
	}

	// Profile context is nice-to-have; a zero profile still debriefs.
	p, err := s.store.Profile(ctx, userID)
	if err != nil {
		s.logger.Debug(ctx, "debrief proceeding without profile", logger.String("userID", userID), logger.Error(err))
		p = model.Profile{UserID: userID}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.coachTimeout)
	defer cancel()

	type result struct {
		msg string
		err error
	}
	ch := make(chan result, 1)
	start := s.now()
	metrics.RecordCoachRequest()
	go func() {
		msg, err := s.coach.Debrief(callCtx, coach.DebriefRequest{Profile: p, Outcome: outcome, Note: note})
		ch <- result{msg: msg, err: err}
	}()

	select {
	case res := <-ch:
		metrics.RecordCoachLatency(float64(time.Since(start).Milliseconds()))
		if res.err != nil {
			s.logger.Warn(ctx, "coach call failed, using fallback", logger.Error(res.err))
			metrics.RecordCoachFallback()
			return coachFallback, nil
		}
		return res.msg, nil
	case <-callCtx.Done():
		s.logger.Warn(ctx, "coach call timed out, using fallback",
			logger.String("userID", userID), logger.String("timeout", s.coachTimeout.String()))
		metrics.RecordCoachFallback()
		return coachFallback, nil
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"dedupeTracked":   s.deduper.Size(),
		"progressRetries": s.progressRetries,
		"staleDays":       s.staleDays,
		"coachEnabled":    s.coach != nil,
		"cacheEnabled":    s.cache != nil,
	}
}
