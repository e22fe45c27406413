// Package cache keeps the most recent insight batch per user in Redis
// so the freshness gate usually skips the relational store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/pkg/logger"
	"github.com/wingmate/wingmate/pkg/metrics"
)

const (
	keyPrefix  = "wingmate:insights:latest:"
	defaultTTL = 8 * 24 * time.Hour // outlives the 7-day staleness window
)

// InsightCache is a best-effort layer: a nil cache, a nil client, or any
// Redis failure degrades to a miss and never surfaces to callers.
type InsightCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// Option applies a configuration option to the cache.
type Option func(*InsightCache)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *InsightCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(c *InsightCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an insight cache on an existing Redis client.
func New(rdb *redis.Client, opts ...Option) *InsightCache {
	c := &InsightCache{
		rdb:    rdb,
		ttl:    defaultTTL,
		logger: logger.Get().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// storedRecord is the wire shape kept in Redis.
type storedRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Insights    []string  `json:"insights"`
	Challenge   string    `json:"challenge"`
}

// Latest returns the cached record for a user, or ok=false on a miss.
func (c *InsightCache) Latest(ctx context.Context, userID string) (model.InsightRecord, bool) {
	if c == nil || c.rdb == nil {
		return model.InsightRecord{}, false
	}
	raw, err := c.rdb.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug(ctx, "insight cache read failed", logger.String("userID", userID), logger.Error(err))
		}
		metrics.RecordInsightCacheMiss()
		return model.InsightRecord{}, false
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.logger.Warn(ctx, "insight cache entry corrupt, dropping", logger.String("userID", userID), logger.Error(err))
		c.rdb.Del(ctx, keyPrefix+userID)
		metrics.RecordInsightCacheMiss()
		return model.InsightRecord{}, false
	}
	metrics.RecordInsightCacheHit()
	rec := model.InsightRecord{
		UserID:      stored.UserID,
		GeneratedAt: stored.GeneratedAt,
		Insights:    stored.Insights,
		Challenge:   stored.Challenge,
	}
	rec.ID, _ = parseID(stored.ID)
	return rec, true
}

// Store caches a freshly persisted record. Errors are logged, not returned.
func (c *InsightCache) Store(ctx context.Context, rec model.InsightRecord) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(storedRecord{
		ID:          rec.ID.String(),
		UserID:      rec.UserID,
		GeneratedAt: rec.GeneratedAt,
		Insights:    rec.Insights,
		Challenge:   rec.Challenge,
	})
	if err != nil {
		c.logger.Warn(ctx, "insight cache encode failed", logger.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, keyPrefix+rec.UserID, raw, c.ttl).Err(); err != nil {
		c.logger.Debug(ctx, "insight cache write failed", logger.String("userID", rec.UserID), logger.Error(err))
	}
}

func parseID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
