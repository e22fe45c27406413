package seed

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate/wingmate/pkg/logger"
)

// Run onboards the configured number of users, replays their generated
// journeys, and spot-checks the derived screens afterwards.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}
	log := logger.Get().Named("seed")

	c := newClient(cfg)

	userIDs := make([]string, cfg.Users)
	for i := range userIDs {
		userIDs[i] = "seed-" + uuid.New().String()
		// Mint tokens up front; workers only read the cache afterwards.
		if _, err := c.token(userIDs[i]); err != nil {
			return stats, err
		}
	}

	for _, userID := range userIDs {
		status, err := c.do(ctx, http.MethodPost, "/onboarding/profile", userID, struct{}{}, nil)
		if err != nil {
			return stats, fmt.Errorf("onboard %s: %w", userID, err)
		}
		if status != http.StatusCreated {
			return stats, fmt.Errorf("onboard %s: unexpected status %d", userID, status)
		}
		stats.UsersOnboarded++
	}
	log.Info(ctx, "users onboarded", logger.Int("count", stats.UsersOnboarded))

	subs := generateJourneys(ctx, cfg, userIDs, stats)
	if err := submitAll(ctx, cfg, c, subs, stats); err != nil {
		return stats, err
	}

	verify(ctx, cfg, c, userIDs, stats)

	stats.Duration = time.Since(start)
	log.Info(ctx, "seed run finished",
		logger.Int("submitted", stats.EventsSubmitted),
		logger.Int("successful", stats.EventsSuccessful),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.String("duration", stats.Duration.String()))

	if stats.EventsFailed > 0 || stats.ChecksFailed > 0 {
		return stats, fmt.Errorf("seed run had %d failed submissions and %d failed checks",
			stats.EventsFailed, stats.ChecksFailed)
	}
	return stats, nil
}

// submitAll posts events concurrently through a worker pool.
func submitAll(ctx context.Context, cfg *Config, c *client, subs []submission, stats *Stats) error {
	log := logger.Get().Named("seed")
	log.Info(ctx, "submitting events", logger.Int("count", len(subs)), logger.Int("workers", cfg.Workers))

	var successful, duplicate, failed, submitted int64

	subChan := make(chan submission, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sub := range subChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&submitted, 1)
				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				status, err := c.do(ctx, http.MethodPost, "/events", sub.UserID, sub.Event, &ack)
				switch {
				case err != nil || status != http.StatusOK:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "submission failed",
							logger.String("userID", sub.UserID), logger.Int("status", status))
					}
				case ack.Duplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&successful, 1)
				}
			}
		}()
	}

	go func() {
		defer close(subChan)
		for _, sub := range subs {
			select {
			case <-ctx.Done():
				return
			case subChan <- sub:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsSuccessful = int(atomic.LoadInt64(&successful))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))
	return nil
}

// verify reads the derived screens back for every user and checks the
// shapes hold: counters advanced, seven heatmap buckets, a bounded
// insight batch with a challenge.
func verify(ctx context.Context, cfg *Config, c *client, userIDs []string, stats *Stats) {
	log := logger.Get().Named("seed")

	for _, userID := range userIDs {
		ok := true

		var prog struct {
			TotalApproaches int `json:"total_approaches"`
			TimerRuns       int `json:"timer_runs"`
		}
		status, err := c.do(ctx, http.MethodGet, "/progress", userID, nil, &prog)
		if err != nil || status != http.StatusOK || prog.TotalApproaches+prog.TimerRuns == 0 {
			ok = false
		}

		var heat struct {
			Days []struct {
				Count int `json:"count"`
			} `json:"days"`
		}
		status, err = c.do(ctx, http.MethodGet, "/progress/heatmap", userID, nil, &heat)
		if err != nil || status != http.StatusOK || len(heat.Days) != 7 {
			ok = false
		}

		var batch struct {
			Insights  []string `json:"insights"`
			Challenge string   `json:"challenge"`
		}
		status, err = c.do(ctx, http.MethodGet, "/insights", userID, nil, &batch)
		if err != nil || status != http.StatusOK ||
			len(batch.Insights) < 2 || len(batch.Insights) > 4 || batch.Challenge == "" {
			ok = false
		}

		if ok {
			stats.ChecksPassed++
		} else {
			stats.ChecksFailed++
			if cfg.Verbose {
				log.Warn(ctx, "read-back check failed", logger.String("userID", userID))
			}
		}
	}
}
