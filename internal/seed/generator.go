package seed

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/pkg/logger"
)

// Outcome distribution weights, roughly matching what a motivated user
// logs over two weeks: plenty of friendly chats, a few numbers, the
// occasional freeze.
const (
	outcomeDivisor = 100

	weightFriendly       = 30
	weightNotInterested  = 25
	weightConversation   = 20
	weightGotNumber      = 10
	weightDidNotApproach = 15
	// remainder: timer-only completion
)

// submission is one event bound to the user posting it.
type submission struct {
	UserID string
	Event  eventBody
}

// eventBody mirrors the POST /events request schema.
type eventBody struct {
	SubmissionID   string `json:"submission_id"`
	Kind           string `json:"kind"`
	Outcome        string `json:"outcome"`
	TimerStartedAt string `json:"timer_started_at,omitempty"`
	TimerCompleted bool   `json:"timer_completed,omitempty"`
}

func randomInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// generateJourneys creates a plausible activity history for every user:
// one to three events on most days, with a rest day roughly every
// fourth day to exercise streak resets.
func generateJourneys(ctx context.Context, cfg *Config, userIDs []string, stats *Stats) []submission {
	logger.Get().Info(ctx, "generating journeys",
		logger.Int("users", len(userIDs)), logger.Int("days", cfg.Days))

	var subs []submission
	for _, userID := range userIDs {
		for day := cfg.Days - 1; day >= 0; day-- {
			if randomInt(4) == 0 && day != 0 {
				continue // rest day
			}
			perDay := 1 + randomInt(3)
			for i := int64(0); i < perDay; i++ {
				subs = append(subs, submission{UserID: userID, Event: randomEvent()})
			}
		}
	}
	stats.EventsGenerated = len(subs)
	return subs
}

// randomEvent draws one event from the outcome distribution.
func randomEvent() eventBody {
	e := eventBody{SubmissionID: uuid.New().String()}

	roll := randomInt(outcomeDivisor)
	switch {
	case roll < weightFriendly:
		e.Kind = string(model.KindApproach)
		e.Outcome = string(model.OutcomeFriendly)
	case roll < weightFriendly+weightNotInterested:
		e.Kind = string(model.KindApproach)
		e.Outcome = string(model.OutcomeNotInterested)
	case roll < weightFriendly+weightNotInterested+weightConversation:
		e.Kind = string(model.KindApproach)
		e.Outcome = string(model.OutcomeConversationNoNumber)
	case roll < weightFriendly+weightNotInterested+weightConversation+weightGotNumber:
		e.Kind = string(model.KindApproach)
		e.Outcome = string(model.OutcomeGotNumber)
	case roll < weightFriendly+weightNotInterested+weightConversation+weightGotNumber+weightDidNotApproach:
		// A timer run that ended in a freeze.
		e.Kind = string(model.KindTimer)
		e.Outcome = string(model.OutcomeDidNotApproach)
		e.TimerCompleted = true
		e.TimerStartedAt = time.Now().UTC().Add(-90 * time.Second).Format(time.RFC3339)
	default:
		e.Kind = string(model.KindTimer)
		e.Outcome = string(model.OutcomeTimerCompleted)
		e.TimerCompleted = true
		e.TimerStartedAt = time.Now().UTC().Add(-90 * time.Second).Format(time.RFC3339)
	}
	return e
}
