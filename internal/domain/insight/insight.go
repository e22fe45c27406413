// Package insight derives weekly coaching observations from a user's
// profile aggregate and recent event history.
//
// The generator is an explicit ordered rule list: each rule inspects the
// same activity snapshot and contributes at most one sentence. Keeping
// the rules in a slice makes the priority order and the clamp behavior
// auditable and testable per rule.
package insight

import (
	"fmt"
	"math"
	"time"

	"github.com/wingmate/wingmate/internal/domain/model"
)

// Window sizes and output bounds.
const (
	HistoryDays = 14 // event lookback handed to the generator
	recentDays  = 7  // sub-window the rules reason about

	minInsights = 2
	maxInsights = 4

	peakHourMinEvents = 2
	eveningHour       = 17
	afternoonHour     = 12
)

// Input is everything the generator reads: the profile counters, the
// last fourteen days of events (newest first), and the reference time.
type Input struct {
	Profile model.Profile
	Events  []model.Event
	Now     time.Time
}

// Rule contributes at most one observation to the weekly batch.
type Rule struct {
	Name  string
	Apply func(s Snapshot) (string, bool)
}

// Snapshot holds the derived counts the rules and the challenge picker
// share. Built once per generation.
type Snapshot struct {
	Profile model.Profile

	// Recent holds the last seven days of events, newest first.
	Recent []model.Event

	RecentApproaches     int // events submitted from the approach screen
	RecentRealApproaches int // events carrying a real approach outcome
	RecentTimerRuns      int // events submitted from the timer screen
	TimerOnlyCompletions int // completed timers that led to no real approach
	FreezingCount        int // completed timers with no outcome or a freeze

	PeakHour      int
	PeakHourCount int
}

// BuildSnapshot derives the shared counts from the generator input.
func BuildSnapshot(in Input) Snapshot {
	s := Snapshot{Profile: in.Profile}
	cutoff := in.Now.AddDate(0, 0, -recentDays)

	var hours [24]int
	for _, e := range in.Events {
		if e.CreatedAt.Before(cutoff) {
			continue
		}
		s.Recent = append(s.Recent, e)
		hours[e.CreatedAt.Hour()]++

		switch e.Kind {
		case model.KindApproach:
			s.RecentApproaches++
		case model.KindTimer:
			s.RecentTimerRuns++
		}
		if e.Outcome.Approach() {
			s.RecentRealApproaches++
		}
		if e.TimerCompleted && !e.Outcome.Approach() {
			s.TimerOnlyCompletions++
		}
		if e.TimerCompleted && (e.Outcome == model.OutcomeNone || e.Outcome == model.OutcomeDidNotApproach) {
			s.FreezingCount++
		}
	}

	// Modal hour; ties break toward the earliest hour of the day.
	for h, n := range hours {
		if n > s.PeakHourCount {
			s.PeakHour = h
			s.PeakHourCount = n
		}
	}
	return s
}

// Generic fallbacks injected when no rule fires.
var fallbackInsights = []string{
	"Every approach, even the ones that go nowhere, builds your confidence baseline.",
	"Small consistent reps beat rare heroic efforts. One conversation today is enough.",
}

// Rules is the ordered observation list. Order matters: when more than
// four rules fire, only the first four survive the clamp.
var Rules = []Rule{
	{
		Name: "freeze_without_follow_through",
		Apply: func(s Snapshot) (string, bool) {
			if s.TimerOnlyCompletions > 0 && s.RecentRealApproaches == 0 {
				return "You finished the approach timer but held back from starting a conversation. Treat the end of the countdown as your cue and open with a simple hello.", true
			}
			return "", false
		},
	},
	{
		Name: "timer_heavy_imbalance",
		Apply: func(s Snapshot) (string, bool) {
			if s.RecentApproaches > 0 && s.RecentTimerRuns > 2*s.RecentApproaches {
				return "You're running the timer a lot more often than you approach. Try committing to one real approach for every timer session this week.", true
			}
			return "", false
		},
	},
	{
		Name: "peak_hour_pattern",
		Apply: func(s Snapshot) (string, bool) {
			if s.PeakHourCount < peakHourMinEvents {
				return "", false
			}
			switch {
			case s.PeakHour >= eveningHour:
				return "Most of your activity happens in the evening. Plan your next approaches for after 5pm when your momentum is strongest.", true
			case s.PeakHour >= afternoonHour:
				return "Your activity clusters in the afternoon. Lunch spots and coffee runs suit you, so keep using that window.", true
			default:
				return "You're most active in the morning. Early momentum carries through the day, so keep starting yours with an approach.", true
			}
		},
	},
	{
		Name: "freezing_count",
		Apply: func(s Snapshot) (string, bool) {
			if s.FreezingCount > 0 {
				return fmt.Sprintf("You froze %d %s this week after completing the timer. That's normal. Each rep makes the next start easier.",
					s.FreezingCount, pluralTimes(s.FreezingCount)), true
			}
			return "", false
		},
	},
	{
		Name: "success_rate_band",
		Apply: func(s Snapshot) (string, bool) {
			if s.Profile.TotalApproaches == 0 {
				return "", false
			}
			rate := s.Profile.SuccessRate
			switch {
			case rate >= 50:
				return fmt.Sprintf("A %d%% success rate. Whatever you're doing is working, keep doing it.", int(math.Round(rate))), true
			case rate > 0 && rate < 30:
				return "Your success rate is still warming up. Focus on relaxed openers and let the outcome take care of itself.", true
			}
			// Rates between 30 and 50 intentionally get no message.
			return "", false
		},
	},
	{
		Name: "streak_state",
		Apply: func(s Snapshot) (string, bool) {
			if s.Profile.CurrentStreak > 0 {
				return fmt.Sprintf("You're on a %d-day approach streak. Keep it alive with one conversation today.", s.Profile.CurrentStreak), true
			}
			if s.Profile.TotalApproaches > 0 {
				return "Your streak reset. That happens to everyone. Start fresh with a single easy approach today.", true
			}
			return "", false
		},
	},
	{
		Name: "activity_floor",
		Apply: func(s Snapshot) (string, bool) {
			if len(s.Recent) > 0 {
				return "", false
			}
			if s.Profile.TotalApproaches == 0 {
				return "You're just getting started. The first approach is the hardest one, and it only takes one to begin.", true
			}
			return "It's been a quiet week. You've done this before, so pick one low-pressure moment and get back out there.", true
		},
	},
}

// Generate evaluates the rule list over the input and returns the
// clamped batch. The insights slice always has between two and four
// entries, in rule-evaluation order.
func Generate(in Input) model.InsightBatch {
	s := BuildSnapshot(in)

	var insights []string
	for _, r := range Rules {
		msg, ok := r.Apply(s)
		if !ok {
			continue
		}
		insights = append(insights, msg)
		if len(insights) == maxInsights {
			break
		}
	}
	if len(insights) < minInsights {
		insights = append(insights, fallbackInsights[len(insights):minInsights]...)
	}

	return model.InsightBatch{
		Insights:  insights,
		Challenge: Challenge(s),
	}
}

// Weekly challenge texts. ChallengeTwoAttempts is the onboarding-facing
// wording screens display verbatim.
const (
	ChallengeWarmUp       = "Warm-up challenge: complete the timer twice today, then say hi to the very next person you notice."
	ChallengeTwoAttempts  = "Aim for 2 attempts this week."
	ChallengeTimerFollow  = "Run your approach timer once today and follow it immediately with a real approach."
	ChallengeCafeApproach = "Café challenge: start one conversation at a coffee shop this week."
	ChallengeStreet       = "Street challenge: give one genuine compliment to a stranger this week."
)

// Challenge picks the single weekly challenge; first matching branch wins.
func Challenge(s Snapshot) string {
	switch {
	case s.FreezingCount >= 2:
		return ChallengeWarmUp
	case s.Profile.TotalApproaches < 3:
		return ChallengeTwoAttempts
	case s.RecentTimerRuns > 2*s.RecentApproaches:
		return ChallengeTimerFollow
	case s.Profile.TotalApproaches >= 3 && s.Profile.CurrentStreak > 0:
		return ChallengeCafeApproach
	default:
		return ChallengeStreet
	}
}

func pluralTimes(n int) string {
	if n == 1 {
		return "time"
	}
	return "times"
}
