// Package progress implements the streak and counter rules that advance
// a user's profile aggregate when an approach or timer event is logged.
//
// The functions here are pure: they take a profile snapshot and return
// the advanced copy. Persistence and conflict retry live in the app
// service; this package only encodes the rules.
package progress

import (
	"time"

	"github.com/wingmate/wingmate/internal/domain/model"
)

const percentScale = 100

// Apply advances a profile snapshot by one activity occurring at now.
//
// Streak rules apply only to approaches: a first-ever approach starts the
// streak at 1, a same-day repeat leaves it untouched, a next-day approach
// extends it, and any longer gap resets it to 1. Timer runs increment the
// timer counter only. The derived success rate is recomputed from the
// post-increment totals.
func Apply(p model.Profile, kind model.Kind, outcome model.Outcome, now time.Time) model.Profile {
	switch kind {
	case model.KindApproach:
		applyStreak(&p, now)
		p.TotalApproaches++
		if outcome.Success() {
			p.PastSuccesses++
		} else if outcome.Rejection() {
			p.PastRejections++
		}
	case model.KindTimer:
		p.TimerRuns++
	}
	p.SuccessRate = successRate(p.PastSuccesses, p.TotalApproaches)
	p.UpdatedAt = now
	return p
}

// applyStreak mutates the streak fields for an approach at now.
// LastApproachDate is set to today's midnight regardless of branch.
func applyStreak(p *model.Profile, now time.Time) {
	today := Midnight(now)
	switch {
	case p.LastApproachDate == nil:
		p.CurrentStreak = 1
	default:
		switch daysBetween(*p.LastApproachDate, today) {
		case 0:
			// Same-day repeat; no double increment.
		case 1:
			p.CurrentStreak++
		default:
			p.CurrentStreak = 1
		}
	}
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	p.LastApproachDate = &today
}

// Midnight normalizes t to local midnight of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}

// daysBetween returns the whole-day distance between two midnight-normalized
// timestamps. Rounding absorbs DST transitions inside the span.
func daysBetween(from, to time.Time) int {
	const day = 24 * time.Hour
	return int(to.Sub(from).Round(day) / day)
}

func successRate(successes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(successes) / float64(total) * percentScale
}
