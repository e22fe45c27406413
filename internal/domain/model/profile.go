package model

import "time"

// Profile is the per-user aggregate of approach activity. One row per
// user, created zeroed at onboarding and mutated only by the progress
// updater. Version supports optimistic concurrency on writes.
type Profile struct {
	UserID          string
	TotalApproaches int
	TimerRuns       int
	PastSuccesses   int
	PastRejections  int
	CurrentStreak   int
	LongestStreak   int
	// SuccessRate is derived: pastSuccesses / totalApproaches * 100,
	// zero while no approaches were logged. Always within [0,100].
	SuccessRate float64
	// LastApproachDate holds calendar-day granularity: the time of day
	// is stripped to local midnight. Nil until the first approach.
	LastApproachDate *time.Time
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewProfile returns a zeroed aggregate for a freshly onboarded user.
func NewProfile(userID string, now time.Time) Profile {
	return Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
