package insight_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/wingmate/wingmate/internal/domain/insight"
	"github.com/wingmate/wingmate/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2026, 3, 14, 19, 0, 0, 0, time.Local)

func timerEvent(ts time.Time, completed bool, outcome model.Outcome) model.Event {
	return model.Event{
		ID:             uuid.New(),
		UserID:         "user-1",
		Kind:           model.KindTimer,
		Outcome:        outcome,
		TimerCompleted: completed,
		CreatedAt:      ts,
	}
}

func approachEvent(ts time.Time, outcome model.Outcome) model.Event {
	return model.Event{
		ID:        uuid.New(),
		UserID:    "user-1",
		Kind:      model.KindApproach,
		Outcome:   outcome,
		CreatedAt: ts,
	}
}

func containsSubstring(insights []string, substr string) bool {
	for _, s := range insights {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func TestGenerateBounds(t *testing.T) {
	Convey("Given any generator input", t, func() {
		inputs := []insight.Input{
			{Profile: model.Profile{UserID: "u"}, Now: now},
			{
				Profile: model.Profile{UserID: "u", TotalApproaches: 10, CurrentStreak: 3, SuccessRate: 60, TimerRuns: 9},
				Events: []model.Event{
					timerEvent(now.Add(-time.Hour), true, model.OutcomeNone),
					timerEvent(now.Add(-2*time.Hour), true, model.OutcomeDidNotApproach),
					timerEvent(now.Add(-26*time.Hour), true, model.OutcomeTimerCompleted),
					approachEvent(now.Add(-3*time.Hour), model.OutcomeGotNumber),
				},
				Now: now,
			},
		}

		Convey("Then the insight list length is always within [2,4]", func() {
			for _, in := range inputs {
				batch := insight.Generate(in)
				So(len(batch.Insights), ShouldBeGreaterThanOrEqualTo, 2)
				So(len(batch.Insights), ShouldBeLessThanOrEqualTo, 4)
				So(batch.Challenge, ShouldNotBeEmpty)
			}
		})
	})
}

func TestFirstTimerScenario(t *testing.T) {
	Convey("Given a profile with no approaches and no events", t, func() {
		batch := insight.Generate(insight.Input{
			Profile: model.Profile{UserID: "user-1"},
			Now:     now,
		})

		Convey("Then the first-timer encouragement is included", func() {
			So(containsSubstring(batch.Insights, "just getting started"), ShouldBeTrue)
		})

		Convey("And the challenge aims for two attempts", func() {
			So(batch.Challenge, ShouldEqual, insight.ChallengeTwoAttempts)
		})
	})
}

func TestFreezeRules(t *testing.T) {
	Convey("Given completed timers with no real approach in the window", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 5, TimerRuns: 4},
			Events: []model.Event{
				timerEvent(now.Add(-time.Hour), true, model.OutcomeNone),
				timerEvent(now.Add(-25*time.Hour), true, model.OutcomeDidNotApproach),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then the follow-through rule fires", func() {
			So(containsSubstring(batch.Insights, "held back"), ShouldBeTrue)
		})

		Convey("And the timer-imbalance rule stays silent", func() {
			So(containsSubstring(batch.Insights, "a lot more often"), ShouldBeFalse)
		})

		Convey("And two freezes select the warm-up challenge", func() {
			So(batch.Challenge, ShouldEqual, insight.ChallengeWarmUp)
		})
	})

	Convey("Given a single freeze among recent events", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 6, CurrentStreak: 1, SuccessRate: 33},
			Events: []model.Event{
				timerEvent(now.Add(-time.Hour), true, model.OutcomeDidNotApproach),
				approachEvent(now.Add(-2*time.Hour), model.OutcomeFriendly),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then the freeze count message uses the singular form", func() {
			So(containsSubstring(batch.Insights, "froze 1 time this week"), ShouldBeTrue)
		})
	})

	Convey("Given several freezes among recent events", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 6},
			Events: []model.Event{
				timerEvent(now.Add(-time.Hour), true, model.OutcomeNone),
				timerEvent(now.Add(-2*time.Hour), true, model.OutcomeDidNotApproach),
				timerEvent(now.Add(-3*time.Hour), true, model.OutcomeNone),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then the freeze count message uses the plural form", func() {
			So(containsSubstring(batch.Insights, "froze 3 times this week"), ShouldBeTrue)
		})
	})
}

func TestTimerImbalanceRule(t *testing.T) {
	Convey("Given many timer runs around a single approach", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 8, TimerRuns: 12, CurrentStreak: 1},
			Events: []model.Event{
				timerEvent(now.Add(-1*time.Hour), false, model.OutcomeNone),
				timerEvent(now.Add(-20*time.Hour), false, model.OutcomeNone),
				timerEvent(now.Add(-40*time.Hour), false, model.OutcomeNone),
				approachEvent(now.Add(-4*time.Hour), model.OutcomeConversationNoNumber),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then the imbalance rule fires instead of the follow-through rule", func() {
			So(containsSubstring(batch.Insights, "a lot more often"), ShouldBeTrue)
			So(containsSubstring(batch.Insights, "held back"), ShouldBeFalse)
		})
	})
}

func TestPeakHourRule(t *testing.T) {
	Convey("Given the modal activity hour", t, func() {
		cases := []struct {
			hour     int
			fragment string
		}{
			{19, "in the evening"},
			{13, "in the afternoon"},
			{9, "in the morning"},
		}
		for _, tc := range cases {
			day := time.Date(2026, 3, 14, tc.hour, 15, 0, 0, time.Local)
			in := insight.Input{
				Profile: model.Profile{UserID: "user-1", TotalApproaches: 4},
				Events: []model.Event{
					approachEvent(day, model.OutcomeFriendly),
					approachEvent(day.Add(-24*time.Hour), model.OutcomeNotInterested),
				},
				Now: now,
			}
			batch := insight.Generate(in)
			So(containsSubstring(batch.Insights, tc.fragment), ShouldBeTrue)
		}
	})

	Convey("Given fewer than two events in every hour", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 4},
			Events: []model.Event{
				approachEvent(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local), model.OutcomeFriendly),
				approachEvent(time.Date(2026, 3, 13, 14, 0, 0, 0, time.Local), model.OutcomeFriendly),
			},
			Now: now,
		}
		s := insight.BuildSnapshot(in)

		Convey("Then no peak hour qualifies", func() {
			So(s.PeakHourCount, ShouldBeLessThan, 2)
		})
	})

	Convey("Given two hours tied on event count", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1"},
			Events: []model.Event{
				approachEvent(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local), model.OutcomeFriendly),
				approachEvent(time.Date(2026, 3, 13, 9, 30, 0, 0, time.Local), model.OutcomeFriendly),
				approachEvent(time.Date(2026, 3, 14, 18, 0, 0, 0, time.Local), model.OutcomeFriendly),
				approachEvent(time.Date(2026, 3, 13, 18, 30, 0, 0, time.Local), model.OutcomeFriendly),
			},
			Now: now,
		}
		s := insight.BuildSnapshot(in)

		Convey("Then the earliest hour wins the tie", func() {
			So(s.PeakHour, ShouldEqual, 9)
			So(s.PeakHourCount, ShouldEqual, 2)
		})
	})
}

func TestSuccessRateBand(t *testing.T) {
	Convey("Given a success rate of fifty or more", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 8, PastSuccesses: 5, SuccessRate: 62.5},
			Now:     now,
		}
		batch := insight.Generate(in)

		Convey("Then the congratulatory message carries the rounded percentage", func() {
			So(containsSubstring(batch.Insights, "A 63% success rate"), ShouldBeTrue)
		})
	})

	Convey("Given a success rate below thirty", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 8, PastSuccesses: 1, SuccessRate: 12.5},
			Now:     now,
		}
		batch := insight.Generate(in)

		Convey("Then the constructive message fires", func() {
			So(containsSubstring(batch.Insights, "warming up"), ShouldBeTrue)
		})
	})

	Convey("Given a success rate inside the 30-50 band", t, func() {
		// The 30-50 band deliberately emits nothing.
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 10, PastSuccesses: 4, SuccessRate: 40},
			Now:     now,
		}
		batch := insight.Generate(in)

		Convey("Then no rate message is emitted", func() {
			So(containsSubstring(batch.Insights, "success rate"), ShouldBeFalse)
		})
	})

	Convey("Given a user with no approaches at all", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", SuccessRate: 0},
			Now:     now,
		}
		batch := insight.Generate(in)

		Convey("Then the rate band stays silent", func() {
			So(containsSubstring(batch.Insights, "success rate"), ShouldBeFalse)
		})
	})
}

func TestStreakRule(t *testing.T) {
	Convey("Given an active streak", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 9, CurrentStreak: 4},
			Now:     now,
		}
		batch := insight.Generate(in)
		So(containsSubstring(batch.Insights, "4-day approach streak"), ShouldBeTrue)
	})

	Convey("Given a broken streak with prior approaches", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 9, CurrentStreak: 0},
			Now:     now,
		}
		batch := insight.Generate(in)
		So(containsSubstring(batch.Insights, "streak reset"), ShouldBeTrue)
	})
}

func TestClampAndFallback(t *testing.T) {
	Convey("Given input where no rule can fire", t, func() {
		// A lone in-window event suppresses the activity floor, and the
		// zeroed profile suppresses every counter-driven rule.
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1"},
			Events: []model.Event{
				approachEvent(now.Add(-time.Hour), model.OutcomeNone),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then exactly the two generic fallbacks are returned", func() {
			So(batch.Insights, ShouldHaveLength, 2)
			So(containsSubstring(batch.Insights, "confidence baseline"), ShouldBeTrue)
			So(containsSubstring(batch.Insights, "consistent reps"), ShouldBeTrue)
		})
	})

	Convey("Given input where more than four rules fire", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 10, PastSuccesses: 6, SuccessRate: 60, CurrentStreak: 2, TimerRuns: 9},
			Events: []model.Event{
				timerEvent(now.Add(-10*time.Minute), true, model.OutcomeNone),
				timerEvent(now.Add(-30*time.Minute), true, model.OutcomeDidNotApproach),
				timerEvent(now.Add(-50*time.Minute), true, model.OutcomeNone),
			},
			Now: now,
		}
		batch := insight.Generate(in)

		Convey("Then only the first four in rule order survive", func() {
			So(batch.Insights, ShouldHaveLength, 4)
			So(batch.Insights[0], ShouldContainSubstring, "held back")
			// The streak message (rule six) is clamped away.
			So(containsSubstring(batch.Insights, "approach streak"), ShouldBeFalse)
		})
	})
}

func TestChallengeSelection(t *testing.T) {
	Convey("Given the challenge decision ladder", t, func() {
		Convey("When freezes dominate, the warm-up wins", func() {
			s := insight.Snapshot{FreezingCount: 2, Profile: model.Profile{TotalApproaches: 1}}
			So(insight.Challenge(s), ShouldEqual, insight.ChallengeWarmUp)
		})

		Convey("When the user has fewer than three approaches", func() {
			s := insight.Snapshot{Profile: model.Profile{TotalApproaches: 2}}
			So(insight.Challenge(s), ShouldEqual, insight.ChallengeTwoAttempts)
		})

		Convey("When timer runs dwarf approaches", func() {
			s := insight.Snapshot{RecentTimerRuns: 5, RecentApproaches: 1, Profile: model.Profile{TotalApproaches: 4}}
			So(insight.Challenge(s), ShouldEqual, insight.ChallengeTimerFollow)
		})

		Convey("When an experienced user holds a streak", func() {
			s := insight.Snapshot{Profile: model.Profile{TotalApproaches: 5, CurrentStreak: 2}}
			So(insight.Challenge(s), ShouldEqual, insight.ChallengeCafeApproach)
		})

		Convey("Otherwise the street challenge is the default", func() {
			s := insight.Snapshot{Profile: model.Profile{TotalApproaches: 5}}
			So(insight.Challenge(s), ShouldEqual, insight.ChallengeStreet)
		})
	})
}

func TestHistoryWindow(t *testing.T) {
	Convey("Given events older than the recent window", t, func() {
		in := insight.Input{
			Profile: model.Profile{UserID: "user-1", TotalApproaches: 3},
			Events: []model.Event{
				approachEvent(now.AddDate(0, 0, -10), model.OutcomeGotNumber),
				timerEvent(now.AddDate(0, 0, -12), true, model.OutcomeNone),
			},
			Now: now,
		}
		s := insight.BuildSnapshot(in)

		Convey("Then they are excluded from the recent counts", func() {
			So(s.Recent, ShouldBeEmpty)
			So(s.RecentApproaches, ShouldEqual, 0)
			So(s.FreezingCount, ShouldEqual, 0)
		})

		Convey("And the re-engagement floor message fires", func() {
			batch := insight.Generate(in)
			So(containsSubstring(batch.Insights, "quiet week"), ShouldBeTrue)
		})
	})
}
