// Package heatmap buckets recent activity events into calendar days for
// the seven-day activity view.
package heatmap

import (
	"time"

	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/internal/domain/progress"
)

// Days is the fixed width of the activity window.
const Days = 7

// Day is one bucket of the weekly heatmap.
type Day struct {
	Date    time.Time `json:"date"`
	Count   int       `json:"count"`
	DayName string    `json:"day_name"`
}

// WindowStart returns the local midnight six days before now, the oldest
// instant included in the heatmap.
func WindowStart(now time.Time) time.Time {
	return progress.Midnight(now).AddDate(0, 0, -(Days - 1))
}

// BuildWeek returns exactly seven buckets, oldest first and ending on the
// calendar day of now. Events outside the window are ignored.
func BuildWeek(now time.Time, events []model.Event) []Day {
	start := WindowStart(now)
	week := make([]Day, Days)
	for i := range week {
		date := start.AddDate(0, 0, i)
		week[i] = Day{Date: date, DayName: date.Weekday().String()}
	}
	for _, e := range events {
		day := progress.Midnight(e.CreatedAt)
		if day.Before(start) || day.After(progress.Midnight(now)) {
			continue
		}
		idx := daysApart(start, day)
		if idx >= 0 && idx < Days {
			week[idx].Count++
		}
	}
	return week
}

func daysApart(from, to time.Time) int {
	const day = 24 * time.Hour
	return int(to.Sub(from).Round(day) / day)
}
