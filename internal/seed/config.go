// Package seed generates synthetic coaching traffic against a running
// service: onboarded users, two weeks of approach and timer events, and
// read-back checks on the derived screens.
package seed

import "time"

// Config holds the seed run parameters.
type Config struct {
	BaseURL    string
	AuthSecret string
	Users      int
	Days       int
	Workers    int
	Timeout    time.Duration
	Verbose    bool
}

// Stats tracks the results of a seed run.
type Stats struct {
	UsersOnboarded   int
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsDuplicate  int
	EventsFailed     int
	ChecksPassed     int
	ChecksFailed     int
	Duration         time.Duration
}
