// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two activity types a screen can submit.
type Kind string

// Activity kinds.
const (
	KindApproach Kind = "approach"
	KindTimer    Kind = "timer"
)

// Valid reports whether k is a known activity kind.
func (k Kind) Valid() bool {
	return k == KindApproach || k == KindTimer
}

// Outcome records how an approach attempt or timer run ended.
// The empty string means no outcome was logged.
type Outcome string

// Known outcomes.
const (
	OutcomeNone                 Outcome = ""
	OutcomeTimerCompleted       Outcome = "timer_completed"
	OutcomeDidNotApproach       Outcome = "did_not_approach"
	OutcomeNotInterested        Outcome = "not_interested"
	OutcomeFriendly             Outcome = "friendly"
	OutcomeGotNumber            Outcome = "got_number"
	OutcomeConversationNoNumber Outcome = "conversation_no_number"
)

// Valid reports whether o is a known outcome (including none).
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeNone, OutcomeTimerCompleted, OutcomeDidNotApproach,
		OutcomeNotInterested, OutcomeFriendly, OutcomeGotNumber,
		OutcomeConversationNoNumber:
		return true
	}
	return false
}

// Success reports whether the outcome counts as a past success.
func (o Outcome) Success() bool {
	return o == OutcomeGotNumber || o == OutcomeFriendly
}

// Rejection reports whether the outcome counts as a past rejection.
func (o Outcome) Rejection() bool {
	return o == OutcomeNotInterested
}

// Approach reports whether the outcome describes a real approach, as
// opposed to a timer-only completion, a freeze, or no outcome at all.
func (o Outcome) Approach() bool {
	switch o {
	case OutcomeNotInterested, OutcomeFriendly, OutcomeGotNumber,
		OutcomeConversationNoNumber:
		return true
	}
	return false
}

// Event is one approach attempt or timer run. Events are append-only:
// created once by a screen action, never mutated or deleted.
type Event struct {
	ID             uuid.UUID
	UserID         string
	Kind           Kind
	Outcome        Outcome
	TimerStartedAt *time.Time
	TimerCompleted bool
	CreatedAt      time.Time
}
