// Package starters holds the static conversation-opener library screens
// browse while a user builds the nerve to approach.
package starters

import (
	"errors"
	"math/rand"
)

// Category groups openers by delivery style.
type Category string

// Opener categories.
const (
	CategoryDirect      Category = "direct"
	CategorySituational Category = "situational"
	CategoryPlayful     Category = "playful"
	CategoryQuestion    Category = "question"
)

// ErrUnknownCategory is returned for categories outside the library.
var ErrUnknownCategory = errors.New("unknown starter category")

var library = map[Category][]string{
	CategoryDirect: {
		"Hi, I know this is out of nowhere, but I saw you and had to say you have great style.",
		"Excuse me, I couldn't walk past without saying hello. I'm on a bit of a mission to be braver this month.",
		"Hey, quick honest moment: you caught my eye and I'd regret not saying hi.",
		"I have about twenty seconds of courage, so I'm using them to introduce myself.",
	},
	CategorySituational: {
		"That book looks interesting. Is it living up to the cover?",
		"You look like you know this place. What's actually worth ordering here?",
		"Is this line always this long, or did we both pick the worst possible time?",
		"I keep seeing people with that drink today. Is it as good as it looks?",
	},
	CategoryPlayful: {
		"Settle a debate for me: is it weird to talk to strangers, or weird that we all pretend not to see each other?",
		"On a scale of one to ten, how badly do I need to justify interrupting your day?",
		"I promised a friend I'd talk to one interesting-looking stranger today. You're the pick.",
		"Quick, act like we know each other. Okay, now we do. I'm introducing myself properly.",
	},
	CategoryQuestion: {
		"What's the best thing that's happened to you this week?",
		"If you had the afternoon completely free, what would you do with it?",
		"What's one place in this city everyone sleeps on?",
		"Coffee or tea? This is very important.",
	},
}

// Categories lists the library's categories in a stable order.
func Categories() []Category {
	return []Category{CategoryDirect, CategorySituational, CategoryPlayful, CategoryQuestion}
}

// All returns every opener in the library keyed by category. The result
// is a copy; callers may not mutate the library.
func All() map[Category][]string {
	out := make(map[Category][]string, len(library))
	for c, lines := range library {
		out[c] = append([]string(nil), lines...)
	}
	return out
}

// ForCategory returns the openers of one category, copied.
func ForCategory(c Category) ([]string, error) {
	lines, ok := library[c]
	if !ok {
		return nil, ErrUnknownCategory
	}
	return append([]string(nil), lines...), nil
}

// Random picks one opener from a category.
func Random(c Category) (string, error) {
	lines, ok := library[c]
	if !ok {
		return "", ErrUnknownCategory
	}
	return lines[rand.Intn(len(lines))], nil
}
