package task

import (
	"strings"
)

// Priority is the optional urgency level of a task.
type Priority string

// Priority levels in ascending order.
const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priority levels, lowest first.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// PriorityFunc derives a priority from task text.
type PriorityFunc func(text string) Priority

// Default marker words for KeywordPriority.
var (
	DefaultHighKeywords   = []string{"urgent"}
	DefaultMediumKeywords = []string{"important"}
)

// KeywordPriority returns a PriorityFunc that scans text case-insensitively:
// any high keyword gives high, else any medium keyword gives medium, else low.
func KeywordPriority(high, medium []string) PriorityFunc {
	high = lowerAll(high)
	medium = lowerAll(medium)
	return func(text string) Priority {
		lower := strings.ToLower(text)
		if containsAny(lower, high) {
			return PriorityHigh
		}
		if containsAny(lower, medium) {
			return PriorityMedium
		}
		return PriorityLow
	}
}

// DefaultPriority is KeywordPriority with the default marker words.
var DefaultPriority = KeywordPriority(DefaultHighKeywords, DefaultMediumKeywords)

// ParsePriority converts user input into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if err := ValidatePriority(p); err != nil {
		return PriorityNone, err
	}
	return p, nil
}

// Rank returns the position of p in Priorities, or -1 when unset or unknown.
func (p Priority) Rank() int {
	for i, q := range Priorities {
		if q == p {
			return i
		}
	}
	return -1
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, strings.ToLower(strings.TrimSpace(w)))
	}
	return out
}
