package store

import (
	"strings"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

// FilterKind selects which tasks a Filter keeps.
type FilterKind int

const (
	// FilterAll keeps every task.
	FilterAll FilterKind = iota
	// FilterCompleted keeps completed tasks.
	FilterCompleted
	// FilterPending keeps tasks not yet completed.
	FilterPending
	// FilterPriority keeps tasks with a given priority.
	FilterPriority
)

// Filter is a predicate over tasks.
type Filter struct {
	Kind     FilterKind
	Priority task.Priority // only for FilterPriority
}

// Convenience filters.
var (
	All       = Filter{Kind: FilterAll}
	Completed = Filter{Kind: FilterCompleted}
	Pending   = Filter{Kind: FilterPending}
)

// ByPriority keeps tasks with priority p.
func ByPriority(p task.Priority) Filter {
	return Filter{Kind: FilterPriority, Priority: p}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t *task.Task) bool {
	switch f.Kind {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterPriority:
		return t.Priority == f.Priority
	default:
		return true
	}
}

// String returns the canonical name accepted by ParseFilter.
func (f Filter) String() string {
	switch f.Kind {
	case FilterCompleted:
		return "completed"
	case FilterPending:
		return "pending"
	case FilterPriority:
		return "priority=" + string(f.Priority)
	default:
		return "all"
	}
}

// Next cycles through the filters shown in the TUI.
func (f Filter) Next() Filter {
	cycle := []Filter{All, Pending, Completed,
		ByPriority(task.PriorityHigh), ByPriority(task.PriorityMedium), ByPriority(task.PriorityLow)}
	for i, c := range cycle {
		if c == f {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return All
}

// ParseFilter converts user input into a Filter.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return All, nil
	case "completed", "done":
		return Completed, nil
	case "pending", "active", "todo":
		return Pending, nil
	}

	p := strings.TrimPrefix(s, "priority=")
	if pr, err := task.ParsePriority(p); err == nil {
		return ByPriority(pr), nil
	}
	return All, clierr.Newf(clierr.InvalidFilter, "invalid filter %q", s).
		WithDetails(map[string]any{
			"filter":  s,
			"allowed": []string{"all", "completed", "pending", "priority=low|medium|high"},
		})
}
