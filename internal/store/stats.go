package store

import (
	"math"

	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

// Stats summarizes the collection.
type Stats struct {
	Total          int             `json:"total"`
	Completed      int             `json:"completed"`
	Pending        int             `json:"pending"`
	CompletionRate int             `json:"completionRatePercent"`
	Priorities     []PriorityCount `json:"priorities"`
}

// PriorityCount holds a count for a priority level.
type PriorityCount struct {
	Priority task.Priority `json:"priority"`
	Count    int           `json:"count"`
}

// Stats computes totals and the rounded completion percentage.
func (s *Store) Stats() Stats {
	return Summarize(s.tasks)
}

// Summarize computes Stats for tasks.
func Summarize(tasks []*task.Task) Stats {
	counts := make(map[task.Priority]int, len(task.Priorities))
	st := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		}
		counts[t.Priority]++
	}
	st.Pending = st.Total - st.Completed
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) / float64(st.Total) * 100)) //nolint:mnd // percent
	}

	st.Priorities = make([]PriorityCount, 0, len(task.Priorities))
	for i := len(task.Priorities) - 1; i >= 0; i-- {
		p := task.Priorities[i]
		st.Priorities = append(st.Priorities, PriorityCount{Priority: p, Count: counts[p]})
	}
	return st
}
