// Package task defines the task model and its creation-time rules.
package task

import (
	"strings"
	"time"
)

// Task is a single to-do item.
type Task struct {
	ID        int64     `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Completed bool      `json:"completed" yaml:"completed"`
	Priority  Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// New builds a task from raw user input. The text is trimmed and must not be
// empty; priority is derived once with fn and never recomputed. A nil fn leaves
// the priority unset.
func New(id int64, text string, now time.Time, fn PriorityFunc) (*Task, error) {
	text = strings.TrimSpace(text)
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	t := &Task{
		ID:        id,
		Text:      text,
		CreatedAt: now,
	}
	if fn != nil {
		t.Priority = fn(text)
	}
	return t, nil
}

// Toggle flips the completion state.
func (t *Task) Toggle() {
	t.Completed = !t.Completed
}

// Clone returns a copy so callers cannot mutate stored tasks.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// IDSource hands out unique, monotonically increasing ids derived from the
// wall clock in milliseconds.
type IDSource struct {
	last int64
	now  func() time.Time
}

// NewIDSource creates an IDSource. A nil clock defaults to time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Observe records an existing id so later ids stay above it.
func (s *IDSource) Observe(id int64) {
	if id > s.last {
		s.last = id
	}
}

// Next returns a fresh id. When the clock has not moved past the previous id
// the id is bumped by one.
func (s *IDSource) Next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
