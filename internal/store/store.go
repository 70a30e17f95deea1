// Package store holds the ordered, persisted task collection.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/twiced-technology-gmbh/focusboard/internal/kv"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

// Key is the storage slot holding the serialized task list.
const Key = "tasks"

// Option configures a Store.
type Option func(*Store)

// WithPriorityFunc replaces the priority heuristic. nil disables priorities.
func WithPriorityFunc(fn task.PriorityFunc) Option {
	return func(s *Store) { s.priority = fn }
}

// WithClock replaces the clock used for ids and creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for swallowed persistence errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the in-memory task collection, written through to a kv.Storage
// after every mutation. It is not safe for concurrent use; one owner drives it.
type Store struct {
	storage  kv.Storage
	tasks    []*task.Task
	ids      *task.IDSource
	priority task.PriorityFunc
	now      func() time.Time
	logger   *slog.Logger
}

// Open loads the task collection from storage. An absent or malformed slot
// yields an empty collection; load problems are logged, never returned.
func Open(storage kv.Storage, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		priority: task.DefaultPriority,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ids = task.NewIDSource(s.now)
	s.load()
	return s
}

// Create appends a new task built from text and persists.
func (s *Store) Create(text string) (*task.Task, error) {
	if err := task.ValidateText(text); err != nil {
		return nil, err
	}
	t, err := task.New(s.ids.Next(), text, s.now(), s.priority)
	if err != nil {
		return nil, err
	}
	s.tasks = append(s.tasks, t)
	s.persist()
	s.logger.Debug("task created", "id", t.ID, "priority", string(t.Priority))
	return t.Clone(), nil
}

// Toggle flips the completion state of the task with id and persists.
func (s *Store) Toggle(id int64) (*task.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, task.NotFound(id)
	}
	t := s.tasks[i]
	t.Toggle()
	s.persist()
	s.logger.Debug("task toggled", "id", id, "completed", t.Completed)
	return t.Clone(), nil
}

// Delete removes the task with id. Unknown ids are ignored. It reports
// whether a task was removed.
func (s *Store) Delete(id int64) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persist()
	s.logger.Debug("task deleted", "id", id)
	return true
}

// ClearCompleted removes every completed task and returns how many were removed.
func (s *Store) ClearCompleted() int {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t *task.Task) bool { return t.Completed })
	removed := before - len(s.tasks)
	if removed > 0 {
		s.persist()
	}
	return removed
}

// Get returns a copy of the task with id.
func (s *Store) Get(id int64) (*task.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, task.NotFound(id)
	}
	return s.tasks[i].Clone(), nil
}

// List returns copies of the tasks matching f, in insertion order.
func (s *Store) List(f Filter) []*task.Task {
	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Reload re-reads the slot, replacing the in-memory collection. Used when
// another process has written the same storage.
func (s *Store) Reload() {
	s.tasks = nil
	s.load()
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.tasks, func(t *task.Task) bool { return t.ID == id })
}

func (s *Store) load() {
	raw, ok, err := s.storage.Get(Key)
	if err != nil {
		s.logger.Warn("reading tasks failed, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}

	tasks, err := decode(raw)
	if err != nil {
		s.logger.Warn("stored tasks are malformed, starting empty", "error", err)
		return
	}
	s.tasks = tasks
	for _, t := range tasks {
		s.ids.Observe(t.ID)
	}
}

// persist writes the whole collection. Failures are logged and swallowed.
func (s *Store) persist() {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		s.logger.Error("encoding tasks failed", "error", err)
		return
	}
	if err := s.storage.Set(Key, string(data)); err != nil {
		s.logger.Error("writing tasks failed", "error", err)
	}
}

// decode parses a stored slot. Entries that break the task invariants
// (non-positive or duplicate id, empty text, unknown priority, missing
// creation time) make the whole slot malformed.
func decode(raw string) ([]*task.Task, error) {
	var tasks []*task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}

	seen := make(map[int64]bool, len(tasks))
	for i, t := range tasks {
		if t == nil {
			return nil, fmt.Errorf("task %d is null", i)
		}
		if t.ID <= 0 {
			return nil, fmt.Errorf("task %d: invalid id %d", i, t.ID)
		}
		if err := task.ValidateText(t.Text); err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		if t.Priority != task.PriorityNone {
			if err := task.ValidatePriority(t.Priority); err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
		}
		if t.CreatedAt.IsZero() {
			return nil, fmt.Errorf("task %d: missing createdAt", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("duplicate task id %d", t.ID)
		}
		seen[t.ID] = true
	}
	return tasks, nil
}
