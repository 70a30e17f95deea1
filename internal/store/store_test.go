package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/kv"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fixedClock returns a clock frozen at epoch so ids collide and must be bumped.
func fixedClock() func() time.Time {
	return func() time.Time { return epoch }
}

func newStore(t *testing.T, storage kv.Storage) *Store {
	t.Helper()
	return Open(storage, WithClock(fixedClock()))
}

// failingStorage rejects every write.
type failingStorage struct{ kv.Storage }

func (failingStorage) Set(string, string) error { return errors.New("disk full") }

func TestCreate_UniqueIDsInOrder(t *testing.T) {
	s := newStore(t, kv.NewMemory())

	texts := []string{"one", "two", "three", "four"}
	for _, text := range texts {
		_, err := s.Create(text)
		require.NoError(t, err)
	}

	tasks := s.List(All)
	require.Len(t, tasks, len(texts))
	seen := map[int64]bool{}
	for i, tk := range tasks {
		assert.Equal(t, texts[i], tk.Text)
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
		if i > 0 {
			assert.Greater(t, tk.ID, tasks[i-1].ID)
		}
	}
}

func TestCreate_Fields(t *testing.T) {
	s := newStore(t, kv.NewMemory())

	tk, err := s.Create("  urgent: file taxes  ")
	require.NoError(t, err)
	assert.Equal(t, "urgent: file taxes", tk.Text)
	assert.False(t, tk.Completed)
	assert.Equal(t, task.PriorityHigh, tk.Priority)
	assert.Equal(t, epoch, tk.CreatedAt)
}

func TestCreate_Priorities(t *testing.T) {
	s := newStore(t, kv.NewMemory())

	for text, want := range map[string]task.Priority{
		"urgent: file taxes":    task.PriorityHigh,
		"important: review doc": task.PriorityMedium,
		"buy milk":              task.PriorityLow,
	} {
		tk, err := s.Create(text)
		require.NoError(t, err)
		assert.Equal(t, want, tk.Priority, text)
	}
}

func TestCreate_EmptyTextRejected(t *testing.T) {
	storage := kv.NewMemory()
	s := newStore(t, storage)
	_, err := s.Create("keep")
	require.NoError(t, err)

	for _, text := range []string{"", "   "} {
		_, err := s.Create(text)
		require.Error(t, err)
		assert.True(t, clierr.HasCode(err, clierr.ValidationFailed))
	}
	assert.Equal(t, 1, s.Len())
}

func TestCreate_CustomPriorityFunc(t *testing.T) {
	s := Open(kv.NewMemory(), WithPriorityFunc(func(string) task.Priority { return task.PriorityMedium }))
	tk, err := s.Create("anything")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityMedium, tk.Priority)

	s = Open(kv.NewMemory(), WithPriorityFunc(nil))
	tk, err = s.Create("urgent")
	require.NoError(t, err)
	assert.Equal(t, task.PriorityNone, tk.Priority)
}

func TestToggle_Involution(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	tk, err := s.Create("write report")
	require.NoError(t, err)

	first, err := s.Toggle(tk.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)

	second, err := s.Toggle(tk.ID)
	require.NoError(t, err)
	assert.False(t, second.Completed)
}

func TestToggle_NotFound(t *testing.T) {
	s := newStore(t, kv.NewMemory())

	_, err := s.Toggle(12345)
	require.Error(t, err)
	assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
}

func TestDelete_Idempotent(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	a, _ := s.Create("a")
	b, _ := s.Create("b")

	assert.True(t, s.Delete(a.ID))
	assert.False(t, s.Delete(a.ID))
	assert.False(t, s.Delete(999))

	tasks := s.List(All)
	require.Len(t, tasks, 1)
	assert.Equal(t, b.ID, tasks[0].ID)
}

func TestList_FiltersPreserveOrder(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	texts := []string{"urgent a", "b", "important c", "urgent d", "e"}
	var ids []int64
	for _, text := range texts {
		tk, err := s.Create(text)
		require.NoError(t, err)
		ids = append(ids, tk.ID)
	}
	_, _ = s.Toggle(ids[1])
	_, _ = s.Toggle(ids[3])

	textsOf := func(tasks []*task.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, tk := range tasks {
			out = append(out, tk.Text)
		}
		return out
	}

	assert.Equal(t, texts, textsOf(s.List(All)))
	assert.Equal(t, []string{"b", "urgent d"}, textsOf(s.List(Completed)))
	assert.Equal(t, []string{"urgent a", "important c", "e"}, textsOf(s.List(Pending)))
	assert.Equal(t, []string{"urgent a", "urgent d"}, textsOf(s.List(ByPriority(task.PriorityHigh))))
	assert.Equal(t, []string{"b", "e"}, textsOf(s.List(ByPriority(task.PriorityLow))))
}

func TestList_ReturnsCopies(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	tk, _ := s.Create("a")

	listed := s.List(All)
	listed[0].Completed = true
	listed[0].Text = "mutated"

	got, err := s.Get(tk.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Equal(t, "a", got.Text)
}

func TestStats(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	assert.Equal(t, 0, s.Stats().Total)
	assert.Equal(t, 0, s.Stats().Completed)
	assert.Equal(t, 0, s.Stats().CompletionRate)

	a, _ := s.Create("urgent a")
	_, _ = s.Create("b")
	_, _ = s.Create("c")
	_, _ = s.Toggle(a.ID)

	st := s.Stats()
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 33, st.CompletionRate)
	assert.Equal(t, []PriorityCount{
		{Priority: task.PriorityHigh, Count: 1},
		{Priority: task.PriorityMedium, Count: 0},
		{Priority: task.PriorityLow, Count: 2},
	}, st.Priorities)

	_, _ = s.Create("d")
	_, _ = s.Toggle(s.List(All)[1].ID)
	assert.Equal(t, 50, s.Stats().CompletionRate)
}

func TestStats_RoundsToNearest(t *testing.T) {
	tasks := []*task.Task{{Completed: true}, {Completed: true}, {}}
	assert.Equal(t, 67, Summarize(tasks).CompletionRate)
}

func TestPersistence_RoundTrip(t *testing.T) {
	storage := kv.NewMemory()
	s := newStore(t, storage)
	a, _ := s.Create("urgent: file taxes")
	_, _ = s.Create("important: review doc")
	_, _ = s.Create("buy milk")
	_, _ = s.Toggle(a.ID)

	reloaded := newStore(t, storage)
	assert.Equal(t, s.List(All), reloaded.List(All))
}

func TestPersistence_NewIDsStayUniqueAfterReload(t *testing.T) {
	storage := kv.NewMemory()
	s := newStore(t, storage)
	a, _ := s.Create("a")

	reloaded := newStore(t, storage)
	b, err := reloaded.Create("b")
	require.NoError(t, err)
	assert.Greater(t, b.ID, a.ID)
}

func TestPersistence_WireFormat(t *testing.T) {
	storage := kv.NewMemory()
	s := newStore(t, storage)
	_, _ = s.Create("buy milk")

	raw, ok, err := storage.Get(Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		`[{"id":1772355600000,"text":"buy milk","completed":false,"priority":"low","createdAt":"2026-03-01T09:00:00Z"}]`,
		raw)
}

func TestPersistence_PriorityOmittedWhenUnset(t *testing.T) {
	storage := kv.NewMemory()
	s := Open(storage, WithClock(fixedClock()), WithPriorityFunc(nil))
	_, _ = s.Create("buy milk")

	raw, _, _ := storage.Get(Key)
	assert.NotContains(t, raw, "priority")
}

func TestOpen_FailsSoft(t *testing.T) {
	const at = `"createdAt":"2026-03-01T09:00:00Z"`
	tests := map[string]string{
		"not json":         "{{{",
		"wrong shape":      `{"id":1}`,
		"empty text":       `[{"id":1,"text":"  ",` + at + `}]`,
		"duplicate id":     `[{"id":1,"text":"a",` + at + `},{"id":1,"text":"b",` + at + `}]`,
		"null entry":       `[null]`,
		"wrong type":       `[{"id":"one","text":"a"}]`,
		"negative id":      `[{"id":-5,"text":"a",` + at + `}]`,
		"zero id":          `[{"id":0,"text":"b","priority":"low",` + at + `}]`,
		"unknown priority": `[{"id":1,"text":"a","priority":"urgent",` + at + `}]`,
		"missing created":  `[{"id":1,"text":"a","priority":"low"}]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			storage := kv.NewMemory()
			require.NoError(t, storage.Set(Key, raw))

			s := newStore(t, storage)
			assert.Equal(t, 0, s.Len())

			_, err := s.Create("fresh start")
			require.NoError(t, err)
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestOpen_LoadsValidSlot(t *testing.T) {
	storage := kv.NewMemory()
	require.NoError(t, storage.Set(Key, `[
		{"id":7,"text":"no priority","completed":true,"createdAt":"2026-03-01T09:00:00Z"},
		{"id":9,"text":"ranked","priority":"high","createdAt":"2026-03-01T09:05:00Z"}
	]`))

	s := newStore(t, storage)
	require.Equal(t, 2, s.Len())

	st := s.Stats()
	sum := 0
	for _, pc := range st.Priorities {
		sum += pc.Count
	}
	assert.Equal(t, 1, sum, "unset priority is not counted")
	assert.Len(t, s.List(ByPriority(task.PriorityHigh)), 1)
}

func TestOpen_AbsentSlot(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	assert.Empty(t, s.List(All))
}

func TestWriteFailuresAreSwallowed(t *testing.T) {
	s := newStore(t, failingStorage{kv.NewMemory()})

	tk, err := s.Create("still works")
	require.NoError(t, err)
	_, err = s.Toggle(tk.ID)
	require.NoError(t, err)
	assert.True(t, s.Delete(tk.ID))
}

func TestClearCompleted(t *testing.T) {
	storage := kv.NewMemory()
	s := newStore(t, storage)
	a, _ := s.Create("a")
	_, _ = s.Create("b")
	c, _ := s.Create("c")
	_, _ = s.Toggle(a.ID)
	_, _ = s.Toggle(c.ID)

	assert.Equal(t, 2, s.ClearCompleted())
	assert.Equal(t, 0, s.ClearCompleted())

	reloaded := newStore(t, storage)
	require.Equal(t, 1, reloaded.Len())
	assert.Equal(t, "b", reloaded.List(All)[0].Text)
}

func TestReload(t *testing.T) {
	storage := kv.NewMemory()
	a := newStore(t, storage)
	b := newStore(t, storage)

	_, _ = a.Create("written elsewhere")
	assert.Equal(t, 0, b.Len())

	b.Reload()
	assert.Equal(t, 1, b.Len())
}

func TestGet_NotFound(t *testing.T) {
	s := newStore(t, kv.NewMemory())
	_, err := s.Get(7)
	assert.True(t, clierr.HasCode(err, clierr.TaskNotFound))
}
