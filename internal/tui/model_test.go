package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/kv"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

func shortSettings() timer.Settings {
	return timer.Settings{Focus: 3 * time.Second, ShortBreak: 2 * time.Second, LongBreak: 4 * time.Second}
}

func newTestModel(t *testing.T, texts ...string) (*Model, *store.Store) {
	t.Helper()
	st := store.Open(kv.NewMemory(), store.WithPriorityFunc(task.DefaultPriority))
	for _, text := range texts {
		_, err := st.Create(text)
		require.NoError(t, err)
	}
	m := New(st, shortSettings(), WithPlainHelp())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, st
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

// liveHandle returns the single tick registration the timer holds.
func liveHandle(t *testing.T, m *Model) *loopHandle {
	t.Helper()
	for _, h := range m.sched.live {
		if !h.stopped {
			return h
		}
	}
	t.Fatal("no live tick registration")
	return nil
}

func TestView_LoadingBeforeSize(t *testing.T) {
	st := store.Open(kv.NewMemory())
	m := New(st, shortSettings())
	assert.Equal(t, "Loading...", m.View())
}

func TestAddTask(t *testing.T) {
	m, st := newTestModel(t)

	press(m, "a", "urgent: file taxes", "enter")

	require.Equal(t, 1, st.Len())
	tasks := st.List(store.All)
	assert.Equal(t, "urgent: file taxes", tasks[0].Text)
	assert.Equal(t, task.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, viewList, m.view)
	assert.Contains(t, m.View(), "urgent: file taxes")
}

func TestAddTask_EmptyKeepsInputOpen(t *testing.T) {
	m, st := newTestModel(t)

	press(m, "a", "   ", "enter")

	assert.Equal(t, 0, st.Len())
	assert.Equal(t, viewAdd, m.view)
	require.Error(t, m.err)

	press(m, "esc")
	assert.Equal(t, viewList, m.view)
	assert.NoError(t, m.err)
}

func TestToggleSelected(t *testing.T) {
	m, st := newTestModel(t, "first", "second")

	press(m, "j", " ")

	tasks := st.List(store.All)
	assert.False(t, tasks[0].Completed)
	assert.True(t, tasks[1].Completed)
}

func TestDeleteWithConfirmation(t *testing.T) {
	m, st := newTestModel(t, "first", "second")

	press(m, "d")
	assert.Equal(t, viewConfirmDelete, m.view)
	assert.Contains(t, m.View(), "first")

	press(m, "n")
	assert.Equal(t, 2, st.Len())

	press(m, "d", "y")
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, "second", st.List(store.All)[0].Text)
}

func TestClearCompleted(t *testing.T) {
	m, st := newTestModel(t, "a", "b", "c")
	press(m, " ", "j", " ")

	press(m, "C", "y")

	assert.Equal(t, 1, st.Len())
	assert.Contains(t, m.notice, "Cleared 2")
}

func TestFilterCycle(t *testing.T) {
	m, _ := newTestModel(t, "open task", "done task")
	press(m, "j", " ")

	press(m, "f")
	assert.Equal(t, store.Pending, m.filter)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "open task", m.tasks[0].Text)

	press(m, "f")
	assert.Equal(t, store.Completed, m.filter)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "done task", m.tasks[0].Text)
}

func TestTimerKeys(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "3")
	assert.Equal(t, timer.LongBreak, m.timer.State().Mode)
	assert.Equal(t, 4, m.timer.State().RemainingSeconds)

	press(m, "s")
	assert.True(t, m.timer.State().Running)
	h := liveHandle(t, m)

	m.Update(loopTickMsg{h: h})
	assert.Equal(t, 3, m.timer.State().RemainingSeconds)

	press(m, "r")
	assert.False(t, m.timer.State().Running)
	assert.Equal(t, 4, m.timer.State().RemainingSeconds)
}

func TestStaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "s")
	h := liveHandle(t, m)
	press(m, "s") // pause

	_, cmd := m.Update(loopTickMsg{h: h})
	assert.Nil(t, cmd)
	st := m.timer.State()
	assert.False(t, st.Running)
	assert.Equal(t, 3, st.RemainingSeconds)
}

func TestSessionCompletionRecorded(t *testing.T) {
	st := store.Open(kv.NewMemory())
	log := activity.New(t.TempDir())
	m := New(st, shortSettings(), WithActivityLog(log))

	m.timer.Start()
	h := liveHandle(t, m)
	for range 3 {
		m.Update(loopTickMsg{h: h})
	}

	state := m.timer.State()
	assert.Equal(t, timer.ShortBreak, state.Mode)
	assert.False(t, state.Running)
	assert.Equal(t, 1, state.SessionsCompleted)
	assert.Contains(t, m.notice, "Focus complete")

	entries, err := log.Recent(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.ActionSession, entries[0].Action)
	assert.Equal(t, 3, entries[0].Seconds)
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	storage := kv.NewMemory()
	m := New(store.Open(storage), shortSettings())

	other := store.Open(storage)
	_, err := other.Create("written elsewhere")
	require.NoError(t, err)

	m.Update(ReloadMsg{})
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "written elsewhere", m.tasks[0].Text)
}

func TestHelpScreen(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "?")
	assert.Equal(t, viewHelp, m.view)
	assert.Contains(t, m.View(), "start/pause")

	press(m, "?")
	assert.Equal(t, viewList, m.view)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
