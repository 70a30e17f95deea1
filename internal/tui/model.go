// Package tui implements the focusboard terminal UI: a task list next to a
// pomodoro timer.
package tui

import (
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewAdd
	viewHelp
	viewConfirmDelete
	viewConfirmClear
)

const (
	keyEsc = "esc"

	maxTaskText = 200
	maxBarWidth = 60
)

// ReloadMsg is sent by the file watcher when the task data changed on disk.
type ReloadMsg struct{}

// Option configures a Model.
type Option func(*Model)

// WithActivityLog records task changes and completed sessions to l.
func WithActivityLog(l *activity.Log) Option {
	return func(m *Model) { m.log = l }
}

// WithLogger sets the logger passed down to the timer.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithFilter sets the initial list filter.
func WithFilter(f store.Filter) Option {
	return func(m *Model) { m.filter = f }
}

// WithPlainHelp renders the help screen without color.
func WithPlainHelp() Option {
	return func(m *Model) { m.plain = true }
}

// Model is the top-level bubbletea model.
type Model struct {
	store  *store.Store
	timer  *timer.Timer
	sched  *loopScheduler
	log    *activity.Log
	logger *slog.Logger
	keys   keyMap

	filter store.Filter
	tasks  []*task.Task
	cursor int
	offset int // first visible row
	view   view
	width  int
	height int
	err    error
	notice string
	plain  bool

	input    textinput.Model
	bar      progress.Model
	shortKey help.Model
	help     string

	deleteID   int64
	deleteText string
	clearCount int
}

// New creates a Model over st with a timer configured by settings.
func New(st *store.Store, settings timer.Settings, opts ...Option) *Model {
	m := &Model{
		store:  st,
		sched:  &loopScheduler{},
		logger: slog.Default(),
		keys:   defaultKeys(),
		filter: store.All,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.timer = timer.New(settings, m.sched,
		timer.OnComplete(m.sessionDone),
		timer.WithLogger(m.logger))

	m.input = textinput.New()
	m.input.Placeholder = "What needs doing?"
	m.input.CharLimit = maxTaskText
	m.bar = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	m.shortKey = help.New()

	m.refresh()
	return m
}

// Timer exposes the model's timer.
func (m *Model) Timer() *timer.Timer {
	return m.timer
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth) //nolint:mnd // margins
		m.shortKey.Width = msg.Width
		m.help = ""
		m.ensureVisible()
		return m, nil
	case loopTickMsg:
		return m, m.sched.deliver(msg)
	case ReloadMsg:
		m.store.Reload()
		m.refresh()
		return m, nil
	}

	if m.view == viewAdd {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewAdd:
		return m.handleAddKey(msg)
	case viewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Quit) {
			m.view = viewList
		}
		return m, nil
	case viewConfirmDelete:
		return m.handleConfirmKey(msg, m.executeDelete)
	case viewConfirmClear:
		return m.handleConfirmKey(msg, m.executeClear)
	default:
		return m.handleListKey(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case key.Matches(msg, m.keys.Add):
		m.view = viewAdd
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
	case key.Matches(msg, m.keys.Delete):
		if t := m.selected(); t != nil {
			m.deleteID = t.ID
			m.deleteText = t.Text
			m.view = viewConfirmDelete
		}
	case key.Matches(msg, m.keys.Clear):
		m.clearCount = m.store.Stats().Completed
		if m.clearCount > 0 {
			m.view = viewConfirmClear
		}
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.cursor, m.offset = 0, 0
		m.refresh()
	case key.Matches(msg, m.keys.StartPause):
		m.timer.Toggle()
	case key.Matches(msg, m.keys.Reset):
		m.timer.Reset()
	case key.Matches(msg, m.keys.Focus):
		m.timer.SetMode(timer.Focus)
	case key.Matches(msg, m.keys.ShortBreak):
		m.timer.SetMode(timer.ShortBreak)
	case key.Matches(msg, m.keys.LongBreak):
		m.timer.SetMode(timer.LongBreak)
	case key.Matches(msg, m.keys.Help):
		m.view = viewHelp
	}
	return m, m.sched.drain()
}

func (m *Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.input.Blur()
		m.err = nil
		m.view = viewList
		return m, nil
	case "enter":
		t, err := m.store.Create(m.input.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.record(activity.ActionCreate, t.ID, t.Text)
		m.input.Blur()
		m.err = nil
		m.view = viewList
		m.refresh()
		m.selectID(t.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg, execute func()) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		execute()
		m.view = viewList
	case "n", "N", keyEsc, "q":
		m.view = viewList
	}
	return m, nil
}

func (m *Model) toggleSelected() {
	t := m.selected()
	if t == nil {
		return
	}
	updated, err := m.store.Toggle(t.ID)
	if err != nil {
		m.err = err
		return
	}
	state := "pending"
	if updated.Completed {
		state = "completed"
	}
	m.record(activity.ActionToggle, updated.ID, state)
	m.refresh()
}

func (m *Model) executeDelete() {
	if m.store.Delete(m.deleteID) {
		m.record(activity.ActionDelete, m.deleteID, m.deleteText)
	}
	m.refresh()
}

func (m *Model) executeClear() {
	n := m.store.ClearCompleted()
	m.record(activity.ActionClear, 0, fmt.Sprintf("%d completed tasks", n))
	m.notice = fmt.Sprintf("Cleared %d completed tasks", n)
	m.refresh()
}

func (m *Model) sessionDone(ev timer.Event) {
	m.notice = fmt.Sprintf("%s complete. Next: %s", ev.Mode.Label(), ev.Next.Label())
	if m.log != nil {
		m.log.RecordSession(ev.Mode.String(), ev.DurationSeconds, ev.At)
	}
}

func (m *Model) record(action string, id int64, detail string) {
	if m.log != nil {
		m.log.Record(action, id, detail)
	}
}

// refresh reloads the visible rows from the store and clamps the cursor.
func (m *Model) refresh() {
	m.tasks = m.store.List(m.filter)
	if m.cursor >= len(m.tasks) {
		m.cursor = max(len(m.tasks)-1, 0)
	}
	m.ensureVisible()
}

func (m *Model) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return nil
	}
	return m.tasks[m.cursor]
}

func (m *Model) selectID(id int64) {
	for i, t := range m.tasks {
		if t.ID == id {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
}

// ensureVisible scrolls so the cursor row is on screen.
func (m *Model) ensureVisible() {
	rows := m.visibleRows()
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+rows:
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(min(m.offset, len(m.tasks)-rows), 0)
}
