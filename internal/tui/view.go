package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

// chromeHeight is the number of lines around the task rows: title, timer,
// bar, blank, filter line, blank, input or notice, status bar.
const chromeHeight = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))

	modeStyles = map[timer.Mode]lipgloss.Style{
		timer.Focus:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		timer.ShortBreak: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("34")),
		timer.LongBreak:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
	}

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case viewHelp:
		if m.help == "" {
			m.help = renderHelp(helpMarkdown(m.keys), m.width, m.plain)
		}
		return m.help
	case viewConfirmDelete:
		return dialogStyle.Render(errorStyle.Render("Delete task?") + "\n\n" +
			fmt.Sprintf("  #%d: %s", m.deleteID, output.Truncate(m.deleteText, m.width-12)) + "\n\n" + //nolint:mnd // dialog chrome
			dimStyle.Render("y:yes  n:no"))
	case viewConfirmClear:
		return dialogStyle.Render(errorStyle.Render("Clear completed tasks?") + "\n\n" +
			fmt.Sprintf("  %d completed tasks will be removed.", m.clearCount) + "\n\n" +
			dimStyle.Render("y:yes  n:no"))
	default:
		return m.viewMain()
	}
}

func (m *Model) viewMain() string {
	var b strings.Builder
	st := m.timer.State()

	b.WriteString(titleStyle.Render("focusboard") + "\n")
	b.WriteString(m.renderTimer(st) + "\n")
	b.WriteString(m.bar.ViewAs(st.Progress()) + "\n\n")

	stats := m.store.Stats()
	fmt.Fprintf(&b, "%s  %s\n",
		dimStyle.Render("filter: "+m.filter.String()),
		dimStyle.Render(fmt.Sprintf("%d/%d done (%d%%)", stats.Completed, stats.Total, stats.CompletionRate)))

	b.WriteString(m.renderRows())
	b.WriteString("\n")

	switch {
	case m.view == viewAdd:
		b.WriteString(m.input.View() + "\n")
	case m.notice != "":
		b.WriteString(noticeStyle.Render(output.Truncate(m.notice, m.width)) + "\n")
	default:
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(output.Truncate("Error: "+m.err.Error(), m.width)) + "\n")
	}
	b.WriteString(m.shortKey.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderTimer(st timer.State) string {
	label := st.Mode.Label()
	if s, ok := modeStyles[st.Mode]; ok {
		label = s.Render(label)
	}
	state := dimStyle.Render("paused")
	if st.Running {
		state = noticeStyle.Render("running")
	}
	return fmt.Sprintf("%s  %s  %s  %s", label, clockStyle.Render(st.Clock()), state,
		dimStyle.Render(fmt.Sprintf("sessions: %d", st.SessionsCompleted)))
}

func (m *Model) renderRows() string {
	if len(m.tasks) == 0 {
		return dimStyle.Render("  No tasks. Press a to add one.") + "\n"
	}

	var b strings.Builder
	end := min(m.offset+m.visibleRows(), len(m.tasks))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.tasks[i], i == m.cursor) + "\n")
	}
	return b.String()
}

func (m *Model) renderRow(t *task.Task, active bool) string {
	pointer := "  "
	if active {
		pointer = cursorStyle.Render("› ")
	}
	box := "[ ]"
	text := output.Truncate(t.Text, max(m.width-20, 10)) //nolint:mnd // row chrome
	if t.Completed {
		box = "[x]"
		text = doneStyle.Render(text)
	}
	prio := ""
	if t.Priority != task.PriorityNone {
		prio = output.PriorityLabel(t.Priority) + " "
	}
	return pointer + box + " " + prio + text
}

func (m *Model) visibleRows() int {
	if m.height == 0 {
		return max(len(m.tasks), 1)
	}
	return max(m.height-chromeHeight, 1)
}
