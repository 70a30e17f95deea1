package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

const (
	maxTextWidth = 60
	dateTime     = "2006-01-02 15:04"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	// Priority colors shared with the TUI.
	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}

	modeStyles = map[timer.Mode]lipgloss.Style{
		timer.Focus:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		timer.ShortBreak: lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
		timer.LongBreak:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	}
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	doneStyle = lipgloss.NewStyle()
	priorityStyles = map[task.Priority]lipgloss.Style{}
	modeStyles = map[timer.Mode]lipgloss.Style{}
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tasks found."))
		return
	}

	const pad = 2
	idW, prioW, textW := 4, 10, 6
	for _, t := range tasks {
		idW = max(idW, len(strconv.FormatInt(t.ID, 10))+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		textW = max(textW, min(len(t.Text)+pad, maxTextWidth+pad))
	}

	header := fmt.Sprintf("%-*s %-6s %-*s %-*s %s",
		idW, "ID", "DONE", prioW, "PRIORITY", textW, "TEXT", "CREATED")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		row := fmt.Sprintf("%-*d %s %s %s %s",
			idW, t.ID,
			padRight(checkbox(t), 6), //nolint:mnd // column width
			padRight(PriorityLabel(t.Priority), prioW),
			padRight(Truncate(t.Text, maxTextWidth), textW),
			dimStyle.Render(t.CreatedAt.Local().Format(dateTime)))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task) {
	titleLine := fmt.Sprintf("Task #%d", t.ID)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "Text", t.Text)
	printField(w, "Completed", checkbox(t))
	printField(w, "Priority", PriorityLabel(t.Priority))
	printField(w, "Created", t.CreatedAt.Local().Format(dateTime))
}

// StatsTable renders task totals and, when available, the session summary.
func StatsTable(w io.Writer, st store.Stats, sessions *activity.SessionSummary) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Tasks"))
	printField(w, "Total", strconv.Itoa(st.Total))
	printField(w, "Completed", strconv.Itoa(st.Completed))
	printField(w, "Pending", strconv.Itoa(st.Pending))
	printField(w, "Done", ProgressBar(st.CompletionRate, 20)+" "+strconv.Itoa(st.CompletionRate)+"%") //nolint:mnd // bar width

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")))
	for _, pc := range st.Priorities {
		const prioColW = 16
		fmt.Fprintf(w, "%s %6d\n", padRight(PriorityLabel(pc.Priority), prioColW), pc.Count)
	}

	if sessions != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render("Sessions today"))
		printField(w, "Sessions", strconv.Itoa(sessions.Sessions))
		printField(w, "Focus", FormatSeconds(sessions.FocusSeconds))
		printField(w, "Breaks", FormatSeconds(sessions.BreakSeconds))
	}
}

// ActivityTable renders activity log entries.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No activity yet."))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %-8s %s", "TIME", "ACTION", "DETAIL")))
	for _, e := range entries {
		detail := e.Detail
		if e.TaskID != 0 {
			detail = "#" + strconv.FormatInt(e.TaskID, 10) + " " + detail
		}
		fmt.Fprintf(w, "%s %-8s %s\n",
			dimStyle.Render(e.Timestamp.Local().Format(dateTime)), e.Action, Truncate(detail, maxTextWidth))
	}
}

// TimerLine renders a one-line timer status such as "Focus 24:59 ▶ (#2)".
func TimerLine(st timer.State) string {
	icon := "⏸"
	if st.Running {
		icon = "▶"
	}
	label := st.Mode.Label()
	if s, ok := modeStyles[st.Mode]; ok {
		label = s.Render(label)
	}
	return fmt.Sprintf("%s %s %s  sessions: %d", label, st.Clock(), icon, st.SessionsCompleted)
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

// PriorityLabel renders a priority with its color, or "--" when unset.
func PriorityLabel(p task.Priority) string {
	if p == task.PriorityNone {
		return dimStyle.Render("--")
	}
	if st, ok := priorityStyles[p]; ok {
		return st.Render(string(p))
	}
	return string(p)
}

// ProgressBar renders percent as a fixed-width bar.
func ProgressBar(percent, width int) string {
	percent = min(max(percent, 0), 100) //nolint:mnd // percent bounds
	filled := percent * width / 100     //nolint:mnd // percent
	return doneStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

// FormatSeconds renders a second count as "Xh Ym" or "Ym".
func FormatSeconds(secs int) string {
	h, m := secs/3600, (secs%3600)/60 //nolint:mnd // seconds per hour/minute
	if h > 0 {
		return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
	}
	return strconv.Itoa(m) + "m"
}

// Truncate shortens s to at most maxLen runes, adding "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 { //nolint:mnd // ellipsis length
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func checkbox(t *task.Task) string {
	if t.Completed {
		return doneStyle.Render("[x]")
	}
	return "[ ]"
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}
