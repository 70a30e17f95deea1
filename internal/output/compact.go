package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	for _, t := range tasks {
		fmt.Fprintln(w, FormatTaskLine(t))
	}
}

// StatsCompact renders the stats on a single line.
func StatsCompact(w io.Writer, st store.Stats, sessions *activity.SessionSummary) {
	line := fmt.Sprintf("total:%d completed:%d pending:%d rate:%d%%",
		st.Total, st.Completed, st.Pending, st.CompletionRate)
	if sessions != nil {
		line += " sessions:" + strconv.Itoa(sessions.Sessions) +
			" focus:" + FormatSeconds(sessions.FocusSeconds)
	}
	fmt.Fprintln(w, line)
}

// ActivityCompact renders activity entries one per line.
func ActivityCompact(w io.Writer, entries []activity.Entry) {
	for _, e := range entries {
		line := e.Timestamp.Format("2006-01-02T15:04:05") + " " + e.Action
		if e.TaskID != 0 {
			line += " #" + strconv.FormatInt(e.TaskID, 10)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// FormatTaskLine builds the one-line representation of a task.
func FormatTaskLine(t *task.Task) string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	line := "#" + strconv.FormatInt(t.ID, 10) + " " + mark
	if t.Priority != task.PriorityNone {
		line += " (" + string(t.Priority) + ")"
	}
	return line + " " + t.Text
}
