// Package activity keeps the append-only JSONL audit trail of task changes
// and completed timer sessions.
package activity

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	logFileMode   = 0o600
	maxLogEntries = 10000 // oldest entries are dropped past this size
)

// Actions recorded in the log.
const (
	ActionCreate  = "create"
	ActionToggle  = "toggle"
	ActionDelete  = "delete"
	ActionClear   = "clear"
	ActionSession = "session"
)

// Entry is a single activity log line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    int64     `json:"task_id,omitempty"`
	Detail    string    `json:"detail"`
	Mode      string    `json:"mode,omitempty"`
	Seconds   int       `json:"seconds,omitempty"`
}

// Log appends to and reads from <dir>/activity.jsonl.
type Log struct {
	dir string
	now func() time.Time
}

// New returns a Log rooted at dir.
func New(dir string) *Log {
	return &Log{dir: dir, now: time.Now}
}

// Path returns the log file location.
func (l *Log) Path() string {
	return filepath.Join(l.dir, logFileName)
}

// Append writes entry, stamping it when Timestamp is zero, and truncates
// the file once it exceeds maxLogEntries.
func (l *Log) Append(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // log path inside the data dir
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing log entry: %w", err)
	}

	// Truncation is best-effort.
	_ = truncateIfNeeded(l.Path(), maxLogEntries)

	return nil
}

// Record appends a task mutation. Errors are dropped: the audit trail must
// never fail a command.
func (l *Log) Record(action string, taskID int64, detail string) {
	_ = l.Append(Entry{Action: action, TaskID: taskID, Detail: detail})
}

// RecordSession appends a completed timer session.
func (l *Log) RecordSession(mode string, seconds int, at time.Time) {
	_ = l.Append(Entry{Timestamp: at, Action: ActionSession, Mode: mode, Seconds: seconds, Detail: mode + " completed"})
}

// Recent returns up to n of the newest entries, oldest first. n <= 0 returns all.
// Malformed lines are skipped.
func (l *Log) Recent(n int) ([]Entry, error) {
	lines, err := readLines(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		var e Entry
		if json.Unmarshal([]byte(line), &e) != nil {
			continue
		}
		entries = append(entries, e)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// SessionSummary aggregates completed sessions.
type SessionSummary struct {
	Sessions     int `json:"sessions"`
	FocusSeconds int `json:"focusSeconds"`
	BreakSeconds int `json:"breakSeconds"`
}

// Sessions summarizes sessions logged at or after since.
func (l *Log) Sessions(since time.Time) (SessionSummary, error) {
	entries, err := l.Recent(0)
	if err != nil {
		return SessionSummary{}, err
	}
	var s SessionSummary
	for _, e := range entries {
		if e.Action != ActionSession || e.Timestamp.Before(since) {
			continue
		}
		s.Sessions++
		if e.Mode == "focus" {
			s.FocusSeconds += e.Seconds
		} else {
			s.BreakSeconds += e.Seconds
		}
	}
	return s, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // trusted path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// truncateIfNeeded rewrites the log keeping only the newest limit lines.
func truncateIfNeeded(path string, limit int) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}
	if len(lines) <= limit {
		return nil
	}

	lines = lines[len(lines)-limit:]

	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(buf.String()), logFileMode)
}
