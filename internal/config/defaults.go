// Package config handles focusboard configuration.
package config

import "time"

const (
	// DefaultDir is the per-project data directory name.
	DefaultDir = ".focusboard"
	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"
	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	// DefaultBackend is the storage backend for new configs.
	DefaultBackend = "file"
	// DefaultFilePath is the slot directory used by the file backend.
	DefaultFilePath = "data"
	// DefaultSQLitePath is the database file used by the sqlite backend.
	DefaultSQLitePath = "focusboard.db"

	// DefaultFocus is the canonical focus session length.
	DefaultFocus = "25m"
	// DefaultShortBreak is the canonical short break length.
	DefaultShortBreak = "5m"
	// DefaultLongBreak is the canonical long break length.
	DefaultLongBreak = "15m"
	// DefaultLongBreakAfter is how many focus sessions precede a long break.
	DefaultLongBreakAfter = 4

	// DefaultFilter is the task filter used when none is given.
	DefaultFilter = "all"

	// LogFileName is the application log inside the data directory.
	LogFileName = "focusboard.log"

	minDuration = time.Second
)

// Default slice values (slices cannot be const).
var (
	DefaultHighKeywords   = []string{"urgent"}
	DefaultMediumKeywords = []string{"important"}

	// memory is left out: a CLI process would drop every write on exit.
	validBackends = []string{"file", "sqlite"}
)
