package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no focusboard directory found (run 'focusboard init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the focusboard configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Storage  StorageConfig  `yaml:"storage"`
	Pomodoro PomodoroConfig `yaml:"pomodoro"`
	Priority PriorityConfig `yaml:"priority"`
	Defaults DefaultsConfig `yaml:"defaults"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path is relative to the data directory unless absolute.
	Path string `yaml:"path,omitempty"`
}

// PomodoroConfig holds timer durations as duration strings, e.g. "25m".
type PomodoroConfig struct {
	Focus          string `yaml:"focus"`
	ShortBreak     string `yaml:"short_break"`
	LongBreak      string `yaml:"long_break"`
	LongBreakAfter int    `yaml:"long_break_after"`
	AutoStartBreak bool   `yaml:"auto_start_break,omitempty"`
	AutoStartFocus bool   `yaml:"auto_start_focus,omitempty"`
}

// PriorityConfig controls the keyword heuristic applied to new tasks.
type PriorityConfig struct {
	Disabled       bool     `yaml:"disabled,omitempty"`
	HighKeywords   []string `yaml:"high_keywords"`
	MediumKeywords []string `yaml:"medium_keywords"`
}

// DefaultsConfig holds defaults for commands.
type DefaultsConfig struct {
	Filter string `yaml:"filter"`
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Storage: StorageConfig{Backend: DefaultBackend},
		Pomodoro: PomodoroConfig{
			Focus:          DefaultFocus,
			ShortBreak:     DefaultShortBreak,
			LongBreak:      DefaultLongBreak,
			LongBreakAfter: DefaultLongBreakAfter,
		},
		Priority: PriorityConfig{
			HighKeywords:   append([]string{}, DefaultHighKeywords...),
			MediumKeywords: append([]string{}, DefaultMediumKeywords...),
		},
		Defaults: DefaultsConfig{Filter: DefaultFilter},
	}
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LogPath returns the absolute path to the application log.
func (c *Config) LogPath() string {
	return filepath.Join(c.dir, LogFileName)
}

// StoragePath returns the backend location: a directory for the file backend,
// a database file for sqlite.
func (c *Config) StoragePath() string {
	p := c.Storage.Path
	if p == "" {
		p = DefaultFilePath
		if c.Storage.Backend == "sqlite" {
			p = DefaultSQLitePath
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// FocusDuration returns the configured focus length.
func (c *Config) FocusDuration() time.Duration {
	return durationOr(c.Pomodoro.Focus, DefaultFocus)
}

// ShortBreakDuration returns the configured short break length.
func (c *Config) ShortBreakDuration() time.Duration {
	return durationOr(c.Pomodoro.ShortBreak, DefaultShortBreak)
}

// LongBreakDuration returns the configured long break length.
func (c *Config) LongBreakDuration() time.Duration {
	return durationOr(c.Pomodoro.LongBreak, DefaultLongBreak)
}

// TimerSettings converts the pomodoro section into timer settings.
func (c *Config) TimerSettings() timer.Settings {
	return timer.Settings{
		Focus:          c.FocusDuration(),
		ShortBreak:     c.ShortBreakDuration(),
		LongBreak:      c.LongBreakDuration(),
		LongBreakAfter: c.Pomodoro.LongBreakAfter,
		AutoStartBreak: c.Pomodoro.AutoStartBreak,
		AutoStartFocus: c.Pomodoro.AutoStartFocus,
	}
}

// PriorityFunc returns the keyword heuristic for new tasks, or nil when
// priorities are disabled.
func (c *Config) PriorityFunc() task.PriorityFunc {
	if c.Priority.Disabled {
		return nil
	}
	return task.KeywordPriority(c.Priority.HighKeywords, c.Priority.MediumKeywords)
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if !slices.Contains(validBackends, c.Storage.Backend) {
		return fmt.Errorf("%w: storage.backend %q must be one of %v", ErrInvalid, c.Storage.Backend, validBackends)
	}
	for field, v := range map[string]string{
		"pomodoro.focus":       c.Pomodoro.Focus,
		"pomodoro.short_break": c.Pomodoro.ShortBreak,
		"pomodoro.long_break":  c.Pomodoro.LongBreak,
	} {
		if err := ValidateDuration(field, v); err != nil {
			return err
		}
	}
	if c.Pomodoro.LongBreakAfter < 0 {
		return fmt.Errorf("%w: pomodoro.long_break_after must be >= 0", ErrInvalid)
	}
	return nil
}

// ValidateDuration checks that v parses as a duration of at least one second.
func ValidateDuration(field, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrInvalid, field, v, err)
	}
	if d < minDuration {
		return fmt.Errorf("%w: %s must be at least %s", ErrInvalid, field, minDuration)
	}
	return nil
}

// Init creates a data directory with a default config file.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg := NewDefault()
	cfg.SetDir(absDir)

	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given data directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unset fields keep their defaults.
	cfg := NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindDir walks upward from startDir looking for a data directory containing
// config.yml. Returns the absolute path to the data directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.InvalidInput, ErrNotFound.Error())
		}
		dir = parent
	}
}

func durationOr(v, fallback string) time.Duration {
	if d, err := time.ParseDuration(v); err == nil && d >= minDuration {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}
