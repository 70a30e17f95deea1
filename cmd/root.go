// Package cmd implements the focusboard CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/config"
	"github.com/twiced-technology-gmbh/focusboard/internal/filelock"
	"github.com/twiced-technology-gmbh/focusboard/internal/kv"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
	flagVerbose bool
)

const lockFileName = ".lock"

var rootCmd = &cobra.Command{
	Use:   "focusboard",
	Short: "Tasks and a pomodoro timer in your terminal",
	Long: `focusboard keeps a small to-do list next to a pomodoro timer.
Run focusboard without arguments to open the TUI, or use the subcommands to script it.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || termenv.EnvNoColor() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to focusboard data directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to the data directory log file")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// SilentError: exit with its code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown errors are reported as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/focusboard.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "focusboard"), nil
}

// resolveDir returns the data directory: --dir, else the nearest
// .focusboard walking up from the working directory, else the home default.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	return defaultHomeDir()
}

// loadConfig finds and loads the config. The home default directory is
// created on first use.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, err
	}

	return config.Init(homeDir)
}

// newLogger returns a text logger writing to the data directory log file,
// plus a close function. Logging falls back to io.Discard when the file
// cannot be opened.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}

	const logFileMode = 0o600
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFileMode) //nolint:gosec // trusted path
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }
}

// session bundles everything a command needs to work on the task list.
type session struct {
	cfg      *config.Config
	storage  kv.Storage
	store    *store.Store
	activity *activity.Log
	logger   *slog.Logger
}

// sessionOpts adjusts how a session's store is opened.
type sessionOpts struct {
	priority task.PriorityFunc
}

// withSession loads the config and opens the store. When mutate is true the
// data directory lock is held for the whole call so concurrent CLI writers
// cannot interleave their read-modify-write cycles.
func withSession(mutate bool, fn func(*session) error, opts ...func(*sessionOpts)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	run := func() error {
		logger, closeLog := newLogger(cfg)
		defer closeLog()

		storage, err := kv.Open(cfg.Storage.Backend, cfg.StoragePath())
		if err != nil {
			return fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
		}
		defer storage.Close() //nolint:errcheck // read-only close

		o := sessionOpts{priority: cfg.PriorityFunc()}
		for _, opt := range opts {
			opt(&o)
		}

		s := &session{
			cfg:      cfg,
			storage:  storage,
			store:    store.Open(storage, store.WithPriorityFunc(o.priority), store.WithLogger(logger)),
			activity: activity.New(cfg.Dir()),
			logger:   logger,
		}
		return fn(s)
	}

	if !mutate {
		return run()
	}
	return filelock.With(filepath.Join(cfg.Dir(), lockFileName), run)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// runBatch executes fn for each ID and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(ids []int64, fn func(int64) error) error {
	results := make([]output.BatchResult, 0, len(ids))
	anyFailed := false

	for _, id := range ids {
		err := fn(id)
		if err != nil {
			anyFailed = true
			var cliErr *clierr.Error
			if errors.As(err, &cliErr) {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: cliErr.Message, Code: cliErr.Code})
			} else {
				results = append(results, output.BatchResult{ID: id, OK: false, Error: err.Error()})
			}
		} else {
			results = append(results, output.BatchResult{ID: id, OK: true})
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task #%d: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(ids))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}
