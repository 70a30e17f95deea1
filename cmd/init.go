package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/config"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a focusboard data directory",
	Long:  `Creates a .focusboard directory with config.yml in the current directory (or --dir).`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("backend", config.DefaultBackend, "storage backend (file, sqlite)")
	initCmd.Flags().String("focus", config.DefaultFocus, "focus session length")
	initCmd.Flags().String("short-break", config.DefaultShortBreak, "short break length")
	initCmd.Flags().String("long-break", config.DefaultLongBreak, "long break length")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.InvalidInput, "focusboard already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := config.NewDefault()
	cfg.SetDir(absDir)
	cfg.Storage.Backend, _ = cmd.Flags().GetString("backend")
	cfg.Pomodoro.Focus, _ = cmd.Flags().GetString("focus")
	cfg.Pomodoro.ShortBreak, _ = cmd.Flags().GetString("short-break")
	cfg.Pomodoro.LongBreak, _ = cmd.Flags().GetString("long-break")

	if err := cfg.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error())
	}

	const dirMode = 0o750
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     absDir,
			"config":  cfg.ConfigPath(),
			"backend": cfg.Storage.Backend,
			"storage": cfg.StoragePath(),
			"key":     store.Key,
		})
	}

	output.Messagef(os.Stdout, "Initialized focusboard in %s", absDir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Storage: %s (%s)", cfg.StoragePath(), cfg.Storage.Backend)
	output.Messagef(os.Stdout, "  Timer:   %s focus, %s / %s breaks",
		cfg.Pomodoro.Focus, cfg.Pomodoro.ShortBreak, cfg.Pomodoro.LongBreak)
	return nil
}
