package cmd

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/kv"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/tui"
	"github.com/twiced-technology-gmbh/focusboard/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	return withSession(false, func(s *session) error {
		f, err := store.ParseFilter(s.cfg.Defaults.Filter)
		if err != nil {
			f = store.All
		}

		opts := []tui.Option{
			tui.WithActivityLog(s.activity),
			tui.WithLogger(s.logger),
			tui.WithFilter(f),
		}
		if flagNoColor {
			opts = append(opts, tui.WithPlainHelp())
		}
		model := tui.New(s.store, s.cfg.TimerSettings(), opts...)
		p := tea.NewProgram(model, tea.WithAltScreen())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go startTUIWatcher(ctx, watchPaths(s.storage), p, s.logger)

		_, err = p.Run()
		return err
	})
}

// watchPaths returns the files whose changes mean another process wrote
// the task list.
func watchPaths(storage kv.Storage) []string {
	switch st := storage.(type) {
	case *kv.File:
		return []string{st.Path(store.Key)}
	case *kv.SQLite:
		return []string{st.Path(), st.Path() + "-wal"}
	default:
		return nil
	}
}

func startTUIWatcher(ctx context.Context, paths []string, p *tea.Program, logger *slog.Logger) {
	if len(paths) == 0 {
		return
	}
	w, err := watcher.New(paths, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		logger.Warn("live reload disabled", "error", err)
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		logger.Warn("watcher error", "error", err)
	})
}
