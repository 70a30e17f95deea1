package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/timer"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Run a pomodoro countdown in the foreground",
	Long: `Counts down the selected mode and records each completed session in the
activity log. Ctrl+C pauses the countdown and exits.

With --sessions N the timer moves on to the next mode until N sessions have
completed (0 runs until interrupted).`,
	Args: cobra.NoArgs,
	RunE: runTimer,
}

func init() {
	timerCmd.Flags().StringP("mode", "m", "focus", "mode to start in (focus, short, long)")
	timerCmd.Flags().IntP("sessions", "s", 1, "number of sessions to run (0 = until interrupted)")
	rootCmd.AddCommand(timerCmd)
}

func runTimer(cmd *cobra.Command, _ []string) error {
	rawMode, _ := cmd.Flags().GetString("mode")
	mode, err := timer.ParseMode(rawMode)
	if err != nil {
		return err
	}
	sessions, _ := cmd.Flags().GetInt("sessions")
	if sessions < 0 {
		return clierr.Newf(clierr.InvalidInput, "invalid --sessions %d", sessions)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer closeLog()
	log := activity.New(cfg.Dir())

	const eventBuffer = 4
	ticks := make(chan timer.State, 1)
	completed := make(chan timer.Event, eventBuffer)

	t := timer.New(cfg.TimerSettings(), timer.TickerScheduler{},
		timer.WithLogger(logger),
		timer.OnTick(func(st timer.State) {
			select {
			case ticks <- st:
			default:
			}
		}),
		timer.OnComplete(func(ev timer.Event) {
			log.RecordSession(ev.Mode.String(), ev.DurationSeconds, ev.At)
			select {
			case completed <- ev:
			default:
			}
		}),
	)
	t.SetMode(mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newTimerRenderer()
	r.state(t.State())
	t.Start()

	done := 0
	for {
		select {
		case <-ctx.Done():
			t.Pause()
			r.interrupted(t.State())
			return nil
		case st := <-ticks:
			r.state(st)
		case ev := <-completed:
			done++
			if err := r.completed(ev); err != nil {
				return err
			}
			if sessions > 0 && done >= sessions {
				t.Pause()
				return nil
			}
			t.Start()
		}
	}
}

// timerRenderer prints countdown progress: redrawn in place on a terminal,
// one line per completed session otherwise.
type timerRenderer struct {
	tty    bool
	format output.Format
}

func newTimerRenderer() *timerRenderer {
	return &timerRenderer{
		tty:    term.IsTerminal(int(os.Stdout.Fd())), //nolint:gosec // fd fits in int
		format: outputFormat(),
	}
}

func (r *timerRenderer) state(st timer.State) {
	if r.format == output.FormatJSON || !r.tty {
		return
	}
	fmt.Fprintf(os.Stdout, "\r\033[K%s", output.TimerLine(st))
}

func (r *timerRenderer) completed(ev timer.Event) error {
	if r.format == output.FormatJSON {
		return output.JSON(os.Stdout, ev)
	}
	if r.tty {
		fmt.Fprint(os.Stdout, "\r\033[K")
	}
	output.Messagef(os.Stdout, "%s complete (%s). Next: %s",
		ev.Mode.Label(), time.Duration(ev.DurationSeconds)*time.Second, ev.Next.Label())
	return nil
}

func (r *timerRenderer) interrupted(st timer.State) {
	if r.format == output.FormatJSON {
		_ = output.JSON(os.Stdout, st)
		return
	}
	if r.tty {
		fmt.Fprintln(os.Stdout)
	}
	output.Messagef(os.Stdout, "Paused %s at %s", st.Mode.Label(), st.Clock())
}
