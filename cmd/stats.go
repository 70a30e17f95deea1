package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task totals and today's timer sessions",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsResult is the JSON shape of the stats command.
type statsResult struct {
	Tasks store.Stats              `json:"tasks"`
	Today *activity.SessionSummary `json:"today,omitempty"`
}

func runStats(_ *cobra.Command, _ []string) error {
	return withSession(false, func(s *session) error {
		res := statsResult{Tasks: s.store.Stats()}

		if sum, err := s.activity.Sessions(startOfDay(time.Now())); err != nil {
			s.logger.Warn("reading activity log", "error", err)
		} else {
			res.Today = &sum
		}

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, res)
		case output.FormatCompact:
			output.StatsCompact(os.Stdout, res.Tasks, res.Today)
		default:
			output.StatsTable(os.Stdout, res.Tasks, res.Today)
		}
		return nil
	})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
