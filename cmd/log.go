package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent activity",
	Long:  `Shows the newest entries of the activity log: task changes and completed timer sessions.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries to show (0 = all)") //nolint:mnd // default page size
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries, err := activity.New(cfg.Dir()).Recent(limit)
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		if entries == nil {
			entries = []activity.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	case output.FormatCompact:
		output.ActivityCompact(os.Stdout, entries)
	default:
		output.ActivityTable(os.Stdout, entries)
	}
	return nil
}
