package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(_ *cobra.Command, args []string) error {
	id, err := task.ParseID(args[0])
	if err != nil {
		return err
	}

	return withSession(false, func(s *session) error {
		t, err := s.store.Get(id)
		if err != nil {
			return err
		}

		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, t)
		case output.FormatCompact:
			output.Messagef(os.Stdout, "%s", output.FormatTaskLine(t))
		default:
			output.TaskDetail(os.Stdout, t)
		}
		return nil
	})
}
