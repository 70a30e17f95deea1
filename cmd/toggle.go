package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var toggleCmd = &cobra.Command{
	Use:     "toggle ID[,ID,...]",
	Aliases: []string{"done"},
	Short:   "Flip a task between pending and completed",
	Args:    cobra.ExactArgs(1),
	RunE:    runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(_ *cobra.Command, args []string) error {
	ids, err := task.ParseIDs(args[0])
	if err != nil {
		return err
	}

	return withSession(true, func(s *session) error {
		if len(ids) > 1 {
			return runBatch(ids, func(id int64) error {
				_, err := toggleAndLog(s, id)
				return err
			})
		}

		t, err := toggleAndLog(s, ids[0])
		if err != nil {
			return err
		}
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, t)
		}
		state := "pending"
		if t.Completed {
			state = "completed"
		}
		output.Messagef(os.Stdout, "Marked task #%d %s: %s", t.ID, state, t.Text)
		return nil
	})
}

func toggleAndLog(s *session, id int64) (*task.Task, error) {
	t, err := s.store.Toggle(id)
	if err != nil {
		return nil, err
	}
	detail := "pending"
	if t.Completed {
		detail = "completed"
	}
	s.activity.Record(activity.ActionToggle, t.ID, detail)
	return t, nil
}
