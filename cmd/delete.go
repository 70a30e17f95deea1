package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete tasks",
	Long: `Removes tasks by id. Deleting an id that does not exist is not an error.
Multiple IDs can be provided as a comma-separated list.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	ids, err := task.ParseIDs(args[0])
	if err != nil {
		return err
	}

	return withSession(true, func(s *session) error {
		if len(ids) > 1 {
			return runBatch(ids, func(id int64) error {
				deleteAndLog(s, id)
				return nil
			})
		}

		id := ids[0]
		removed := deleteAndLog(s, id)
		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]any{
				"status":  "deleted",
				"id":      id,
				"removed": removed,
			})
		}
		if !removed {
			output.Messagef(os.Stdout, "Task #%d was already gone", id)
			return nil
		}
		output.Messagef(os.Stdout, "Deleted task #%d", id)
		return nil
	})
}

func deleteAndLog(s *session, id int64) bool {
	t, err := s.store.Get(id)
	if err != nil {
		return false
	}
	s.store.Delete(id)
	s.activity.Record(activity.ActionDelete, id, t.Text)
	return true
}
