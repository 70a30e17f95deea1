package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/store"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks in the order they were added.

Filters: all, completed (done), pending (active, todo), or a priority
(high, medium, low, priority=<p>). The default comes from defaults.filter.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("filter", "f", "", "task filter")
	listCmd.Flags().Bool("completed", false, "show only completed tasks")
	listCmd.Flags().Bool("pending", false, "show only pending tasks")
	listCmd.Flags().String("priority", "", "show only tasks with this priority")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.MarkFlagsMutuallyExclusive("filter", "completed", "pending", "priority")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return clierr.Newf(clierr.InvalidInput, "invalid --limit %d", limit)
	}

	return withSession(false, func(s *session) error {
		f, err := listFilter(cmd, s.cfg.Defaults.Filter)
		if err != nil {
			return err
		}

		tasks := s.store.List(f)
		if limit > 0 && len(tasks) > limit {
			tasks = tasks[:limit]
		}

		switch outputFormat() {
		case output.FormatJSON:
			if tasks == nil {
				tasks = []*task.Task{}
			}
			return output.JSON(os.Stdout, tasks)
		case output.FormatCompact:
			output.TaskCompact(os.Stdout, tasks)
		default:
			output.TaskTable(os.Stdout, tasks)
		}
		return nil
	})
}

// listFilter resolves the filter from flags, falling back to fallback.
func listFilter(cmd *cobra.Command, fallback string) (store.Filter, error) {
	if on, _ := cmd.Flags().GetBool("completed"); on {
		return store.Completed, nil
	}
	if on, _ := cmd.Flags().GetBool("pending"); on {
		return store.Pending, nil
	}
	if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
		p, err := task.ParsePriority(raw)
		if err != nil {
			return store.All, err
		}
		return store.ByPriority(p), nil
	}
	if raw, _ := cmd.Flags().GetString("filter"); raw != "" {
		return store.ParseFilter(raw)
	}
	return store.ParseFilter(fallback)
}
