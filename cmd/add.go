package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
	"github.com/twiced-technology-gmbh/focusboard/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add TEXT...",
	Aliases: []string{"create"},
	Short:   "Add a task",
	Long: `Adds a pending task. Multiple arguments are joined with spaces.

The priority is derived from the text ("urgent" is high, "important" is medium,
anything else is low) unless --priority is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringP("priority", "p", "", "explicit priority (low, medium, high)")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "prio" {
			name = "priority"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if err := task.ValidateText(text); err != nil {
		return err
	}

	var opts []func(*sessionOpts)
	if raw, _ := cmd.Flags().GetString("priority"); raw != "" {
		p, err := task.ParsePriority(raw)
		if err != nil {
			return err
		}
		opts = append(opts, func(o *sessionOpts) {
			o.priority = func(string) task.Priority { return p }
		})
	}

	return withSession(true, func(s *session) error {
		t, err := s.store.Create(text)
		if err != nil {
			return err
		}
		s.activity.Record(activity.ActionCreate, t.ID, t.Text)

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, t)
		}
		output.Messagef(os.Stdout, "Added task #%d: %s", t.ID, t.Text)
		return nil
	}, opts...)
}
