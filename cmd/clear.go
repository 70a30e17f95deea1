package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/focusboard/internal/activity"
	"github.com/twiced-technology-gmbh/focusboard/internal/clierr"
	"github.com/twiced-technology-gmbh/focusboard/internal/output"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all completed tasks",
	Long:  `Removes every completed task. Prompts for confirmation in interactive mode.`,
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	return withSession(true, func(s *session) error {
		pending := s.store.Stats().Completed
		if pending > 0 && !yes {
			ok, err := confirm(fmt.Sprintf("Remove %d completed tasks? [y/N] ", pending))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(os.Stderr, "Canceled.")
				return nil
			}
		}

		n := s.store.ClearCompleted()
		if n > 0 {
			s.activity.Record(activity.ActionClear, 0, fmt.Sprintf("%d completed tasks", n))
		}

		if outputFormat() == output.FormatJSON {
			return output.JSON(os.Stdout, map[string]any{"status": "cleared", "removed": n})
		}
		output.Messagef(os.Stdout, "Removed %d completed tasks", n)
		return nil
	})
}

// confirm asks a yes/no question on stderr. It refuses to guess when stdin is
// not a terminal.
func confirm(prompt string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // fd fits in int
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}
	fmt.Fprint(os.Stderr, prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
