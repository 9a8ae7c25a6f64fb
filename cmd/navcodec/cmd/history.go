package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var errJournalDisabled = errors.New("journal is disabled: set journal.enabled in the config file or pass --journal-dir")

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Long: `List decode and encode runs recorded in the journal, newest first.

Examples:
  navcodec history --journal-dir ./journal
  navcodec history --limit 5 --json`,
		Args: cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			if e.journal == nil {
				return errJournalDisabled
			}
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")

			runs, err := e.journal.List(limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tOPERATION\tSTATUS\tHEADER\tCONTENT\tINPUT\tOUTPUT\tERROR")
			for _, run := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					run.ID,
					run.StartedAt.Local().Format(time.DateTime),
					run.Operation,
					run.Status,
					run.HeaderBytes,
					run.ContentBytes,
					run.Input,
					run.Output,
					run.Error,
				)
			}
			return tw.Flush()
		}),
	}

	historyCmd.Flags().Int("limit", 20, "maximum number of runs to show, 0 for all")
	historyCmd.Flags().Bool("json", false, "print runs as JSON")
	return historyCmd
}
