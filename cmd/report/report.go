// Package report provides the "hlockit report" command over the local run
// history.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapforge/hlockit/internal/history"
	"github.com/mapforge/hlockit/internal/report"
)

// store is swapped for a temp store in tests.
var store = history.DefaultStore

// NewCommand creates the "report" command group.
func NewCommand() *cobra.Command {
	var xlsxPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recorded pipeline runs",
		Long: `Shows the local run history: what ran, over which images, how long each
stage took. With --xlsx the history is exported as a workbook.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store()
			runs, err := s.Runs()
			if err != nil {
				return fmt.Errorf("could not read run history: %w", err)
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			rows := report.Build(runs)

			if xlsxPath != "" {
				stats, err := s.Summary()
				if err != nil {
					return err
				}
				if err := report.WriteXLSX(rows, stats, xlsxPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s (%d runs)\n", xlsxPath, len(rows))
				return nil
			}

			jsonFlag, _ := cmd.Flags().GetBool("json")
			if jsonFlag {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			fmt.Fprint(cmd.OutOrStdout(), report.Format(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the report to an .xlsx workbook")
	cmd.Flags().IntVar(&limit, "limit", 0, "Only include the most recent N runs (0 = all)")

	cmd.AddCommand(newClearCommand())
	return cmd
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().Clear(); err != nil {
				return fmt.Errorf("could not clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run history cleared")
			return nil
		},
	}
}
