package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag/evaluation"
	"github.com/happyhackingspace/nertag/internal/runlog"
)

func (c *CLI) newRunsCommand() *cobra.Command {
	var dbPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "List recorded evaluation runs, or show one run",
		Args:  cobra.MaximumNArgs(1),
		Example: `  nertag runs --db runs.db
  nertag runs 01J9ZK3Q4R8X2W6V5T7Y1M0N3P --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := runlog.Open(cmd.Context(), dbPath)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer func() { _ = store.Close() }()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.CreatedAt.Format(time.RFC3339))
				fmt.Fprintf(out, "reference:  %s\nhypothesis: %s\n", run.Reference, run.Hypothesis)
				if run.Model != "" {
					fmt.Fprintf(out, "model:      %s\n", run.Model)
				}
				fmt.Fprintln(out)
				return evaluation.WriteReport(out, &evaluation.Result{
					Tags:    referenceTags(run.Scores),
					Scores:  run.Scores,
					Macro:   run.Macro,
					Total:   run.Overall.Support,
					Correct: int(run.Accuracy*float64(run.Overall.Support) + 0.5),
				}, evaluation.MetricAll)
			}

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tREFERENCE\tHYPOTHESIS\tPREC\tRECALL\tF1\tACC")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\n",
					r.ID, r.CreatedAt.Format(time.DateTime), r.Reference, r.Hypothesis,
					r.Overall.Precision, r.Overall.Recall, r.Overall.F1, r.Accuracy)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "runs.db", "Run history database")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

// referenceTags returns the sorted tags with non-zero support.
func referenceTags(scores map[string]evaluation.Score) []string {
	var tags []string
	for tag, s := range scores {
		if tag != evaluation.Overall && s.Support > 0 {
			tags = append(tags, tag)
		}
	}
	slices.Sort(tags)
	return tags
}
