package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag"
	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/evaluation"
	"github.com/happyhackingspace/nertag/internal/runlog"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var modelPath, metricName, recordPath string
	var showErrors, confusion, asJSON bool
	var cf corpusFlags

	cmd := &cobra.Command{
		Use:   "evaluate <reference> [hypothesis]",
		Short: "Score a tagging against a reference with precision, recall and F1",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  # Compare two tagged files
  nertag evaluate data/dev.conll dev.pred.conll

  # Tag the reference with a model, then score it
  nertag evaluate data/dev.conll --model model.json --confusion

  # Only F1, list every wrong tag, keep the run in history
  nertag evaluate data/dev.conll dev.pred.conll --metric f1 --show-errors --record runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metric") {
				cfg.Evaluation.Metric = metricName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ec := cfg.EvalConfig()
			ec.Corpus = cf.apply(cmd, ec.Corpus)
			ec.RecordMismatches = showErrors

			start := time.Now()
			var result *evaluation.Result
			hypothesis := ""
			if len(args) == 2 {
				hypothesis = args[1]
				slog.Info("Evaluating", "reference", args[0], "hypothesis", hypothesis)
				result, err = nertag.EvaluateFiles(args[0], hypothesis, ec)
			} else {
				if !cmd.Flags().Changed("model") {
					return fmt.Errorf("either a hypothesis file or --model is required")
				}
				slog.Info("Evaluating", "reference", args[0], "model", modelPath)
				result, err = evaluateModel(args[0], modelPath, ec)
				hypothesis = modelPath
			}
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			if recordPath != "" {
				model := ""
				if len(args) == 1 {
					model = modelPath
				}
				if err := recordRun(cmd, recordPath, runlog.NewRun(args[0], hypothesis, model, result)); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}
			if showErrors {
				if err := evaluation.WriteMismatches(out, result.Mismatches); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			if err := evaluation.WriteReport(out, result, cfg.Metric()); err != nil {
				return err
			}
			if confusion {
				fmt.Fprintln(out)
				return evaluation.WriteConfusion(out, result)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Tag the reference with this model instead of reading a hypothesis file")
	cmd.Flags().StringVar(&metricName, "metric", "all", "Metric to report: all, precision, recall or f1")
	cmd.Flags().BoolVar(&showErrors, "show-errors", false, "List every position where the tags differ")
	cmd.Flags().BoolVar(&confusion, "confusion", false, "Print the confusion matrix")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	cmd.Flags().StringVar(&recordPath, "record", "", "Append the run to this SQLite history database")
	cf.register(cmd)
	return cmd
}

func evaluateModel(refPath, modelPath string, ec *nertag.EvalConfig) (*evaluation.Result, error) {
	ref, err := corpus.Load(refPath, ec.Corpus)
	if err != nil {
		return nil, err
	}
	m, err := nertag.Load(modelPath)
	if err != nil {
		return nil, err
	}
	return nertag.Evaluate(m, ref, ec)
}

func recordRun(cmd *cobra.Command, path string, run runlog.Run) error {
	store, err := runlog.Open(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer func() { _ = store.Close() }()
	id, err := store.Record(cmd.Context(), run)
	if err != nil {
		return err
	}
	slog.Info("Run recorded", "id", id, "db", path)
	return nil
}
