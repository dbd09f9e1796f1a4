package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag"
	"github.com/happyhackingspace/nertag/corpus"
)

func (c *CLI) newPredictCommand() *cobra.Command {
	var modelPath, outputPath string
	var cf corpusFlags

	cmd := &cobra.Command{
		Use:   "predict <file>",
		Short: "Tag a corpus with a trained model",
		Args:  cobra.ExactArgs(1),
		Example: `  nertag predict data/dev.conll --model model.json > dev.pred.conll
  nertag predict data/test.conll --model model.json --output test.pred.conll`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			input, err := corpus.Load(args[0], cf.apply(cmd, cfg.CorpusOptions()))
			if err != nil {
				return err
			}

			start := time.Now()
			m, err := nertag.Load(modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "kind", m.Kind(), "duration", time.Since(start))

			sents, err := m.PredictSentences(input.Sentences())
			if err != nil {
				return err
			}
			slog.Debug("Tagging completed", "sentences", len(sents), "duration", time.Since(start))

			out := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outputPath, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}
			return writeSentences(out, sents)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Path to model file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write predictions to a file instead of stdout")
	cf.register(cmd)
	return cmd
}

func writeSentences(w io.Writer, sents []corpus.Sentence) error {
	return corpus.Write(w, []corpus.Paragraph{sents}, corpus.WriteOptions{BlankLines: true})
}
