package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag"
	"github.com/happyhackingspace/nertag/internal/storage"
	"github.com/happyhackingspace/nertag/tagger"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var dataFolder, trainPath string
	var kind, features string
	var reg float64
	var maxIter int
	var progress bool
	var vf vocabFlags
	var cf corpusFlags

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a tagger on a CoNLL training corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  nertag train model.json --data-folder data
  nertag train model.json --train data/train.conll --kind memo
  nertag train model.json --kind loglinear --c 2 --max-iter 50 --progress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			cfg, err := c.loadConfig(dataFolder)
			if err != nil {
				return err
			}
			vf.apply(cmd, cfg)
			if cmd.Flags().Changed("kind") {
				cfg.Model.Kind = kind
				if !cmd.Flags().Changed("features") {
					cfg.Model.Features = ""
				}
			}
			if cmd.Flags().Changed("features") {
				cfg.Model.Features = features
			}
			if cmd.Flags().Changed("c") {
				cfg.Model.C = reg
			}
			if cmd.Flags().Changed("max-iter") {
				cfg.Model.MaxIter = maxIter
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if trainPath == "" {
				if trainPath, err = storage.NewStorage(dataFolder).Path(storage.SplitTrain); err != nil {
					return err
				}
			}

			tc := cfg.TrainConfig()
			tc.Corpus = cf.apply(cmd, tc.Corpus)
			if progress && tc.Kind == tagger.KindLogLinear {
				stop := attachProgress(&tc.Tagger.LogLinear)
				defer stop()
			}

			slog.Info("Training tagger", "train", trainPath, "kind", tc.Kind, "output", modelPath)
			start := time.Now()
			m, err := nertag.Train(trainPath, tc)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := m.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath, "features", m.Features())
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Path to dataset folder")
	cmd.Flags().StringVar(&trainPath, "train", "", "Training corpus (default: <data-folder>/train.conll)")
	cmd.Flags().StringVar(&kind, "kind", tagger.KindMajority, fmt.Sprintf("Classifier kind %v", tagger.Kinds()))
	cmd.Flags().StringVar(&features, "features", "", fmt.Sprintf("Feature set %v (default: per kind)", tagger.FeatureSets()))
	cmd.Flags().Float64Var(&reg, "c", 5.0, "Inverse L2 regularization strength (loglinear)")
	cmd.Flags().IntVar(&maxIter, "max-iter", 100, "Maximum L-BFGS iterations (loglinear)")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show a progress bar while training (loglinear)")
	vf.register(cmd)
	cf.register(cmd)
	return cmd
}

// attachProgress renders L-BFGS iterations as a progress bar. The returned
// function stops rendering.
func attachProgress(config *tagger.LogLinearConfig) func() {
	uiprogress.Start()
	bar := uiprogress.AddBar(config.MaxIter)
	bar.AppendCompleted()
	bar.PrependElapsed()
	config.Progress = func(iter int, loss float64) {
		_ = bar.Set(iter + 1)
	}
	return func() {
		_ = bar.Set(config.MaxIter)
		uiprogress.Stop()
	}
}
