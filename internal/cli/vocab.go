package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/internal/config"
	"github.com/happyhackingspace/nertag/vocab"
)

// vocabFlags are the vocabulary flags shared by vocab and train.
type vocabFlags struct {
	minCount    int
	unknownWord string
	unknownTag  string
}

func (f *vocabFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.minCount, "min-count", 2, "Minimum training frequency for a word to enter the vocabulary")
	cmd.Flags().StringVar(&f.unknownWord, "unknown-word", "-UNK-", "Unknown word token (empty disables the fallback)")
	cmd.Flags().StringVar(&f.unknownTag, "unknown-tag", "", "Unknown tag token (empty makes unseen tags an error)")
}

// apply overrides cfg with the flags the user set.
func (f *vocabFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("min-count") {
		cfg.Vocabulary.MinWordCount = f.minCount
	}
	if cmd.Flags().Changed("unknown-word") {
		cfg.Vocabulary.UnknownWord = f.unknownWord
	}
	if cmd.Flags().Changed("unknown-tag") {
		cfg.Vocabulary.UnknownTag = f.unknownTag
	}
}

func (c *CLI) newVocabCommand() *cobra.Command {
	vocabCmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build vocabularies from a training corpus",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	vocabCmd.AddCommand(c.newVocabUnkifyCommand())
	vocabCmd.AddCommand(c.newVocabSaveCommand())
	return vocabCmd
}

// fitVocab loads the training corpus and fits a vocabulary on it.
func (c *CLI) fitVocab(cmd *cobra.Command, flags *vocabFlags, cf *corpusFlags, trainPath string) (*vocab.Vocabulary, *config.Config, error) {
	cfg, err := c.loadConfig("")
	if err != nil {
		return nil, nil, err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	train, err := corpus.Load(trainPath, cf.apply(cmd, cfg.CorpusOptions()))
	if err != nil {
		return nil, nil, err
	}
	v := vocab.New(cfg.VocabConfig())
	v.Fit(train.Flatten())
	slog.Info("Vocabulary fitted", "words", v.Words().Len(), "tags", v.Tags().Len())
	return v, cfg, nil
}

func (c *CLI) newVocabUnkifyCommand() *cobra.Command {
	var flags vocabFlags
	var cf corpusFlags
	var vocabDir string

	cmd := &cobra.Command{
		Use:   "unkify [train-file] <input-file>",
		Short: "Replace words outside the training vocabulary with the unknown word",
		Args:  cobra.RangeArgs(1, 2),
		Example: `  nertag vocab unkify data/train.conll data/dev.conll > dev.unk.conll
  nertag vocab unkify data/train.conll data/dev.conll --min-count 3
  nertag vocab unkify data/dev.conll --vocab-dir vocab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				v   *vocab.Vocabulary
				cfg *config.Config
				err error
			)
			switch {
			case vocabDir != "" && len(args) == 1:
				v, cfg, err = c.loadVocab(cmd, &flags, vocabDir)
			case vocabDir == "" && len(args) == 2:
				v, cfg, err = c.fitVocab(cmd, &flags, &cf, args[0])
			default:
				return fmt.Errorf("pass either <train-file> <input-file> or <input-file> --vocab-dir")
			}
			if err != nil {
				return err
			}
			opts := cf.apply(cmd, cfg.CorpusOptions())
			opts.StripDocstarts = false
			input, err := corpus.Load(args[len(args)-1], opts)
			if err != nil {
				return err
			}
			return corpus.Write(cmd.OutOrStdout(), v.UnkifyParagraphs(input.Paragraphs()), corpus.WriteOptions{
				Docstarts:  true,
				BlankLines: true,
			})
		},
	}
	flags.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVar(&vocabDir, "vocab-dir", "", "Use the tables written by 'vocab save' instead of fitting a training file")
	return cmd
}

// loadVocab restores a vocabulary saved with 'vocab save'.
func (c *CLI) loadVocab(cmd *cobra.Command, flags *vocabFlags, dir string) (*vocab.Vocabulary, *config.Config, error) {
	cfg, err := c.loadConfig("")
	if err != nil {
		return nil, nil, err
	}
	flags.apply(cmd, cfg)
	v, err := vocab.LoadTables(dir, cfg.VocabConfig())
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Vocabulary loaded", "dir", dir, "words", v.Words().Len(), "tags", v.Tags().Len())
	return v, cfg, nil
}

func (c *CLI) newVocabSaveCommand() *cobra.Command {
	var flags vocabFlags
	var cf corpusFlags

	cmd := &cobra.Command{
		Use:   "save <train-file> <output-dir>",
		Short: "Write the word and tag tables of a fitted vocabulary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := c.fitVocab(cmd, &flags, &cf, args[0])
			if err != nil {
				return err
			}
			if err := v.Save(args[1]); err != nil {
				return err
			}
			slog.Info("Vocabulary saved", "dir", args[1], "words", vocab.WordsFile, "tags", vocab.TagsFile)
			return nil
		},
	}
	flags.register(cmd)
	cf.register(cmd)
	return cmd
}
