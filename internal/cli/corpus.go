package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/internal/storage"
)

// corpusFlags are the reader flags shared by commands that load corpora.
type corpusFlags struct {
	keepDocstarts bool
	nfc           bool
}

func (f *corpusFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.keepDocstarts, "keep-docstarts", false, "Use -DOCSTART- records as paragraph boundaries instead of dropping them")
	cmd.Flags().BoolVar(&f.nfc, "nfc", false, "Normalize words and tags to Unicode NFC")
}

// apply overrides opts with the flags the user set.
func (f *corpusFlags) apply(cmd *cobra.Command, opts corpus.Options) corpus.Options {
	if cmd.Flags().Changed("keep-docstarts") {
		opts.StripDocstarts = !f.keepDocstarts
	}
	if cmd.Flags().Changed("nfc") {
		opts.NormalizeUnicode = f.nfc
	}
	return opts
}

func (c *CLI) newCorpusCommand() *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect CoNLL corpus files",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	corpusCmd.AddCommand(c.newCorpusSummarizeCommand())
	corpusCmd.AddCommand(c.newCorpusSampleCommand())
	corpusCmd.AddCommand(c.newCorpusPrintCommand())
	return corpusCmd
}

func (c *CLI) newCorpusSummarizeCommand() *cobra.Command {
	var flags corpusFlags
	var dataFolder string

	cmd := &cobra.Command{
		Use:   "summarize [file...]",
		Short: "Print sentence, paragraph, token and per-tag counts",
		Example: `  nertag corpus summarize data/train.conll
  nertag corpus summarize --data-folder data --keep-docstarts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(dataFolder)
			if err != nil {
				return err
			}
			opts := flags.apply(cmd, cfg.CorpusOptions())
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if dataFolder == "" {
					return cmd.Help()
				}
				iter := storage.DefaultIterOptions()
				iter.Corpus = opts
				iter.Verbose = c.verbose
				splits, err := storage.NewStorage(dataFolder).IterSplits(iter)
				if err != nil {
					return err
				}
				for _, s := range splits {
					fmt.Fprintf(out, "== %s ==\n", s.Name)
					if err := s.Corpus.Summarize(out); err != nil {
						return err
					}
				}
				return nil
			}

			for _, path := range args {
				cp, err := corpus.Load(path, opts)
				if err != nil {
					return err
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "== %s ==\n", path)
				}
				if err := cp.Summarize(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&dataFolder, "data-folder", "", "Summarize every split in a dataset folder")
	return cmd
}

func (c *CLI) newCorpusSampleCommand() *cobra.Command {
	var flags corpusFlags
	var size int
	var seed uint64
	var words bool
	var tag string

	cmd := &cobra.Command{
		Use:   "sample <file>",
		Short: "Print random sentences, or random words carrying a tag",
		Args:  cobra.ExactArgs(1),
		Example: `  nertag corpus sample data/train.conll --size 5
  nertag corpus sample data/train.conll --words --tag B-PER --size 20 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			cp, err := corpus.Load(args[0], flags.apply(cmd, cfg.CorpusOptions()))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint64()
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			out := cmd.OutOrStdout()

			if words {
				fmt.Fprintln(out, strings.Join(cp.SampleWords(rng, tag, size), "  "))
				return nil
			}
			for _, s := range cp.SampleSentences(rng, size) {
				fmt.Fprintln(out, s.Format())
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&size, "size", 10, "Number of samples")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default: random)")
	cmd.Flags().BoolVar(&words, "words", false, "Sample words instead of sentences")
	cmd.Flags().StringVar(&tag, "tag", "O", "Tag of the sampled words")
	return cmd
}

func (c *CLI) newCorpusPrintCommand() *cobra.Command {
	var flags corpusFlags
	var blankLines bool

	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Re-emit the records of a corpus as word<TAB>tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig("")
			if err != nil {
				return err
			}
			opts := flags.apply(cmd, cfg.CorpusOptions())
			cp, err := corpus.Load(args[0], opts)
			if err != nil {
				return err
			}
			return corpus.Write(cmd.OutOrStdout(), cp.Paragraphs(), corpus.WriteOptions{
				Docstarts:  !opts.StripDocstarts,
				BlankLines: blankLines,
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&blankLines, "keep-blank-lines", false, "Keep the blank line after every sentence")
	return cmd
}
