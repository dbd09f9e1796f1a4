// Package config loads nertag settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/nertag"
	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/evaluation"
	"github.com/happyhackingspace/nertag/tagger"
	"github.com/happyhackingspace/nertag/vocab"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the top-level configuration file.
type Config struct {
	Corpus     Corpus     `yaml:"corpus"`
	Vocabulary Vocabulary `yaml:"vocabulary"`
	Model      Model      `yaml:"model"`
	Evaluation Evaluation `yaml:"evaluation"`
}

// Corpus configures the corpus reader.
type Corpus struct {
	StripDocstarts   bool `yaml:"strip_docstarts"`
	NormalizeUnicode bool `yaml:"normalize_unicode"`
}

// Vocabulary configures vocabulary construction.
type Vocabulary struct {
	UnknownWord  string `yaml:"unknown_word"`
	UnknownTag   string `yaml:"unknown_tag"`
	MinWordCount int    `yaml:"min_word_count"`
}

// Model configures the classifier.
type Model struct {
	Kind     string  `yaml:"kind"`
	Features string  `yaml:"features"`
	C        float64 `yaml:"c"`
	MaxIter  int     `yaml:"max_iter"`
}

// Evaluation configures scoring output.
type Evaluation struct {
	Metric string `yaml:"metric"`
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := corpus.DefaultOptions()
	vc := vocab.DefaultConfig()
	ll := tagger.DefaultLogLinearConfig()
	return &Config{
		Corpus: Corpus{
			StripDocstarts:   opts.StripDocstarts,
			NormalizeUnicode: opts.NormalizeUnicode,
		},
		Vocabulary: Vocabulary{
			UnknownWord:  vc.UnknownWord,
			UnknownTag:   vc.UnknownTag,
			MinWordCount: vc.MinWordCount,
		},
		Model: Model{
			Kind:    tagger.KindMajority,
			C:       ll.C,
			MaxIter: ll.MaxIter,
		},
		Evaluation: Evaluation{Metric: string(evaluation.MetricAll)},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Vocabulary.MinWordCount < 0 {
		return fmt.Errorf("%w: vocabulary.min_word_count %d is negative", ErrInvalidConfig, c.Vocabulary.MinWordCount)
	}
	if !slices.Contains(tagger.Kinds(), c.Model.Kind) {
		return fmt.Errorf("%w: model.kind %q", ErrInvalidConfig, c.Model.Kind)
	}
	if c.Model.Features != "" && !slices.Contains(tagger.FeatureSets(), c.Model.Features) {
		return fmt.Errorf("%w: model.features %q", ErrInvalidConfig, c.Model.Features)
	}
	if c.Model.C <= 0 {
		return fmt.Errorf("%w: model.c must be positive", ErrInvalidConfig)
	}
	if c.Model.MaxIter < 0 {
		return fmt.Errorf("%w: model.max_iter %d is negative", ErrInvalidConfig, c.Model.MaxIter)
	}
	if _, err := evaluation.ParseMetric(c.Evaluation.Metric); err != nil {
		return fmt.Errorf("%w: evaluation.metric: %v", ErrInvalidConfig, err)
	}
	return nil
}

// CorpusOptions returns the corpus reader options.
func (c *Config) CorpusOptions() corpus.Options {
	return corpus.Options{
		StripDocstarts:   c.Corpus.StripDocstarts,
		NormalizeUnicode: c.Corpus.NormalizeUnicode,
	}
}

// VocabConfig returns the vocabulary settings.
func (c *Config) VocabConfig() vocab.Config {
	return vocab.Config{
		UnknownWord:  c.Vocabulary.UnknownWord,
		UnknownTag:   c.Vocabulary.UnknownTag,
		MinWordCount: c.Vocabulary.MinWordCount,
	}
}

// TrainConfig returns the training configuration.
func (c *Config) TrainConfig() *nertag.TrainConfig {
	tc := nertag.DefaultTrainConfig()
	tc.Corpus = c.CorpusOptions()
	tc.Vocabulary = c.VocabConfig()
	tc.Kind = c.Model.Kind
	tc.Features = c.Model.Features
	tc.Tagger.LogLinear.C = c.Model.C
	tc.Tagger.LogLinear.MaxIter = c.Model.MaxIter
	return tc
}

// EvalConfig returns the evaluation configuration.
func (c *Config) EvalConfig() *nertag.EvalConfig {
	ec := nertag.DefaultEvalConfig()
	ec.Corpus = c.CorpusOptions()
	return ec
}

// Metric returns the selected evaluation metric.
func (c *Config) Metric() evaluation.Metric {
	m, err := evaluation.ParseMetric(c.Evaluation.Metric)
	if err != nil {
		return evaluation.MetricAll
	}
	return m
}
