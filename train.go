package nertag

import (
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/evaluation"
	"github.com/happyhackingspace/nertag/tagger"
	"github.com/happyhackingspace/nertag/vocab"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	Corpus     corpus.Options
	Vocabulary vocab.Config
	// Kind is the classifier kind. Empty selects tagger.KindMajority.
	Kind string
	// Features is the feature set. Empty selects the kind's default.
	Features string
	Tagger   tagger.Config
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() *TrainConfig {
	return &TrainConfig{
		Corpus:     corpus.DefaultOptions(),
		Vocabulary: vocab.DefaultConfig(),
		Kind:       tagger.KindMajority,
		Tagger:     tagger.DefaultConfig(),
	}
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Corpus corpus.Options
	// RecordMismatches keeps every misaligned position in the result.
	RecordMismatches bool
}

// DefaultEvalConfig returns the default evaluation configuration.
func DefaultEvalConfig() *EvalConfig {
	return &EvalConfig{Corpus: corpus.DefaultOptions()}
}

// Train fits a vocabulary and a classifier on the corpus at trainPath.
// A nil config uses DefaultTrainConfig.
func Train(trainPath string, config *TrainConfig) (*Model, error) {
	if config == nil {
		config = DefaultTrainConfig()
	}
	c, err := corpus.Load(trainPath, config.Corpus)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	return TrainCorpus(c, config)
}

// TrainCorpus fits a vocabulary and a classifier on c.
func TrainCorpus(c *corpus.Corpus, config *TrainConfig) (*Model, error) {
	if config == nil {
		config = DefaultTrainConfig()
	}
	if c.NumTokens() == 0 {
		return nil, fmt.Errorf("nertag: %w", tagger.ErrNoData)
	}
	kind := config.Kind
	if kind == "" {
		kind = tagger.KindMajority
	}
	features := config.Features
	if features == "" {
		features = tagger.DefaultFeatures(kind)
	}
	clf, err := tagger.New(kind, config.Tagger)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}

	v := vocab.New(config.Vocabulary)
	ids, err := v.FitTransform(c.Flatten())
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	slog.Debug("vocabulary fitted", "words", v.Words().Len(), "tags", v.Tags().Len(), "tokens", len(ids))

	m := &Model{vocab: v, features: features, clf: clf}
	tokens, err := m.tokens(c.Sentences())
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	x, err := tagger.Featurize(features, tokens)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	y := make([]int, len(ids))
	for i, p := range ids {
		y[i] = p.TagID
	}
	if err := clf.Fit(x, y); err != nil {
		return nil, fmt.Errorf("nertag: train %s: %w", kind, err)
	}
	slog.Debug("classifier trained", "kind", kind, "features", features)
	return m, nil
}

// Evaluate tags the reference corpus with m and scores the result against
// the reference tags. A nil config uses DefaultEvalConfig.
func Evaluate(m *Model, reference *corpus.Corpus, config *EvalConfig) (*evaluation.Result, error) {
	if config == nil {
		config = DefaultEvalConfig()
	}
	hyp, err := m.Predict(reference)
	if err != nil {
		return nil, err
	}
	result, err := evaluation.EvaluatePairs(reference.Flatten(), hyp, evaluation.Config{RecordMismatches: config.RecordMismatches})
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	return result, nil
}

// EvaluateFiles scores the tagging in hypPath against refPath. Both files
// are read with config.Corpus, and tags are compared position by position.
func EvaluateFiles(refPath, hypPath string, config *EvalConfig) (*evaluation.Result, error) {
	if config == nil {
		config = DefaultEvalConfig()
	}
	ref, err := corpus.Load(refPath, config.Corpus)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	hyp, err := corpus.Load(hypPath, config.Corpus)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	result, err := evaluation.EvaluatePairs(ref.Flatten(), hyp.Flatten(), evaluation.Config{RecordMismatches: config.RecordMismatches})
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	return result, nil
}
