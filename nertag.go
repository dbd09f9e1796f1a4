// Package nertag trains and evaluates per-token named entity taggers on
// CoNLL corpora.
//
// The pipeline reads a corpus, fits a vocabulary on the training split,
// trains a classifier over vocabulary ids and scores its output against a
// reference tagging.
//
//	m, _ := nertag.Train("data/train.conll", nil)
//	dev, _ := corpus.Load("data/dev.conll", corpus.DefaultOptions())
//	result, _ := nertag.Evaluate(m, dev, nil)
//	fmt.Println(result.Scores[evaluation.Overall].F1)
package nertag

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/tagger"
	"github.com/happyhackingspace/nertag/vocab"
)

// Model is a fitted vocabulary together with a classifier trained over its
// ids.
type Model struct {
	vocab    *vocab.Vocabulary
	features string
	clf      tagger.Classifier
}

type modelFile struct {
	Vocabulary *vocab.Vocabulary `json:"vocabulary"`
	Tagger     *tagger.Envelope  `json:"tagger"`
}

var errNotInitialized = errors.New("model not initialized")

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	mf := modelFile{Vocabulary: vocab.New(vocab.DefaultConfig())}
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("nertag: parse %s: %w", path, err)
	}
	if mf.Tagger == nil {
		return nil, fmt.Errorf("nertag: %s: missing tagger", path)
	}
	clf, err := mf.Tagger.Decode()
	if err != nil {
		return nil, fmt.Errorf("nertag: %s: %w", path, err)
	}
	return &Model{vocab: mf.Vocabulary, features: mf.Tagger.Features, clf: clf}, nil
}

// Save writes the model to a single JSON file.
func (m *Model) Save(path string) error {
	if m.clf == nil {
		return fmt.Errorf("nertag: %w", errNotInitialized)
	}
	env, err := tagger.Encode(m.features, m.clf)
	if err != nil {
		return fmt.Errorf("nertag: %w", err)
	}
	data, err := json.Marshal(modelFile{Vocabulary: m.vocab, Tagger: env})
	if err != nil {
		return fmt.Errorf("nertag: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("nertag: %w", err)
	}
	return nil
}

// Kind returns the classifier kind.
func (m *Model) Kind() string { return m.clf.Kind() }

// Features returns the feature set the classifier was trained on.
func (m *Model) Features() string { return m.features }

// Vocabulary returns the fitted vocabulary.
func (m *Model) Vocabulary() *vocab.Vocabulary { return m.vocab }

// Predict tags every token of c. Input tags are ignored. The returned pairs
// carry the original surface words in corpus order.
func (m *Model) Predict(c *corpus.Corpus) ([]corpus.WordTagPair, error) {
	sents, err := m.PredictSentences(c.Sentences())
	if err != nil {
		return nil, err
	}
	var out []corpus.WordTagPair
	for _, s := range sents {
		out = append(out, s...)
	}
	return out, nil
}

// PredictSentences tags each sentence, keeping sentence boundaries.
func (m *Model) PredictSentences(sents []corpus.Sentence) ([]corpus.Sentence, error) {
	if m.clf == nil {
		return nil, fmt.Errorf("nertag: %w", errNotInitialized)
	}
	tokens, err := m.tokens(sents)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	x, err := tagger.Featurize(m.features, tokens)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}
	labels, err := m.clf.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("nertag: %w", err)
	}

	tags := m.vocab.Tags()
	out := make([]corpus.Sentence, len(sents))
	k := 0
	for i, s := range sents {
		out[i] = make(corpus.Sentence, len(s))
		for j, p := range s {
			tag, err := tags.Term(labels[k])
			if err != nil {
				return nil, fmt.Errorf("nertag: token %d: %w", k, err)
			}
			out[i][j] = corpus.WordTagPair{Word: p.Word, Tag: tag}
			k++
		}
	}
	return out, nil
}

// tokens maps sentences into the vocabulary for feature extraction.
func (m *Model) tokens(sents []corpus.Sentence) ([][]tagger.Token, error) {
	words := m.vocab.Words()
	unk, hasUnk := words.Unknown()
	out := make([][]tagger.Token, len(sents))
	for i, s := range sents {
		ids, err := m.vocab.TransformWords(s)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		out[i] = make([]tagger.Token, len(s))
		for j, p := range s {
			term := p.Word
			if hasUnk && !words.Contains(term) {
				term = unk
			}
			out[i][j] = tagger.Token{Word: p.Word, Term: term, WordID: ids[j]}
		}
	}
	return out, nil
}
