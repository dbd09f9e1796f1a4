package vocab

import (
	"encoding/json"
	"fmt"

	"github.com/happyhackingspace/nertag/corpus"
)

// Config holds vocabulary construction settings.
type Config struct {
	// UnknownWord is the fallback for out-of-vocabulary words. Empty disables
	// the fallback.
	UnknownWord string `json:"unknown_word"`
	// UnknownTag is the fallback for unseen tags. Empty disables the
	// fallback, so unseen tags fail with ErrUnknownTerm.
	UnknownTag string `json:"unknown_tag"`
	// MinWordCount is the training frequency a word needs to be admitted.
	// A word is admitted when its count is at least MinWordCount.
	MinWordCount int `json:"min_word_count"`
}

// DefaultConfig returns the default vocabulary settings.
func DefaultConfig() Config {
	return Config{
		UnknownWord:  "-UNK-",
		MinWordCount: 2,
	}
}

// IDPair is a token mapped into id space.
type IDPair struct {
	WordID int `json:"word_id"`
	TagID  int `json:"tag_id"`
}

// Vocabulary pairs a word dict and a tag dict built from a training corpus.
type Vocabulary struct {
	config Config
	words  *TermDict
	tags   *TermDict
	counts map[string]int
}

// New creates an empty, unfitted vocabulary.
func New(config Config) *Vocabulary {
	v := &Vocabulary{config: config}
	v.reset()
	return v
}

func (v *Vocabulary) reset() {
	v.words = newDict(v.config.UnknownWord)
	v.tags = newDict(v.config.UnknownTag)
	v.counts = make(map[string]int)
}

func newDict(unknown string) *TermDict {
	if unknown == "" {
		return NewTermDict()
	}
	return NewTermDictWithUnknown(unknown)
}

// Config returns the vocabulary settings.
func (v *Vocabulary) Config() Config { return v.config }

// Words returns the word dict.
func (v *Vocabulary) Words() *TermDict { return v.words }

// Tags returns the tag dict.
func (v *Vocabulary) Tags() *TermDict { return v.tags }

// Count returns the training frequency of word seen by the last Fit.
func (v *Vocabulary) Count(word string) int { return v.counts[word] }

// Fit rebuilds both dicts from pairs and freezes them. Words are admitted in
// first-seen order once their frequency reaches MinWordCount. Every tag in
// pairs is admitted.
func (v *Vocabulary) Fit(pairs []corpus.WordTagPair) {
	v.reset()
	for _, p := range pairs {
		v.counts[p.Word]++
	}
	for _, p := range pairs {
		if v.admits(p.Word) {
			v.words.Add(p.Word)
		}
		v.tags.Add(p.Tag)
	}
	v.words.Freeze()
	v.tags.Freeze()
}

func (v *Vocabulary) admits(word string) bool {
	return v.counts[word] >= v.config.MinWordCount
}

// Transform maps pairs to ids.
func (v *Vocabulary) Transform(pairs []corpus.WordTagPair) ([]IDPair, error) {
	out := make([]IDPair, len(pairs))
	for i, p := range pairs {
		wid, err := v.words.ID(p.Word)
		if err != nil {
			return nil, fmt.Errorf("token %d word: %w", i, err)
		}
		tid, err := v.tags.ID(p.Tag)
		if err != nil {
			return nil, fmt.Errorf("token %d tag: %w", i, err)
		}
		out[i] = IDPair{WordID: wid, TagID: tid}
	}
	return out, nil
}

// TransformWords maps words to ids, ignoring tags.
func (v *Vocabulary) TransformWords(pairs []corpus.WordTagPair) ([]int, error) {
	out := make([]int, len(pairs))
	for i, p := range pairs {
		wid, err := v.words.ID(p.Word)
		if err != nil {
			return nil, fmt.Errorf("token %d word: %w", i, err)
		}
		out[i] = wid
	}
	return out, nil
}

// FitTransform fits the vocabulary on pairs and maps them to ids.
func (v *Vocabulary) FitTransform(pairs []corpus.WordTagPair) ([]IDPair, error) {
	v.Fit(pairs)
	return v.Transform(pairs)
}

// InverseTransform maps ids back to words and tags.
func (v *Vocabulary) InverseTransform(ids []IDPair) ([]corpus.WordTagPair, error) {
	out := make([]corpus.WordTagPair, len(ids))
	for i, p := range ids {
		word, err := v.words.Term(p.WordID)
		if err != nil {
			return nil, fmt.Errorf("token %d word: %w", i, err)
		}
		tag, err := v.tags.Term(p.TagID)
		if err != nil {
			return nil, fmt.Errorf("token %d tag: %w", i, err)
		}
		out[i] = corpus.WordTagPair{Word: word, Tag: tag}
	}
	return out, nil
}

// Unkify replaces out-of-vocabulary words with the unknown word. Without an
// unknown word configured, pairs are returned unchanged.
func (v *Vocabulary) Unkify(pairs []corpus.WordTagPair) []corpus.WordTagPair {
	unk, ok := v.words.Unknown()
	out := make([]corpus.WordTagPair, len(pairs))
	for i, p := range pairs {
		if ok && !v.words.Contains(p.Word) {
			p.Word = unk
		}
		out[i] = p
	}
	return out
}

// UnkifyParagraphs applies Unkify sentence by sentence.
func (v *Vocabulary) UnkifyParagraphs(paragraphs []corpus.Paragraph) []corpus.Paragraph {
	out := make([]corpus.Paragraph, len(paragraphs))
	for i, para := range paragraphs {
		out[i] = make(corpus.Paragraph, len(para))
		for j, sent := range para {
			out[i][j] = corpus.Sentence(v.Unkify(sent))
		}
	}
	return out
}

type vocabularyJSON struct {
	Config Config    `json:"config"`
	Words  *TermDict `json:"words"`
	Tags   *TermDict `json:"tags"`
}

// MarshalJSON implements json.Marshaler.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(vocabularyJSON{Config: v.config, Words: v.words, Tags: v.tags})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vocabulary) UnmarshalJSON(data []byte) error {
	aux := vocabularyJSON{Words: NewTermDict(), Tags: NewTermDict()}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.config = aux.Config
	v.words = aux.Words
	v.tags = aux.Tags
	v.counts = make(map[string]int)
	return nil
}
