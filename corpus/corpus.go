// Package corpus reads tab-separated, sentence-segmented tagged corpora in the
// CoNLL layout used for named entity tagging.
//
// A corpus file holds one word<TAB>tag record per line. A blank line ends a
// sentence, and a -DOCSTART- record (followed by a blank line) starts a new
// paragraph:
//
//	-DOCSTART-	O
//
//	Paris	LOC
//	is	O
//	nice	O
//
package corpus

import (
	"iter"
)

const (
	// DocstartWord is the sentinel word that marks a paragraph boundary.
	DocstartWord = "-DOCSTART-"
	// DocstartTag is the placeholder tag written next to DocstartWord.
	DocstartTag = "O"
)

// WordTagPair is a single tagged token.
type WordTagPair struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

func (p WordTagPair) String() string {
	return p.Word + "/" + p.Tag
}

// Sentence is an ordered run of tokens between blank lines.
type Sentence []WordTagPair

// Paragraph is an ordered run of sentences between -DOCSTART- markers.
type Paragraph []Sentence

// Options controls how a corpus is segmented.
type Options struct {
	// StripDocstarts drops -DOCSTART- records entirely. The corpus then
	// holds a single paragraph segmented by blank lines only.
	StripDocstarts bool
	// NormalizeUnicode rewrites words and tags to NFC.
	NormalizeUnicode bool
}

// DefaultOptions returns the options used by the command line tools.
func DefaultOptions() Options {
	return Options{StripDocstarts: true}
}

// Stats holds aggregate counts computed once at load time.
type Stats struct {
	Sentences  int
	Paragraphs int
	Tokens     int
	// Tags lists the distinct tags in first-seen order.
	Tags      []string
	TagCounts map[string]int
}

// Corpus is a fully materialized tagged corpus.
type Corpus struct {
	paragraphs []Paragraph
	sentences  []Sentence
	stats      Stats
	tagIndex   map[string][]string
}

// New builds a corpus from already segmented paragraphs.
func New(paragraphs []Paragraph) *Corpus {
	c := &Corpus{paragraphs: paragraphs}
	c.index()
	return c
}

// index computes the cached statistics and the per-tag word index.
func (c *Corpus) index() {
	c.sentences = c.sentences[:0]
	c.tagIndex = make(map[string][]string)
	c.stats = Stats{
		Paragraphs: len(c.paragraphs),
		TagCounts:  make(map[string]int),
	}
	for _, para := range c.paragraphs {
		for _, sent := range para {
			c.sentences = append(c.sentences, sent)
			for _, pair := range sent {
				if _, ok := c.stats.TagCounts[pair.Tag]; !ok {
					c.stats.Tags = append(c.stats.Tags, pair.Tag)
				}
				c.stats.TagCounts[pair.Tag]++
				c.tagIndex[pair.Tag] = append(c.tagIndex[pair.Tag], pair.Word)
			}
			c.stats.Tokens += len(sent)
		}
	}
	c.stats.Sentences = len(c.sentences)
}

// Stats returns the cached corpus statistics.
func (c *Corpus) Stats() Stats {
	return c.stats
}

// NumSentences returns the number of sentences.
func (c *Corpus) NumSentences() int { return c.stats.Sentences }

// NumParagraphs returns the number of paragraphs.
func (c *Corpus) NumParagraphs() int { return c.stats.Paragraphs }

// NumTokens returns the total number of tokens.
func (c *Corpus) NumTokens() int { return c.stats.Tokens }

// TagCount returns the number of tokens tagged with tag.
func (c *Corpus) TagCount(tag string) int { return c.stats.TagCounts[tag] }

// Paragraphs returns the paragraphs in file order.
func (c *Corpus) Paragraphs() []Paragraph {
	return c.paragraphs
}

// Sentences returns every sentence in file order.
func (c *Corpus) Sentences() []Sentence {
	return c.sentences
}

// Flatten returns every token in file order.
func (c *Corpus) Flatten() []WordTagPair {
	out := make([]WordTagPair, 0, c.stats.Tokens)
	for _, sent := range c.sentences {
		out = append(out, sent...)
	}
	return out
}

// All iterates over sentences.
func (c *Corpus) All() iter.Seq2[int, Sentence] {
	return func(yield func(int, Sentence) bool) {
		for i, sent := range c.sentences {
			if !yield(i, sent) {
				return
			}
		}
	}
}

// Words iterates over tokens without materializing a flat slice.
func (c *Corpus) Words() iter.Seq[WordTagPair] {
	return func(yield func(WordTagPair) bool) {
		for _, sent := range c.sentences {
			for _, pair := range sent {
				if !yield(pair) {
					return
				}
			}
		}
	}
}

// Tags returns the tag of every token in file order.
func (c *Corpus) Tags() []string {
	out := make([]string, 0, c.stats.Tokens)
	for pair := range c.Words() {
		out = append(out, pair.Tag)
	}
	return out
}

// WordsWithTag returns the word of every token tagged with tag, in file order.
func (c *Corpus) WordsWithTag(tag string) []string {
	return c.tagIndex[tag]
}
