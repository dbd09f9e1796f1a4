package corpus

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
)

// WriteOptions controls how a corpus is written back out.
type WriteOptions struct {
	// Docstarts emits a -DOCSTART- record and a blank line before every
	// paragraph.
	Docstarts bool
	// BlankLines emits a blank line after every sentence.
	BlankLines bool
}

// Write emits paragraphs in the word<TAB>tag layout.
func Write(w io.Writer, paragraphs []Paragraph, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	for _, para := range paragraphs {
		if opts.Docstarts {
			if _, err := fmt.Fprintf(bw, "%s\t%s\n\n", DocstartWord, DocstartTag); err != nil {
				return err
			}
		}
		for _, sent := range para {
			for _, pair := range sent {
				if _, err := fmt.Fprintf(bw, "%s\t%s\n", pair.Word, pair.Tag); err != nil {
					return err
				}
			}
			if opts.BlankLines {
				if err := bw.WriteByte('\n'); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}

// WritePairs emits tokens one record per line with no sentence breaks.
func WritePairs(w io.Writer, pairs []WordTagPair) error {
	bw := bufio.NewWriter(w)
	for _, pair := range pairs {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", pair.Word, pair.Tag); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Summarize writes the corpus statistics in a human readable form.
func (c *Corpus) Summarize(w io.Writer) error {
	var b strings.Builder
	b.WriteString("The corpus has:\n")
	fmt.Fprintf(&b, "%d paragraphs\n", c.stats.Paragraphs)
	fmt.Fprintf(&b, "%d sentences\n", c.stats.Sentences)
	fmt.Fprintf(&b, "%d word tokens\n", c.stats.Tokens)
	for _, tag := range c.stats.Tags {
		fmt.Fprintf(&b, "%d word tokens tagged with %s\n", c.stats.TagCounts[tag], tag)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Format renders a sentence as space separated word/tag tokens.
func (s Sentence) Format() string {
	parts := make([]string, len(s))
	for i, pair := range s {
		parts[i] = pair.String()
	}
	return strings.Join(parts, "  ")
}

// SampleSentences returns up to size sentences drawn without replacement.
func (c *Corpus) SampleSentences(rng *rand.Rand, size int) []Sentence {
	idx := sampleIndices(rng, len(c.sentences), size)
	out := make([]Sentence, len(idx))
	for i, j := range idx {
		out[i] = c.sentences[j]
	}
	return out
}

// SampleWords returns up to size words tagged with tag, drawn without
// replacement.
func (c *Corpus) SampleWords(rng *rand.Rand, tag string, size int) []string {
	words := c.tagIndex[tag]
	idx := sampleIndices(rng, len(words), size)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = words[j]
	}
	return out
}

func sampleIndices(rng *rand.Rand, n, size int) []int {
	perm := rng.Perm(n)
	if size < len(perm) {
		perm = perm[:max(size, 0)]
	}
	return perm
}
