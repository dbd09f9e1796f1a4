package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrMalformedRecord is returned when a non-blank line is not a word/tag pair.
var ErrMalformedRecord = errors.New("malformed record")

// RecordError reports a malformed line with its position.
type RecordError struct {
	Path   string
	Line   int
	Text   string
	Fields int
}

func (e *RecordError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = e.Path + ":" + loc
	}
	return fmt.Sprintf("%s: %v: want 2 non-empty fields, got %d in %q", loc, ErrMalformedRecord, e.Fields, e.Text)
}

func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// maxLineSize bounds a single record line.
const maxLineSize = 1024 * 1024

// Load reads the corpus file at path.
func Load(path string, opts Options) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	c, err := Read(f, opts)
	if err != nil {
		var re *RecordError
		if errors.As(err, &re) {
			re.Path = path
		}
		return nil, err
	}
	return c, nil
}

// Read parses a corpus from r.
func Read(r io.Reader, opts Options) (*Corpus, error) {
	p := &parser{opts: opts}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(lineNo, scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return New(p.finish()), nil
}

// parser accumulates paragraphs and sentences line by line.
type parser struct {
	opts       Options
	paragraphs []Paragraph
	para       Paragraph
	sent       Sentence
	// opened is set once a -DOCSTART- has opened the current paragraph, so
	// that it is kept even when empty.
	opened bool
}

func (p *parser) line(lineNo int, text string) error {
	text = strings.TrimRight(text, "\r")
	if strings.TrimSpace(text) == "" {
		p.closeSentence()
		return nil
	}

	word, tag, err := splitRecord(text)
	if err != nil {
		err.Line = lineNo
		return err
	}
	if p.opts.NormalizeUnicode {
		word = norm.NFC.String(word)
		tag = norm.NFC.String(tag)
	}

	if word == DocstartWord {
		if p.opts.StripDocstarts {
			return nil
		}
		p.closeParagraph()
		p.opened = true
		return nil
	}

	p.sent = append(p.sent, WordTagPair{Word: word, Tag: tag})
	return nil
}

func (p *parser) closeSentence() {
	if len(p.sent) == 0 {
		return
	}
	p.para = append(p.para, p.sent)
	p.sent = nil
}

func (p *parser) closeParagraph() {
	p.closeSentence()
	if len(p.para) > 0 || p.opened {
		p.paragraphs = append(p.paragraphs, p.para)
	}
	p.para = nil
	p.opened = false
}

func (p *parser) finish() []Paragraph {
	p.closeParagraph()
	return p.paragraphs
}

// splitRecord splits a record on tabs, or on runs of whitespace when the line
// holds no tab.
func splitRecord(text string) (string, string, *RecordError) {
	var fields []string
	if strings.Contains(text, "\t") {
		fields = strings.Split(text, "\t")
	} else {
		fields = strings.Fields(text)
	}
	if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
		return "", "", &RecordError{Text: text, Fields: countNonEmpty(fields)}
	}
	return fields[0], fields[1], nil
}

func countNonEmpty(fields []string) int {
	n := 0
	for _, f := range fields {
		if f != "" {
			n++
		}
	}
	return n
}
