package corpus

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func read(t *testing.T, text string, opts Options) *Corpus {
	t.Helper()
	c, err := Read(strings.NewReader(text), opts)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return c
}

func TestReadSingleSentence(t *testing.T) {
	c := read(t, "Paris\tLOC\nis\tO\nnice\tO\n\n", Options{})

	if c.NumParagraphs() != 1 {
		t.Errorf("NumParagraphs = %d, want 1", c.NumParagraphs())
	}
	if c.NumSentences() != 1 {
		t.Errorf("NumSentences = %d, want 1", c.NumSentences())
	}
	if c.NumTokens() != 3 {
		t.Errorf("NumTokens = %d, want 3", c.NumTokens())
	}
	want := Sentence{{"Paris", "LOC"}, {"is", "O"}, {"nice", "O"}}
	if !reflect.DeepEqual(c.Sentences()[0], want) {
		t.Errorf("sentence = %v, want %v", c.Sentences()[0], want)
	}
}

func TestReadDocstartParagraphs(t *testing.T) {
	text := "-DOCSTART-\tO\n\nEU\tORG\nrejects\tO\n\n-DOCSTART-\tO\n"
	c := read(t, text, Options{})

	if c.NumParagraphs() != 2 {
		t.Errorf("NumParagraphs = %d, want 2", c.NumParagraphs())
	}
	if c.NumSentences() != 1 {
		t.Errorf("NumSentences = %d, want 1", c.NumSentences())
	}
	if c.NumTokens() != 2 {
		t.Errorf("NumTokens = %d, want 2", c.NumTokens())
	}
	if c.TagCount("O") != 1 {
		t.Errorf("TagCount(O) = %d, want 1 (sentinel must not be counted)", c.TagCount("O"))
	}
}

func TestReadDocstartWithoutPrecedingBlank(t *testing.T) {
	text := "a\tO\nb\tO\n-DOCSTART-\tO\n\nc\tPER\n"
	c := read(t, text, Options{})

	paras := c.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("NumParagraphs = %d, want 2", len(paras))
	}
	if len(paras[0]) != 1 || len(paras[0][0]) != 2 {
		t.Errorf("first paragraph = %v", paras[0])
	}
	if len(paras[1]) != 1 || paras[1][0][0].Word != "c" {
		t.Errorf("second paragraph = %v", paras[1])
	}
}

func TestReadStripDocstarts(t *testing.T) {
	text := "-DOCSTART-\tO\n\nEU\tORG\n\n-DOCSTART-\tO\n\nPeter\tPER\nBlackburn\tPER\n"
	c := read(t, text, Options{StripDocstarts: true})

	if c.NumParagraphs() != 1 {
		t.Errorf("NumParagraphs = %d, want 1", c.NumParagraphs())
	}
	if c.NumSentences() != 2 {
		t.Errorf("NumSentences = %d, want 2", c.NumSentences())
	}
	for pair := range c.Words() {
		if pair.Word == DocstartWord {
			t.Error("docstart record should be stripped")
		}
	}
}

func TestReadEmpty(t *testing.T) {
	c := read(t, "\n\n", Options{})
	if c.NumParagraphs() != 0 || c.NumSentences() != 0 || c.NumTokens() != 0 {
		t.Errorf("stats = %+v, want all zero", c.Stats())
	}
}

func TestReadWhitespaceSeparated(t *testing.T) {
	c := read(t, "Paris LOC\r\nis   O\r\n", Options{})
	want := []WordTagPair{{"Paris", "LOC"}, {"is", "O"}}
	if got := c.Flatten(); !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten = %v, want %v", got, want)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{"one field", "Paris\tLOC\nis\n", 2},
		{"three fields", "Paris\tLOC\tB\n", 1},
		{"empty tag", "\nParis\t\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.text), Options{})
			if !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("err = %v, want ErrMalformedRecord", err)
			}
			var re *RecordError
			if !errors.As(err, &re) {
				t.Fatalf("err = %T, want *RecordError", err)
			}
			if re.Line != tt.line {
				t.Errorf("Line = %d, want %d", re.Line, tt.line)
			}
		})
	}
}

func TestLoadReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conll")
	if err := os.WriteFile(path, []byte("oops\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("err = %v, want path in message", err)
	}
}

func TestNormalizeUnicode(t *testing.T) {
	decomposed := "Jose\u0301\tPER\n"
	c := read(t, decomposed, Options{NormalizeUnicode: true})
	if got := c.Flatten()[0].Word; got != "Jos\u00e9" {
		t.Errorf("word = %q, want NFC form", got)
	}
}

func TestStatsAndIndex(t *testing.T) {
	c := read(t, "a\tO\nB\tPER\n\nc\tO\n", Options{})
	st := c.Stats()
	if !reflect.DeepEqual(st.Tags, []string{"O", "PER"}) {
		t.Errorf("Tags = %v, want first-seen order", st.Tags)
	}
	if st.TagCounts["O"] != 2 || st.TagCounts["PER"] != 1 {
		t.Errorf("TagCounts = %v", st.TagCounts)
	}
	if got := c.WordsWithTag("O"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("WordsWithTag(O) = %v", got)
	}
	if got := c.Tags(); !reflect.DeepEqual(got, []string{"O", "PER", "O"}) {
		t.Errorf("Tags() = %v", got)
	}
}

func TestAllStopsEarly(t *testing.T) {
	c := read(t, "a\tO\n\nb\tO\n\nc\tO\n", Options{})
	n := 0
	for range c.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d sentences, want 2", n)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	text := "-DOCSTART-\tO\n\nEU\tORG\nrejects\tO\n\nPeter\tPER\n\n-DOCSTART-\tO\n\nx\tO\n\n"
	c := read(t, text, Options{})

	var buf bytes.Buffer
	if err := Write(&buf, c.Paragraphs(), WriteOptions{Docstarts: true, BlankLines: true}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != text {
		t.Errorf("Write =\n%q\nwant\n%q", buf.String(), text)
	}
}

func TestSummarize(t *testing.T) {
	c := read(t, "a\tO\nB\tPER\n", Options{})
	var buf bytes.Buffer
	if err := c.Summarize(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"1 sentences", "2 word tokens", "1 word tokens tagged with PER"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestSample(t *testing.T) {
	c := read(t, "a\tO\n\nb\tO\n\nc\tPER\n", Options{})
	rng := rand.New(rand.NewPCG(1, 2))

	if got := c.SampleSentences(rng, 2); len(got) != 2 {
		t.Errorf("SampleSentences len = %d, want 2", len(got))
	}
	if got := c.SampleSentences(rng, 10); len(got) != 3 {
		t.Errorf("oversized sample len = %d, want 3", len(got))
	}
	if got := c.SampleWords(rng, "PER", 5); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("SampleWords = %v", got)
	}
	if got := c.SampleWords(rng, "MISC", 5); len(got) != 0 {
		t.Errorf("SampleWords(MISC) = %v, want empty", got)
	}
}

func TestSentenceFormat(t *testing.T) {
	s := Sentence{{"Paris", "LOC"}, {"is", "O"}}
	if got := s.Format(); got != "Paris/LOC  is/O" {
		t.Errorf("Format = %q", got)
	}
}
