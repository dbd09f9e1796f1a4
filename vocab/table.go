package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table file names written by Save.
const (
	WordsFile = "words.tsv"
	TagsFile  = "tags.tsv"
)

// WriteTable writes one term<TAB>id line per term in id order.
func WriteTable(w io.Writer, d *TermDict) error {
	bw := bufio.NewWriter(w)
	for id, term := range d.toTerm {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", term, id); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTable reads a table written by WriteTable. Ids must form the dense
// range [0, n) in file order.
func ReadTable(r io.Reader) (*TermDict, error) {
	d := NewTermDict()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		sep := strings.LastIndexByte(line, '\t')
		if sep < 0 {
			return nil, fmt.Errorf("line %d: missing tab in %q", lineNo, line)
		}
		term := line[:sep]
		id, err := strconv.Atoi(line[sep+1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad id: %w", lineNo, err)
		}
		if id != d.Len() {
			return nil, fmt.Errorf("line %d: id %d out of sequence, want %d", lineNo, id, d.Len())
		}
		if d.Contains(term) {
			return nil, fmt.Errorf("line %d: duplicate term %q", lineNo, term)
		}
		d.Add(term)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// Save writes the word and tag tables into dir.
func (v *Vocabulary) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := writeTableFile(filepath.Join(dir, WordsFile), v.words); err != nil {
		return err
	}
	return writeTableFile(filepath.Join(dir, TagsFile), v.tags)
}

func writeTableFile(path string, d *TermDict) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTable(f, d); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// LoadTables restores a frozen vocabulary from tables written by Save. The
// unknown terms of config must be present in the tables when set.
func LoadTables(dir string, config Config) (*Vocabulary, error) {
	words, err := readTableFile(filepath.Join(dir, WordsFile), config.UnknownWord)
	if err != nil {
		return nil, err
	}
	tags, err := readTableFile(filepath.Join(dir, TagsFile), config.UnknownTag)
	if err != nil {
		return nil, err
	}
	return &Vocabulary{
		config: config,
		words:  words,
		tags:   tags,
		counts: make(map[string]int),
	}, nil
}

func readTableFile(path, unknown string) (*TermDict, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	d, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if unknown != "" {
		if !d.Contains(unknown) {
			return nil, fmt.Errorf("read %s: unknown term %q not in table", path, unknown)
		}
		d.unknown = unknown
		d.hasUnk = true
	}
	d.Freeze()
	return d, nil
}
