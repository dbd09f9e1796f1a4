// Package storage reads a dataset folder holding one CoNLL file per split.
//
//	data/
//	  train.conll
//	  dev.conll
//	  test.conll
//	  config.yaml   (optional)
package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/happyhackingspace/nertag/corpus"
	"github.com/happyhackingspace/nertag/internal/config"
)

// Dataset splits.
const (
	SplitTrain = "train"
	SplitDev   = "dev"
	SplitTest  = "test"
)

const (
	// ConfigFile is the optional configuration file inside the folder.
	ConfigFile = "config.yaml"
	// Ext is the extension of split files.
	Ext = ".conll"
)

// ErrUnknownSplit is returned for a split name other than train, dev or
// test.
var ErrUnknownSplit = errors.New("unknown split")

// SplitError reports an invalid split name.
type SplitError struct {
	Split string
}

func (e *SplitError) Error() string {
	return fmt.Sprintf("%v %q", ErrUnknownSplit, e.Split)
}

func (e *SplitError) Unwrap() error {
	return ErrUnknownSplit
}

// KnownSplits returns the split names in canonical order.
func KnownSplits() []string {
	return []string{SplitTrain, SplitDev, SplitTest}
}

// Storage wraps the dataset folder.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// Path returns the file path of a split.
func (s *Storage) Path(split string) (string, error) {
	if !slices.Contains(KnownSplits(), split) {
		return "", &SplitError{Split: split}
	}
	return filepath.Join(s.Folder, split+Ext), nil
}

// Corpus loads one split.
func (s *Storage) Corpus(split string, opts corpus.Options) (*corpus.Corpus, error) {
	path, err := s.Path(split)
	if err != nil {
		return nil, err
	}
	return corpus.Load(path, opts)
}

// Splits returns the splits present in the folder, in canonical order.
func (s *Storage) Splits() ([]string, error) {
	var found []string
	for _, split := range KnownSplits() {
		path, _ := s.Path(split)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			found = append(found, split)
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}
	return found, nil
}

// GetConfig reads the folder's config file. Without one, the defaults are
// returned.
func (s *Storage) GetConfig() (*config.Config, error) {
	c, err := config.Load(filepath.Join(s.Folder, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFile, err)
	}
	return c, nil
}

// IterOptions controls how splits are loaded.
type IterOptions struct {
	Corpus corpus.Options
	// Splits restricts loading to the named splits. Empty loads every split
	// present.
	Splits  []string
	Verbose bool
}

// DefaultIterOptions returns the default options for loading splits.
func DefaultIterOptions() IterOptions {
	return IterOptions{Corpus: corpus.DefaultOptions()}
}

// Split is a loaded dataset split.
type Split struct {
	Name   string
	Corpus *corpus.Corpus
}

// IterSplits loads the requested splits in canonical order.
func (s *Storage) IterSplits(opts IterOptions) ([]Split, error) {
	names := opts.Splits
	if len(names) == 0 {
		var err error
		if names, err = s.Splits(); err != nil {
			return nil, err
		}
	}
	out := make([]Split, 0, len(names))
	for _, name := range names {
		c, err := s.Corpus(name, opts.Corpus)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		if opts.Verbose {
			slog.Info("Loaded split", "split", name, "sentences", c.NumSentences(), "tokens", c.NumTokens())
		}
		out = append(out, Split{Name: name, Corpus: c})
	}
	return out, nil
}
