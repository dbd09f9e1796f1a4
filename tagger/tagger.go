// Package tagger provides per-token tag classifiers over vocabulary ids and
// the feature extraction that feeds them.
//
// Classifiers see one featureset per token and return one label id per
// token. Label ids are tag ids from a fitted vocab.Vocabulary.
package tagger

import (
	"errors"
	"fmt"
)

// Classifier kinds.
const (
	KindMajority  = "majority"
	KindMemo      = "memo"
	KindLogLinear = "loglinear"
)

var (
	// ErrNotFitted is returned by Predict on a classifier that has not been
	// fitted.
	ErrNotFitted = errors.New("classifier not fitted")
	// ErrUnknownKind is returned for an unrecognized classifier or feature
	// set name.
	ErrUnknownKind = errors.New("unknown kind")
	// ErrNoData is returned by Fit when there are no training examples.
	ErrNoData = errors.New("no training data")
)

// Classifier maps featuresets to label ids.
type Classifier interface {
	// Kind returns the classifier kind, one of the Kind constants.
	Kind() string
	// Fit trains the classifier on featuresets x with labels y.
	Fit(x []Features, y []int) error
	// Predict returns one label per featureset.
	Predict(x []Features) ([]int, error)
}

// Kinds returns the supported classifier kinds.
func Kinds() []string {
	return []string{KindMajority, KindMemo, KindLogLinear}
}

// Config holds settings for constructing a classifier.
type Config struct {
	LogLinear LogLinearConfig
}

// DefaultConfig returns the default classifier settings.
func DefaultConfig() Config {
	return Config{LogLinear: DefaultLogLinearConfig()}
}

// New returns an unfitted classifier of the given kind.
func New(kind string, config Config) (Classifier, error) {
	switch kind {
	case KindMajority:
		return &Majority{}, nil
	case KindMemo:
		return &Memorization{}, nil
	case KindLogLinear:
		return NewLogLinear(config.LogLinear), nil
	default:
		return nil, fmt.Errorf("classifier %q: %w", kind, ErrUnknownKind)
	}
}

// DefaultFeatures returns the feature set a classifier kind is normally
// trained with.
func DefaultFeatures(kind string) string {
	switch kind {
	case KindMemo:
		return FeaturesIdentity
	case KindLogLinear:
		return FeaturesShape
	default:
		return FeaturesDummy
	}
}

func checkFit(x []Features, y []int) error {
	if len(x) != len(y) {
		return fmt.Errorf("%d featuresets, %d labels", len(x), len(y))
	}
	if len(y) == 0 {
		return ErrNoData
	}
	return nil
}
