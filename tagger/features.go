package tagger

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/happyhackingspace/nertag/internal/textutil"
)

// Feature set names.
const (
	FeaturesDummy    = "dummy"
	FeaturesIdentity = "identity"
	FeaturesShape    = "shape"
)

const featureWord = "word"

// Features is the featureset of one token. Values are bool, int, float64 or
// string.
type Features map[string]any

// Token is one sentence position as seen by a feature extractor.
type Token struct {
	// Word is the surface form.
	Word string
	// Term is the vocabulary term for Word, the unknown word for rare words.
	Term   string
	WordID int
}

// FeatureFunc extracts the featureset for position i of a sentence.
type FeatureFunc func(sent []Token, i int) Features

var extractors = map[string]FeatureFunc{
	FeaturesDummy:    dummyFeatures,
	FeaturesIdentity: identityFeatures,
	FeaturesShape:    shapeFeatures,
}

// FeatureSets returns the registered feature set names, sorted.
func FeatureSets() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extractor returns the feature function registered under name.
func Extractor(name string) (FeatureFunc, error) {
	fn, ok := extractors[name]
	if !ok {
		return nil, fmt.Errorf("feature set %q: %w", name, ErrUnknownKind)
	}
	return fn, nil
}

// Featurize extracts featuresets for every token of every sentence, in
// order.
func Featurize(name string, sentences [][]Token) ([]Features, error) {
	fn, err := Extractor(name)
	if err != nil {
		return nil, err
	}
	var out []Features
	for _, sent := range sentences {
		for i := range sent {
			out = append(out, fn(sent, i))
		}
	}
	return out, nil
}

func dummyFeatures([]Token, int) Features {
	return Features{}
}

func identityFeatures(sent []Token, i int) Features {
	return Features{featureWord: sent[i].WordID}
}

var (
	leftContext  = map[string]bool{"in": true, "of": true}
	rightContext = map[string]bool{"said": true, "'s": true}
)

// shapeFeatures describes capitalization, punctuation, digits and a small
// window of context words.
func shapeFeatures(sent []Token, i int) Features {
	word := sent[i].Word
	f := Features{"w": sent[i].Term}

	switch {
	case textutil.IsInitCaps(word):
		f["initCaps"] = true
	case textutil.IsAllCaps(word):
		f["allCaps"] = true
	case textutil.HasInnerCaps(word):
		f["mixedCaps"] = true
	}

	if i == 0 || sent[i-1].Word == "." {
		if f["initCaps"] == true {
			f["firstWord-initCaps"] = true
		} else {
			f["firstWord"] = true
		}
	}

	f["wordLen"] = utf8.RuneCountInString(word)

	if strings.HasSuffix(word, ".") {
		f["endPeriod"] = true
	}
	if len(word) > 1 && strings.Contains(word[:len(word)-1], ".") {
		f["intPeriod"] = true
	}
	if strings.Contains(word, "'") {
		f["intQuote"] = true
	}

	switch {
	case textutil.IsAllDigits(word):
		f["allDigits"] = true
	case textutil.HasDigits(word):
		f["intDigits"] = true
	}
	if p := textutil.NumberPattern(word, 0.3); p != "" {
		f["numPattern"] = p
	}

	if i > 0 && leftContext[sent[i-1].Word] {
		f["w-1"] = sent[i-1].Word
	}
	if i+1 < len(sent) && rightContext[sent[i+1].Word] {
		f["w+1"] = sent[i+1].Word
	}
	return f
}
