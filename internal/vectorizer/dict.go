package vectorizer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/happyhackingspace/nertag/vocab"
)

// DictVectorizer converts featuresets to sparse vectors. Feature ids are
// assigned in first-seen order during Fit and frozen afterwards.
type DictVectorizer struct {
	index *vocab.TermDict
}

// NewDictVectorizer creates an empty DictVectorizer.
func NewDictVectorizer() *DictVectorizer {
	return &DictVectorizer{index: vocab.NewTermDict()}
}

// Fit builds the feature index from a list of featuresets. Keys within one
// featureset are visited in sorted order so ids are reproducible.
func (dv *DictVectorizer) Fit(data []map[string]any) {
	dv.index = vocab.NewTermDict()
	for _, d := range data {
		for _, k := range sortedKeys(d) {
			dv.index.Add(featureKey(k, d[k]))
		}
	}
	dv.index.Freeze()
}

// FitTransform fits and transforms the data.
func (dv *DictVectorizer) FitTransform(data []map[string]any) []SparseVector {
	dv.Fit(data)
	result := make([]SparseVector, len(data))
	for i, d := range data {
		result[i] = dv.Transform(d)
	}
	return result
}

// Transform converts a featureset to a sparse vector. Features not seen
// during Fit are dropped.
func (dv *DictVectorizer) Transform(d map[string]any) SparseVector {
	sv := NewSparseVector(dv.VocabSize())
	for _, k := range sortedKeys(d) {
		v := d[k]
		if idx, ok := dv.index.Lookup(featureKey(k, v)); ok {
			sv.Set(idx, featureValue(v))
		}
	}
	return sv
}

// VocabSize returns the number of features.
func (dv *DictVectorizer) VocabSize() int {
	return dv.index.Len()
}

// FeatureNames returns the feature names in id order.
func (dv *DictVectorizer) FeatureNames() []string {
	return dv.index.Terms()
}

// MarshalJSON implements json.Marshaler.
func (dv *DictVectorizer) MarshalJSON() ([]byte, error) {
	return json.Marshal(dv.index)
}

// UnmarshalJSON implements json.Unmarshaler.
func (dv *DictVectorizer) UnmarshalJSON(data []byte) error {
	index := vocab.NewTermDict()
	if err := json.Unmarshal(data, index); err != nil {
		return err
	}
	index.Freeze()
	dv.index = index
	return nil
}

// featureKey returns the feature key for a given name-value pair.
// String values produce compound keys like "name=value"; numeric and bool
// values use the name directly.
func featureKey(name string, value any) string {
	if v, ok := value.(string); ok {
		return fmt.Sprintf("%s=%s", name, v)
	}
	return name
}

// featureValue returns the numeric value for a feature.
func featureValue(value any) float64 {
	switch v := value.(type) {
	case bool:
		if v {
			return 1.0
		}
		return 0.0
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 1.0
	}
}

func sortedKeys(d map[string]any) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
