package tagger

import (
	"encoding/json"
	"fmt"
)

// Envelope is the serialized form of a fitted classifier together with the
// feature set it was trained on.
type Envelope struct {
	Kind       string          `json:"kind"`
	Features   string          `json:"features"`
	Classifier json.RawMessage `json:"classifier"`
}

type restorer interface {
	restored()
}

// Encode serializes c into an Envelope.
func Encode(features string, c Classifier) (*Envelope, error) {
	if _, err := Extractor(features); err != nil {
		return nil, err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode %s classifier: %w", c.Kind(), err)
	}
	return &Envelope{Kind: c.Kind(), Features: features, Classifier: data}, nil
}

// Decode decodes the classifier held by e. The result is ready to predict.
func (e *Envelope) Decode() (Classifier, error) {
	if _, err := Extractor(e.Features); err != nil {
		return nil, err
	}
	c, err := New(e.Kind, DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(e.Classifier, c); err != nil {
		return nil, fmt.Errorf("decode %s classifier: %w", e.Kind, err)
	}
	if r, ok := c.(restorer); ok {
		r.restored()
	}
	return c, nil
}
