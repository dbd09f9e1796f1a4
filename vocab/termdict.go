// Package vocab maps words and tags to dense integer ids.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownTerm is returned when a term or id has no mapping and no unknown
// fallback applies.
var ErrUnknownTerm = errors.New("unknown term")

// LookupError reports a failed term or id lookup.
type LookupError struct {
	Term string
	ID   int
	ByID bool
}

func (e *LookupError) Error() string {
	if e.ByID {
		return fmt.Sprintf("%v: id %d", ErrUnknownTerm, e.ID)
	}
	return fmt.Sprintf("%v: %q", ErrUnknownTerm, e.Term)
}

func (e *LookupError) Unwrap() error {
	return ErrUnknownTerm
}

// TermDict is a bidirectional mapping between terms and dense ids assigned in
// first-seen order.
//
// Only Add mutates the dict, and only while it is unfrozen. ID resolves a
// missing term to the unknown term's id when one is configured and fails
// with ErrUnknownTerm otherwise.
//
// A TermDict is not safe for concurrent mutation.
type TermDict struct {
	toID    map[string]int
	toTerm  []string
	unknown string
	hasUnk  bool
	frozen  bool
}

// NewTermDict creates an empty dict without an unknown fallback.
func NewTermDict() *TermDict {
	return &TermDict{toID: make(map[string]int)}
}

// NewTermDictWithUnknown creates a dict whose unknown term is pre-seeded at
// id 0.
func NewTermDictWithUnknown(unknown string) *TermDict {
	d := NewTermDict()
	d.unknown = unknown
	d.hasUnk = true
	d.Add(unknown)
	return d
}

// Add inserts term if it is absent. It is a no-op on a frozen dict.
func (d *TermDict) Add(term string) {
	if d.frozen {
		return
	}
	if _, ok := d.toID[term]; ok {
		return
	}
	d.toID[term] = len(d.toTerm)
	d.toTerm = append(d.toTerm, term)
}

// Lookup returns the id of term without applying any fallback.
func (d *TermDict) Lookup(term string) (int, bool) {
	id, ok := d.toID[term]
	return id, ok
}

// ID returns the id of term. A missing term resolves to the unknown term's
// id; an unfrozen dict that lacks the unknown term registers it first.
func (d *TermDict) ID(term string) (int, error) {
	if id, ok := d.toID[term]; ok {
		return id, nil
	}
	if d.hasUnk {
		d.Add(d.unknown)
		if id, ok := d.toID[d.unknown]; ok {
			return id, nil
		}
	}
	return 0, &LookupError{Term: term}
}

// Term returns the term registered under id.
func (d *TermDict) Term(id int) (string, error) {
	if id < 0 || id >= len(d.toTerm) {
		return "", &LookupError{ID: id, ByID: true}
	}
	return d.toTerm[id], nil
}

// Contains reports whether term has its own id.
func (d *TermDict) Contains(term string) bool {
	_, ok := d.toID[term]
	return ok
}

// Freeze stops the dict from admitting new terms. Freezing twice is a no-op.
func (d *TermDict) Freeze() {
	d.frozen = true
}

// Frozen reports whether the dict is frozen.
func (d *TermDict) Frozen() bool {
	return d.frozen
}

// Unknown returns the unknown term, if one is configured.
func (d *TermDict) Unknown() (string, bool) {
	return d.unknown, d.hasUnk
}

// Len returns the number of registered terms.
func (d *TermDict) Len() int {
	return len(d.toTerm)
}

// Terms returns the registered terms in id order.
func (d *TermDict) Terms() []string {
	out := make([]string, len(d.toTerm))
	copy(out, d.toTerm)
	return out
}

type termDictJSON struct {
	Terms   []string `json:"terms"`
	Unknown *string  `json:"unknown,omitempty"`
	Frozen  bool     `json:"frozen"`
}

// MarshalJSON implements json.Marshaler.
func (d *TermDict) MarshalJSON() ([]byte, error) {
	v := termDictJSON{Terms: d.toTerm, Frozen: d.frozen}
	if v.Terms == nil {
		v.Terms = []string{}
	}
	if d.hasUnk {
		unk := d.unknown
		v.Unknown = &unk
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *TermDict) UnmarshalJSON(data []byte) error {
	var v termDictJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	restored, err := fromTerms(v.Terms)
	if err != nil {
		return err
	}
	if v.Unknown != nil {
		restored.unknown = *v.Unknown
		restored.hasUnk = true
	}
	restored.frozen = v.Frozen
	*d = *restored
	return nil
}

// fromTerms rebuilds an unfrozen dict from terms listed in id order.
func fromTerms(terms []string) (*TermDict, error) {
	d := NewTermDict()
	for i, term := range terms {
		if _, ok := d.toID[term]; ok {
			return nil, fmt.Errorf("duplicate term %q at id %d", term, i)
		}
		d.Add(term)
	}
	return d, nil
}
