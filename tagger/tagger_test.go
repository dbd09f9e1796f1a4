package tagger

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func words(ws ...string) []Token {
	toks := make([]Token, len(ws))
	for i, w := range ws {
		toks[i] = Token{Word: w, Term: w, WordID: i}
	}
	return toks
}

func TestMajority(t *testing.T) {
	m := &Majority{}
	if _, err := m.Predict([]Features{{}}); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Predict before Fit error = %v, want ErrNotFitted", err)
	}
	x := make([]Features, 5)
	if err := m.Fit(x, []int{2, 1, 1, 0, 1}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Predict(make([]Features, 3))
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{1, 1, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("Predict = %v, want %v", got, want)
	}
}

func TestMajorityTieFirstSeen(t *testing.T) {
	m := &Majority{}
	if err := m.Fit(make([]Features, 4), []int{3, 5, 5, 3}); err != nil {
		t.Fatal(err)
	}
	if m.Label != 3 {
		t.Errorf("Label = %d, want 3", m.Label)
	}
}

func TestFitErrors(t *testing.T) {
	for _, kind := range Kinds() {
		c, err := New(kind, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if err := c.Fit(nil, nil); !errors.Is(err, ErrNoData) {
			t.Errorf("%s: Fit(nil) error = %v, want ErrNoData", kind, err)
		}
		if err := c.Fit(make([]Features, 2), []int{1}); err == nil {
			t.Errorf("%s: expected length error", kind)
		}
	}
}

func TestMemorization(t *testing.T) {
	m := &Memorization{}
	x := []Features{{"word": 1}, {"word": 2}, {"word": 1}, {"word": 3}, {"word": 3}}
	y := []int{0, 1, 2, 0, 0}
	if err := m.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	got, err := m.Predict([]Features{{"word": 1}, {"word": 2}, {"word": 9}, {}})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{2, 1, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("Predict = %v, want %v", got, want)
	}
}

func TestLogLinear(t *testing.T) {
	var x []Features
	var y []int
	for range 10 {
		x = append(x, Features{"w": "paris", "initCaps": true}, Features{"w": "is"}, Features{"w": "EU", "allCaps": true})
		y = append(y, 4, 0, 7)
	}
	var calls int
	config := DefaultLogLinearConfig()
	config.Progress = func(int, float64) { calls++ }
	m := NewLogLinear(config)
	if err := m.Fit(x, y); err != nil {
		t.Fatal(err)
	}
	if calls == 0 || calls != m.Iterations {
		t.Errorf("progress calls = %d, iterations = %d", calls, m.Iterations)
	}
	got, err := m.Predict(x[:3])
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{4, 0, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("Predict = %v, want %v", got, want)
	}

	proba := make(map[int]float64)
	sum := 0.0
	for k, p := range m.proba(Features{"w": "paris", "initCaps": true}) {
		proba[m.Labels[k]] = p
		sum += p
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("probabilities sum to %v", sum)
	}
	if proba[4] < proba[0] || proba[4] < proba[7] {
		t.Errorf("probabilities = %v, want label 4 most likely", proba)
	}
}

func TestLogLinearSingleClass(t *testing.T) {
	m := NewLogLinear(DefaultLogLinearConfig())
	if err := m.Fit([]Features{{"w": "a"}, {"w": "b"}}, []int{3, 3}); err != nil {
		t.Fatal(err)
	}
	got, err := m.Predict([]Features{{"w": "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 3 {
		t.Errorf("Predict = %v, want [3]", got)
	}
}

func TestNewUnknownKind(t *testing.T) {
	if _, err := New("crf", DefaultConfig()); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
	if _, err := Extractor("bag"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}

func TestDefaultFeatures(t *testing.T) {
	tests := map[string]string{
		KindMajority:  FeaturesDummy,
		KindMemo:      FeaturesIdentity,
		KindLogLinear: FeaturesShape,
	}
	for kind, want := range tests {
		if got := DefaultFeatures(kind); got != want {
			t.Errorf("DefaultFeatures(%q) = %q, want %q", kind, got, want)
		}
	}
}

func TestFeaturize(t *testing.T) {
	sents := [][]Token{words("He", "said"), words("ok")}
	got, err := Featurize(FeaturesIdentity, sents)
	if err != nil {
		t.Fatal(err)
	}
	want := []Features{{"word": 0}, {"word": 1}, {"word": 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Featurize = %v, want %v", got, want)
	}
	dummy, err := Featurize(FeaturesDummy, sents)
	if err != nil {
		t.Fatal(err)
	}
	if len(dummy) != 3 || len(dummy[0]) != 0 {
		t.Errorf("dummy features = %v", dummy)
	}
}

func TestShapeFeatures(t *testing.T) {
	sent := words("He", "lives", "in", "Paris", "since", "1990", "with", "U.S.", "friend's")

	tests := []struct {
		i    int
		want Features
	}{
		{0, Features{"w": "He", "initCaps": true, "firstWord-initCaps": true, "wordLen": 2}},
		{3, Features{"w": "Paris", "initCaps": true, "wordLen": 5, "w-1": "in"}},
		{5, Features{"w": "1990", "wordLen": 4, "allDigits": true, "numPattern": "XXXX"}},
		{7, Features{"w": "U.S.", "allCaps": true, "wordLen": 4, "endPeriod": true, "intPeriod": true}},
		{8, Features{"w": "friend's", "wordLen": 8, "intQuote": true}},
	}
	for _, tt := range tests {
		if got := shapeFeatures(sent, tt.i); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("shapeFeatures(%q) = %v, want %v", sent[tt.i].Word, got, tt.want)
		}
	}
}

func TestShapeRightContext(t *testing.T) {
	sent := words("Smith", "said", ".", "The")
	f := shapeFeatures(sent, 0)
	if f["w+1"] != "said" {
		t.Errorf("w+1 = %v, want said", f["w+1"])
	}
	if f := shapeFeatures(sent, 3); f["firstWord-initCaps"] != true {
		t.Errorf("word after period should be a first word: %v", f)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	x := []Features{{"word": 1}, {"word": 2}, {"word": 2}}
	y := []int{0, 1, 1}
	for _, kind := range Kinds() {
		c, err := New(kind, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if kind == KindLogLinear {
			x = []Features{{"w": "a"}, {"w": "b"}, {"w": "b"}}
		}
		if err := c.Fit(x, y); err != nil {
			t.Fatal(err)
		}
		want, err := c.Predict(x)
		if err != nil {
			t.Fatal(err)
		}

		env, err := Encode(DefaultFeatures(kind), c)
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(env)
		if err != nil {
			t.Fatal(err)
		}
		var decoded Envelope
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatal(err)
		}
		restored, err := decoded.Decode()
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if restored.Kind() != kind {
			t.Errorf("Kind = %q, want %q", restored.Kind(), kind)
		}
		got, err := restored.Predict(x)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: restored Predict = %v, want %v", kind, got, want)
		}
	}
}

func TestEncodeUnknownFeatures(t *testing.T) {
	if _, err := Encode("bag", &Majority{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("error = %v, want ErrUnknownKind", err)
	}
}
