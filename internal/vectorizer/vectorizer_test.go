package vectorizer

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestSparseVector(t *testing.T) {
	sv := NewSparseVector(5)
	sv.Set(1, 2.0)
	sv.Set(3, 4.0)
	sv.Set(1, 3.0)

	dense := sv.ToDense()
	if dense[1] != 3.0 || dense[3] != 4.0 || dense[0] != 0.0 {
		t.Errorf("ToDense unexpected: %v", dense)
	}
	if sv.Nnz() != 2 {
		t.Errorf("Nnz = %d, want 2", sv.Nnz())
	}

	dot := sv.Dot([]float64{1, 2, 3, 4, 5})
	if want := 3.0*2 + 4.0*4; dot != want {
		t.Errorf("Dot = %v, want %v", dot, want)
	}
	if math.Abs(sv.L2Norm()-5.0) > 1e-12 {
		t.Errorf("L2Norm = %v, want 5", sv.L2Norm())
	}
}

func TestSparseAddTo(t *testing.T) {
	sv := NewSparseVector(3)
	sv.Set(0, 1.0)
	sv.Set(2, 2.0)
	dense := []float64{1, 1, 1}
	sv.AddTo(dense, -0.5)
	if want := []float64{0.5, 1, 0}; !reflect.DeepEqual(dense, want) {
		t.Errorf("AddTo = %v, want %v", dense, want)
	}
}

func TestDictVectorizer(t *testing.T) {
	dv := NewDictVectorizer()
	data := []map[string]any{
		{"initCaps": true, "w-1": "in", "wordLen": 5},
		{"allCaps": true, "w-1": "of", "wordLen": 2},
	}
	vectors := dv.FitTransform(data)

	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	want := []string{"initCaps", "w-1=in", "wordLen", "allCaps", "w-1=of"}
	if got := dv.FeatureNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("FeatureNames = %v, want %v", got, want)
	}
	dense := vectors[0].ToDense()
	if dense[0] != 1 || dense[1] != 1 || dense[2] != 5 || dense[3] != 0 {
		t.Errorf("vector 0 = %v", dense)
	}
}

func TestDictVectorizerUnknownFeature(t *testing.T) {
	dv := NewDictVectorizer()
	dv.Fit([]map[string]any{{"w-1": "in"}})

	sv := dv.Transform(map[string]any{"w-1": "of", "other": true})
	if sv.Nnz() != 0 {
		t.Errorf("unseen features should produce no entries, got %d", sv.Nnz())
	}
	if sv.Dim != dv.VocabSize() {
		t.Errorf("Dim = %d, want %d", sv.Dim, dv.VocabSize())
	}
	if dv.VocabSize() != 1 {
		t.Errorf("Transform grew the index to %d", dv.VocabSize())
	}
}

func TestDictVectorizerJSON(t *testing.T) {
	dv := NewDictVectorizer()
	dv.Fit([]map[string]any{{"a": true, "b": "x"}})
	data, err := json.Marshal(dv)
	if err != nil {
		t.Fatal(err)
	}
	restored := NewDictVectorizer()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(restored.FeatureNames(), dv.FeatureNames()) {
		t.Errorf("FeatureNames = %v, want %v", restored.FeatureNames(), dv.FeatureNames())
	}
	if sv := restored.Transform(map[string]any{"c": true}); sv.Nnz() != 0 {
		t.Error("restored vectorizer should be frozen")
	}
}
