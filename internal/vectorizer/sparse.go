// Package vectorizer turns token featuresets into sparse numeric vectors.
package vectorizer

import (
	"math"
	"slices"
)

// SparseVector is a vector of dimension Dim storing only its non-zero
// entries. Indices are kept in increasing order.
type SparseVector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// NewSparseVector returns an empty vector of dimension dim.
func NewSparseVector(dim int) SparseVector {
	return SparseVector{Dim: dim}
}

// Set stores val at idx, replacing any previous value.
func (sv *SparseVector) Set(idx int, val float64) {
	i, found := slices.BinarySearch(sv.Indices, idx)
	if found {
		sv.Values[i] = val
		return
	}
	sv.Indices = slices.Insert(sv.Indices, i, idx)
	sv.Values = slices.Insert(sv.Values, i, val)
}

// Dot returns the inner product with a dense vector. Entries beyond
// len(dense) are ignored.
func (sv SparseVector) Dot(dense []float64) float64 {
	var sum float64
	sv.each(len(dense), func(idx int, v float64) {
		sum += v * dense[idx]
	})
	return sum
}

// AddTo adds scale*sv into dense.
func (sv SparseVector) AddTo(dense []float64, scale float64) {
	sv.each(len(dense), func(idx int, v float64) {
		dense[idx] += scale * v
	})
}

func (sv SparseVector) each(limit int, fn func(idx int, v float64)) {
	for i, idx := range sv.Indices {
		if idx >= limit {
			return
		}
		fn(idx, sv.Values[i])
	}
}

// ToDense expands the vector to Dim values.
func (sv SparseVector) ToDense() []float64 {
	dense := make([]float64, sv.Dim)
	sv.AddTo(dense, 1)
	return dense
}

// Nnz returns the number of stored entries.
func (sv SparseVector) Nnz() int { return len(sv.Indices) }

// L2Norm returns the Euclidean norm.
func (sv SparseVector) L2Norm() float64 {
	return math.Sqrt(sv.Dot(sv.ToDense()))
}
