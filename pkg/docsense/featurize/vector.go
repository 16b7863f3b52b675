// Package featurize turns documentation text into sparse numeric vectors
// using a bag of word and character n-grams learned from a training corpus.
package featurize

import "math"

// Vector is a sparse feature vector. Indices are strictly increasing.
type Vector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// Dot returns the inner product of v with the dense vector w. Indices beyond
// len(w) contribute nothing.
func (v Vector) Dot(w []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(w) {
			sum += v.Values[i] * w[idx]
		}
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// normalize scales v to unit length in place. Zero vectors are left alone.
func (v Vector) normalize() {
	n := v.Norm()
	if n == 0 {
		return
	}
	for i := range v.Values {
		v.Values[i] /= n
	}
}
