// Package vector provides the fixed-dimension embedding vector type used
// throughout paperhub, along with the math and text serialization shared by
// every storage backend.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Dims is the dimensionality of every embedding vector in the system,
// fixed by the all-MiniLM-L6-v2 model.
const Dims = 384

// ErrDimensionMismatch indicates a vector whose length differs from what an
// operation requires. Queries that hit it fail loudly; mismatched data is
// never silently skipped.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Vector is a dense embedding vector.
type Vector []float64

// CheckDims returns an error wrapping ErrDimensionMismatch when v does not
// have exactly want components.
func CheckDims(v Vector, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), want)
	}
	return nil
}

// Cosine computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
// Mismatched lengths and zero-norm inputs yield 0.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// Mean computes the element-wise mean (centroid) of the given vectors.
func Mean(vs []Vector) (Vector, error) {
	if len(vs) == 0 {
		return nil, errors.New("mean of zero vectors")
	}

	dims := len(vs[0])
	sum := make(Vector, dims)
	for _, v := range vs {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), dims)
		}
		for i, x := range v {
			sum[i] += x
		}
	}

	n := float64(len(vs))
	for i := range sum {
		sum[i] /= n
	}
	return sum, nil
}

// Blend combines two vectors of equal length as wa*a + wb*b.
func Blend(a Vector, wa float64, b Vector, wb float64) (Vector, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(b), len(a))
	}

	out := make(Vector, len(a))
	for i := range a {
		out[i] = wa*a[i] + wb*b[i]
	}
	return out, nil
}
