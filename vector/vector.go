// Package vector implements the similarity math used by semantic search.
//
// All functions are pure and safe for concurrent use. Malformed input (empty
// vectors, mismatched dimensions, near-zero norms) never produces an error:
// it scores as "no similarity".
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the smallest norm treated as non-zero.
const Epsilon = 1e-12

// ErrNonFinite indicates a vector component is NaN or infinite.
var ErrNonFinite = errors.New("vector contains NaN or Inf")

// Cosine returns the raw cosine similarity of a and b in [-1, 1].
// It returns 0 when either vector is empty, the dimensions differ,
// or either norm is below Epsilon.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA < Epsilon || normB < Epsilon {
		return 0
	}

	sim := dot / (normA * normB)
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}

// Similarity returns the cosine similarity of a and b clamped to [0, 1].
// Anti-correlated vectors score 0, the same as unrelated ones.
func Similarity(a, b []float32) float32 {
	sim := Cosine(a, b)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return float32(sim)
}

// Normalize scales v to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float64
	for _, val := range v {
		magnitude += float64(val) * float64(val)
	}
	magnitude = math.Sqrt(magnitude)

	result := make([]float32, len(v))
	if magnitude < Epsilon {
		return result
	}
	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}

// Validate returns ErrNonFinite if any component of v is NaN or ±Inf.
// Empty vectors are valid.
func Validate(v []float32) error {
	for i, val := range v {
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: component %d", ErrNonFinite, i)
		}
	}
	return nil
}
