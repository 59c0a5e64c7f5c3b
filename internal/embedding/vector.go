package embedding

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a fixed-dimension embedding. All vectors the package hands
// back to callers are L2-normalized within 1e-5, per spec.md section 4.2.
type Vector []float32

// Normalize returns a unit-norm copy of v. A zero vector is returned
// unchanged since there's no direction to normalize to.
func Normalize(v Vector) Vector {
	f64 := toFloat64(v)
	norm := math.Sqrt(floats.Dot(f64, f64))
	if norm == 0 {
		return append(Vector(nil), v...)
	}

	out := make(Vector, len(v))
	for i, x := range f64 {
		out[i] = float32(x / norm)
	}
	return out
}

// Cosine computes the cosine similarity of two equal-dimension vectors.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: dimension mismatch, %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("embedding: empty vector")
	}

	fa, fb := toFloat64(a), toFloat64(b)
	dot := floats.Dot(fa, fb)
	normA := math.Sqrt(floats.Dot(fa, fa))
	normB := math.Sqrt(floats.Dot(fb, fb))
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (normA * normB), nil
}

func toFloat64(v Vector) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
