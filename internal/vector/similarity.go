// Package vector provides similarity scoring and nearest-neighbor ranking over caller-supplied corpora.
package vector

import "math"

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖), in [-1, 1].
// A zero-magnitude vector on either side yields exactly 0. Vectors of different length also
// yield 0; use FindMostSimilar when a mismatch must be reported.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	normA, normB := L2Norm(a), L2Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := InnerProduct(a, b) / (normA * normB)
	// Rounding can push identical vectors a hair past 1.
	return math.Max(-1, math.Min(1, sim))
}

// InnerProduct returns the inner product of two vectors (for normalized vectors equals cosine similarity).
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
