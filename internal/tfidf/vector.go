package tfidf

import "math"

// Vector is a sparse row of a Space. Indices are strictly increasing and
// Weights[i] belongs to Indices[i].
type Vector struct {
	Indices []int
	Weights []float64
}

// IsZero reports whether the vector has no non-zero weight.
func (v Vector) IsZero() bool {
	for _, w := range v.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Scale returns a copy of v with every weight multiplied by factor.
func (v Vector) Scale(factor float64) Vector {
	out := Vector{
		Indices: append([]int(nil), v.Indices...),
		Weights: make([]float64, len(v.Weights)),
	}
	for i, w := range v.Weights {
		out.Weights[i] = w * factor
	}
	return out
}

// Normalized returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vector) Normalized() Vector {
	norm := v.Norm()
	if norm == 0 {
		return v
	}
	return v.Scale(1 / norm)
}

// Cosine returns the cosine of the angle between a and b, clamped to [0, 1].
// A zero vector has similarity 0 with everything.
//
// Terms are visited in index order so identical inputs always produce
// bit-identical scores.
func Cosine(a, b Vector) float64 {
	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}

	sim := dot / (normA * normB)
	switch {
	case sim < 0 || math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
