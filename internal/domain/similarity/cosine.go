// Package similarity scores embedding vectors against each other.
package similarity

import (
	"math"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

// Cosine returns dot(q,c) / (|q|*|c|), accumulated in float64.
// Empty or unequal-length inputs fail with *domain.DimensionMismatchError;
// a zero-norm or non-finite operand fails with *domain.DegenerateVectorError.
func Cosine(q, c []float32) (float64, error) {
	if len(q) == 0 || len(q) != len(c) {
		return 0, &domain.DimensionMismatchError{Query: len(q), Candidate: len(c)}
	}

	var dot, qq, cc float64
	for i := range q {
		a, b := float64(q[i]), float64(c[i])
		dot += a * b
		qq += a * a
		cc += b * b
	}

	if qq == 0 || !finite(qq) {
		return 0, &domain.DegenerateVectorError{Which: "query"}
	}
	if cc == 0 || !finite(cc) {
		return 0, &domain.DegenerateVectorError{Which: "candidate"}
	}

	sim := dot / (math.Sqrt(qq) * math.Sqrt(cc))

	// Rounding can push |sim| slightly above 1 for parallel vectors.
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Norm returns the Euclidean length of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
