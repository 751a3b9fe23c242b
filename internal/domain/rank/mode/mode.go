package mode

import (
	"fmt"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

// Mode is the ranking strategy.
type Mode string

// Ranking mode constants.
const (
	// VectorMath scores candidates by cosine similarity of embeddings.
	VectorMath Mode = "math"
	// GenerativeRerank reorders candidates with a generative model. Not implemented.
	GenerativeRerank Mode = "ai"
)

// Parse maps a wire value to a Mode. An empty string selects VectorMath.
func Parse(s string) (Mode, error) {
	if s == "" {
		return VectorMath, nil
	}
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownRankingMode, s)
	}
	return m, nil
}

// IsValid checks if the mode is one of the known values.
func (m Mode) IsValid() bool {
	return m == VectorMath || m == GenerativeRerank
}

// IsImplemented reports whether the ranker can execute this mode.
func (m Mode) IsImplemented() bool {
	return m == VectorMath
}
