// Package rank holds the value types exchanged with the ranker.
package rank

import (
	"fmt"

	"github.com/kailas-cloud/insighthire/internal/domain"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
)

// Query is free text, a precomputed vector, or both. A vector wins over text.
type Query struct {
	Text   string
	Vector []float32
}

// Validate rejects a query with neither text nor vector.
func (q Query) Validate() error {
	if q.Text == "" && len(q.Vector) == 0 {
		return fmt.Errorf("%w: query text or vector is required", domain.ErrInvalidQuery)
	}
	return nil
}

// Item is one candidate as the ranker sees it.
// Items without a Vector are embedded from Content.
type Item struct {
	ID      string
	Vector  []float32
	Content string
}

// Result is a single scored candidate.
type Result struct {
	id      string
	score   float64
	content string
}

// NewResult creates a ranked result.
func NewResult(id string, score float64, content string) Result {
	return Result{id: id, score: score, content: content}
}

// ID returns the candidate identifier.
func (r Result) ID() string { return r.id }

// Score returns the similarity score.
func (r Result) Score() float64 { return r.score }

// Content returns the candidate display text.
func (r Result) Content() string { return r.content }

// Skip reasons recorded in Skipped.Reason.
const (
	ReasonDimensionMismatch = "dimension_mismatch"
	ReasonDegenerateVector  = "degenerate_vector"
	ReasonDuplicateID       = "duplicate_id"
	ReasonMissingVector     = "missing_vector"
)

// Skipped records a candidate excluded from scoring.
type Skipped struct {
	ID     string
	Reason string
	Err    error
}

// Outcome is the full ordered ranking plus what was left out.
type Outcome struct {
	Results   []Result
	Mode      mode.Mode
	Skipped   []Skipped
	Cancelled bool
}

// Top returns at most n leading results. n <= 0 returns all of them.
func (o *Outcome) Top(n int) []Result {
	if n <= 0 || n >= len(o.Results) {
		return o.Results
	}
	return o.Results[:n]
}

// IDs returns result identifiers in ranked order.
func (o *Outcome) IDs() []string {
	ids := make([]string, len(o.Results))
	for i, r := range o.Results {
		ids[i] = r.ID()
	}
	return ids
}

// SkippedIDs returns identifiers of skipped candidates in input order.
func (o *Outcome) SkippedIDs() []string {
	ids := make([]string, len(o.Skipped))
	for i, s := range o.Skipped {
		ids[i] = s.ID
	}
	return ids
}
