package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidCandidate signals a resume record that fails validation.
	ErrInvalidCandidate = errors.New("invalid candidate")
	// ErrCandidateNotFound signals a missing resume record.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrJobNotFound signals a missing search session.
	ErrJobNotFound = errors.New("job not found")

	// ErrUpstreamEmbedding signals that the query could not be embedded.
	ErrUpstreamEmbedding = errors.New("upstream embedding error")
	// ErrDimensionMismatch signals vectors of different length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrDegenerateVector signals a zero-norm vector.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrUnknownRankingMode signals a ranking mode outside the known set.
	ErrUnknownRankingMode = errors.New("unknown ranking mode")
	// ErrRankingCancelled signals that scoring stopped before all candidates were ranked.
	ErrRankingCancelled = errors.New("ranking cancelled")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrTitleProviderError signals a chat-completion provider failure.
	ErrTitleProviderError = errors.New("title provider error")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// UpstreamEmbeddingError reports a failed embedding call. It is fatal to the whole ranking call.
type UpstreamEmbeddingError struct {
	Err error
}

func (e *UpstreamEmbeddingError) Error() string {
	return fmt.Sprintf("%s: %v", ErrUpstreamEmbedding.Error(), e.Err)
}

// Unwrap exposes both the sentinel and the provider error to errors.Is.
func (e *UpstreamEmbeddingError) Unwrap() []error { return []error{ErrUpstreamEmbedding, e.Err} }

// DimensionMismatchError carries both lengths of a failed comparison.
type DimensionMismatchError struct {
	Query     int
	Candidate int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: query has %d dimensions, candidate has %d",
		ErrDimensionMismatch.Error(), e.Query, e.Candidate)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// DegenerateVectorError names the zero-norm operand ("query" or "candidate").
type DegenerateVectorError struct {
	Which string
}

func (e *DegenerateVectorError) Error() string {
	return fmt.Sprintf("%s: %s vector has zero norm", ErrDegenerateVector.Error(), e.Which)
}

func (e *DegenerateVectorError) Unwrap() error { return ErrDegenerateVector }
