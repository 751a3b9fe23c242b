package insighthire

import "github.com/kailas-cloud/insighthire/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery           = domain.ErrInvalidQuery
	ErrInvalidCandidate       = domain.ErrInvalidCandidate
	ErrCandidateNotFound      = domain.ErrCandidateNotFound
	ErrJobNotFound            = domain.ErrJobNotFound
	ErrUpstreamEmbedding      = domain.ErrUpstreamEmbedding
	ErrUnknownRankingMode     = domain.ErrUnknownRankingMode
	ErrRankingCancelled       = domain.ErrRankingCancelled
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
