package search

import (
	"context"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
)

// CandidateRepository reads stored resumes.
type CandidateRepository interface {
	List(ctx context.Context) ([]domcand.Candidate, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// JobRepository persists search sessions.
type JobRepository interface {
	Create(ctx context.Context, j *domjob.Job) (string, error)
	Get(ctx context.Context, id string) (domjob.Job, error)
	AddSelected(ctx context.Context, jobID, candidateID string) error
}

// Ranker orders items by similarity to a query.
type Ranker interface {
	Rank(ctx context.Context, q rank.Query, items []rank.Item, m mode.Mode) (rank.Outcome, error)
}

// Embedder vectorizes the search query once per request.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Titler derives a short job title from a job description.
type Titler interface {
	Title(ctx context.Context, description string) (string, error)
}
