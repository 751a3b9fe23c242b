package chi

import (
	"context"

	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	healthuc "github.com/kailas-cloud/insighthire/internal/usecase/health"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

// SearchService is the search usecase as the HTTP layer sees it.
type SearchService interface {
	Search(ctx context.Context, query string) (searchuc.Response, error)
	SaveCandidate(ctx context.Context, jobID, candidateID string) error
	GetJob(ctx context.Context, id string) (domjob.Job, error)
	MoreResults(ctx context.Context, jobID string) ([]searchuc.Match, error)
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
