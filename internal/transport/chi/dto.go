package chi

import (
	"time"

	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeCandidateNotFound      = "candidate_not_found"
	codeJobNotFound            = "job_not_found"
	codeUnknownRankingMode     = "unknown_ranking_mode"
	codeDegenerateQuery        = "degenerate_query"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeTitleProviderError     = "title_provider_error"
	codeRankingCancelled       = "ranking_cancelled"
	codeNotImplemented         = "not_implemented"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type saveCandidateRequest struct {
	JobID    string `json:"job_id"`
	PersonID string `json:"person_id"`
}

type moreResultsRequest struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type searchResultItem struct {
	ID         string          `json:"_id"`
	FullName   string          `json:"full_name"`
	FinalScore float64         `json:"finalScore"`
	TopSkills  []string        `json:"top_skills,omitempty"`
	Data       domcand.Profile `json:"data"`
}

type skippedItem struct {
	ID     string `json:"_id"`
	Reason string `json:"reason"`
}

type searchResponse struct {
	JobID   string             `json:"job_id"`
	Title   string             `json:"title"`
	Mode    string             `json:"mode"`
	Results []searchResultItem `json:"results"`
	Skipped []skippedItem      `json:"skipped,omitempty"`
}

type jobResponse struct {
	ID                 string    `json:"_id"`
	Description        string    `json:"job_description"`
	Title              string    `json:"title"`
	SelectedCandidates []string  `json:"selected_candidates"`
	SearchResultIDs    []string  `json:"search_result_ids"`
	CreatedAt          time.Time `json:"created_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFromUC(resp *searchuc.Response) searchResponse {
	out := searchResponse{
		JobID:   resp.JobID,
		Title:   resp.Title,
		Mode:    string(resp.Mode),
		Results: make([]searchResultItem, len(resp.Results)),
	}
	for i, m := range resp.Results {
		out.Results[i] = searchResultItem{
			ID:         m.Profile.ID,
			FullName:   m.Profile.FullName,
			FinalScore: m.Score,
			TopSkills:  m.TopSkills,
			Data:       m.Profile,
		}
	}
	for _, sk := range resp.Skipped {
		out.Skipped = append(out.Skipped, skippedItem{ID: sk.ID, Reason: sk.Reason})
	}
	return out
}

func jobToResponse(j *domjob.Job) jobResponse {
	selected := j.SelectedCandidates
	if selected == nil {
		selected = []string{}
	}
	results := j.SearchResultIDs
	if results == nil {
		results = []string{}
	}
	return jobResponse{
		ID:                 j.ID,
		Description:        j.Description,
		Title:              j.Title,
		SelectedCandidates: selected,
		SearchResultIDs:    results,
		CreatedAt:          j.CreatedAt,
	}
}
