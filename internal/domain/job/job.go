// Package job models a persisted search session.
package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

// Job is one search: the description that was searched, the generated title,
// every ranked candidate ID, and the candidates a recruiter picked.
type Job struct {
	ID                 string    `json:"_id"`
	Description        string    `json:"job_description"`
	Title              string    `json:"title"`
	SelectedCandidates []string  `json:"selected_candidates"`
	SearchResultIDs    []string  `json:"search_result_ids"`
	CreatedAt          time.Time `json:"created_at"`
}

// New validates a job before it is stored. The repository assigns the ID.
func New(description, title string, resultIDs []string, now time.Time) (Job, error) {
	if strings.TrimSpace(description) == "" {
		return Job{}, fmt.Errorf("%w: job description is required", domain.ErrInvalidQuery)
	}
	ids := make([]string, len(resultIDs))
	copy(ids, resultIDs)
	return Job{
		Description:        description,
		Title:              title,
		SelectedCandidates: []string{},
		SearchResultIDs:    ids,
		CreatedAt:          now.UTC(),
	}, nil
}
