package insighthire

import (
	"time"

	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

// Profile is the public part of a resume.
type Profile struct {
	ID             string
	FullName       string
	CurrentRole    string
	Skills         []string
	Summary        string
	Location       string
	Student        bool
	GraduationDate string
}

// Resume is a profile with its resume text and, optionally, a precomputed embedding.
// Resumes without an embedding are embedded from Text.
type Resume struct {
	Profile
	Text      string
	Embedding []float32
}

// Ranked is one scored resume.
type Ranked struct {
	ID    string
	Score float64
}

// Skipped is a resume that could not be scored.
type Skipped struct {
	ID     string
	Reason string // dimension_mismatch, degenerate_vector, duplicate_id, missing_vector
}

// RankResult is the outcome of Rank. Ranked is ordered by descending score.
type RankResult struct {
	Ranked    []Ranked
	Skipped   []Skipped
	Cancelled bool
}

// Match is one returned candidate of a stored search.
type Match struct {
	Profile
	Score     float64
	TopSkills []string
}

// SearchResult is the outcome of Search.
type SearchResult struct {
	JobID   string
	Title   string
	Mode    string
	Matches []Match
	Skipped []Skipped
}

// Job is a persisted search session.
type Job struct {
	ID                 string
	Description        string
	Title              string
	SelectedCandidates []string
	SearchResultIDs    []string
	CreatedAt          time.Time
}

func (p *Profile) toDomain() domcand.Profile {
	return domcand.Profile{
		ID:             p.ID,
		FullName:       p.FullName,
		CurrentRole:    p.CurrentRole,
		Skills:         p.Skills,
		Summary:        p.Summary,
		Location:       p.Location,
		Student:        p.Student,
		GraduationDate: p.GraduationDate,
	}
}

func profileFromDomain(p *domcand.Profile) Profile {
	return Profile{
		ID:             p.ID,
		FullName:       p.FullName,
		CurrentRole:    p.CurrentRole,
		Skills:         p.Skills,
		Summary:        p.Summary,
		Location:       p.Location,
		Student:        p.Student,
		GraduationDate: p.GraduationDate,
	}
}

func rankResultFromDomain(o *rank.Outcome) RankResult {
	res := RankResult{
		Ranked:    make([]Ranked, len(o.Results)),
		Cancelled: o.Cancelled,
	}
	for i, r := range o.Results {
		res.Ranked[i] = Ranked{ID: r.ID(), Score: r.Score()}
	}
	for _, s := range o.Skipped {
		res.Skipped = append(res.Skipped, Skipped{ID: s.ID, Reason: s.Reason})
	}
	return res
}

func searchResultFromDomain(r *searchuc.Response) SearchResult {
	out := SearchResult{
		JobID:   r.JobID,
		Title:   r.Title,
		Mode:    string(r.Mode),
		Matches: make([]Match, len(r.Results)),
	}
	for i, m := range r.Results {
		out.Matches[i] = Match{
			Profile:   profileFromDomain(&m.Profile),
			Score:     m.Score,
			TopSkills: m.TopSkills,
		}
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, Skipped{ID: s.ID, Reason: s.Reason})
	}
	return out
}

func jobFromDomain(j *domjob.Job) Job {
	return Job{
		ID:                 j.ID,
		Description:        j.Description,
		Title:              j.Title,
		SelectedCandidates: j.SelectedCandidates,
		SearchResultIDs:    j.SearchResultIDs,
		CreatedAt:          j.CreatedAt,
	}
}
