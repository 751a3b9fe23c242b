// Package candidate models resume records as stored and as returned to clients.
package candidate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// MaxResumeSize is the maximum resume text size in bytes.
const MaxResumeSize = 256 * 1024

// Profile is the public part of a resume record.
type Profile struct {
	ID             string   `json:"_id"`
	FullName       string   `json:"full_name"`
	CurrentRole    string   `json:"current_role,omitempty"`
	Skills         []string `json:"skills,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Location       string   `json:"location,omitempty"`
	Student        bool     `json:"student"`
	GraduationDate string   `json:"graduation_date,omitempty"`
}

// Candidate is a full resume record. ResumeText and Embedding never leave the service.
type Candidate struct {
	ID             string
	FullName       string
	CurrentRole    string
	Skills         []string
	Summary        string
	Location       string
	Student        bool
	GraduationDate string
	ResumeText     string
	Embedding      []float32
}

// New validates and creates a Candidate. A record needs resume text, a
// precomputed embedding, or both.
func New(p Profile, resumeText string, embedding []float32) (Candidate, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return Candidate{}, fmt.Errorf("%w: candidate ID is required", domain.ErrInvalidCandidate)
	}
	if len(id) > 128 || !idRegex.MatchString(id) {
		return Candidate{}, fmt.Errorf("%w: candidate ID %q must be 1-128 chars of [a-zA-Z0-9_.-]",
			domain.ErrInvalidCandidate, id)
	}
	if strings.TrimSpace(resumeText) == "" && len(embedding) == 0 {
		return Candidate{}, fmt.Errorf("%w: %s has neither resume text nor embedding",
			domain.ErrInvalidCandidate, id)
	}
	if len(resumeText) > MaxResumeSize {
		return Candidate{}, fmt.Errorf("%w: resume text too large (max %d bytes)",
			domain.ErrInvalidCandidate, MaxResumeSize)
	}

	return Candidate{
		ID:             id,
		FullName:       p.FullName,
		CurrentRole:    p.CurrentRole,
		Skills:         cloneStrings(p.Skills),
		Summary:        p.Summary,
		Location:       p.Location,
		Student:        p.Student,
		GraduationDate: p.GraduationDate,
		ResumeText:     resumeText,
		Embedding:      embedding,
	}, nil
}

// Profile returns the public view of the record.
func (c *Candidate) Profile() Profile {
	return Profile{
		ID:             c.ID,
		FullName:       c.FullName,
		CurrentRole:    c.CurrentRole,
		Skills:         cloneStrings(c.Skills),
		Summary:        c.Summary,
		Location:       c.Location,
		Student:        c.Student,
		GraduationDate: c.GraduationDate,
	}
}

// HasEmbedding reports whether a precomputed vector is attached.
func (c *Candidate) HasEmbedding() bool { return len(c.Embedding) > 0 }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
