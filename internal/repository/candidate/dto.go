package candidate

import (
	"fmt"

	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
)

// record is the stored JSON shape of a resume.
type record struct {
	ID              string    `json:"_id"`
	FullName        string    `json:"full_name"`
	CurrentRole     string    `json:"current_role,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Location        string    `json:"location,omitempty"`
	Student         bool      `json:"student"`
	GraduationDate  string    `json:"graduation_date,omitempty"`
	ResumeText      string    `json:"resume_text,omitempty"`
	ResumeEmbedding []float32 `json:"resume_embedding,omitempty"`
}

func toRecord(c *domcand.Candidate) record {
	return record{
		ID:              c.ID,
		FullName:        c.FullName,
		CurrentRole:     c.CurrentRole,
		Skills:          c.Skills,
		Summary:         c.Summary,
		Location:        c.Location,
		Student:         c.Student,
		GraduationDate:  c.GraduationDate,
		ResumeText:      c.ResumeText,
		ResumeEmbedding: c.Embedding,
	}
}

func (r *record) toDomain() (domcand.Candidate, error) {
	c, err := domcand.New(domcand.Profile{
		ID:             r.ID,
		FullName:       r.FullName,
		CurrentRole:    r.CurrentRole,
		Skills:         r.Skills,
		Summary:        r.Summary,
		Location:       r.Location,
		Student:        r.Student,
		GraduationDate: r.GraduationDate,
	}, r.ResumeText, r.ResumeEmbedding)
	if err != nil {
		return domcand.Candidate{}, fmt.Errorf("decode record %q: %w", r.ID, err)
	}
	return c, nil
}
