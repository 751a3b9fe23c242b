package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/domain/rank"
	"github.com/kailas-cloud/insighthire/internal/domain/rank/mode"
	"github.com/kailas-cloud/insighthire/internal/usecase/ranking"
)

type mockCandidates struct {
	cands   []domcand.Candidate
	listErr error
	exists  map[string]bool
}

func (m *mockCandidates) List(_ context.Context) ([]domcand.Candidate, error) {
	return m.cands, m.listErr
}

func (m *mockCandidates) Exists(_ context.Context, id string) (bool, error) {
	return m.exists[id], nil
}

type mockJobs struct {
	mu        sync.Mutex
	jobs      map[string]domjob.Job
	createErr error
	nextID    string
	selected  [][2]string
}

func newMockJobs() *mockJobs {
	return &mockJobs{jobs: make(map[string]domjob.Job), nextID: "job-1"}
}

func (m *mockJobs) Create(_ context.Context, j *domjob.Job) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	stored := *j
	stored.ID = m.nextID
	m.jobs[stored.ID] = stored
	return stored.ID, nil
}

func (m *mockJobs) Get(_ context.Context, id string) (domjob.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domjob.Job{}, domain.ErrJobNotFound
	}
	return j, nil
}

func (m *mockJobs) AddSelected(_ context.Context, jobID, candidateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = append(m.selected, [2]string{jobID, candidateID})
	return nil
}

// mockEmbedder returns vectors by text; unknown texts get the default vector.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	def     []float32
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		v = m.def
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: 3}, nil
}

type mockTitler struct {
	title string
	err   error
	calls int
}

func (m *mockTitler) Title(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.title, m.err
}

type mockRanker struct {
	err error
}

func (m *mockRanker) Rank(_ context.Context, _ rank.Query, _ []rank.Item, md mode.Mode) (rank.Outcome, error) {
	return rank.Outcome{Mode: md}, m.err
}

func cand(t *testing.T, id string, vec []float32, skills ...string) domcand.Candidate {
	t.Helper()
	c, err := domcand.New(domcand.Profile{ID: id, FullName: "Person " + id, Skills: skills}, "resume of "+id, vec)
	if err != nil {
		t.Fatalf("candidate %s: %v", id, err)
	}
	return c
}

type fixture struct {
	svc    *Service
	cands  *mockCandidates
	jobs   *mockJobs
	embed  *mockEmbedder
	titler *mockTitler
}

func newFixture(t *testing.T, cands []domcand.Candidate, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		cands: &mockCandidates{cands: cands, exists: map[string]bool{}},
		jobs:  newMockJobs(),
		embed: &mockEmbedder{
			vectors: map[string][]float32{"go developer": {1, 0, 0}},
			def:     []float32{0, 0, 1},
		},
		titler: &mockTitler{title: " Go Developer "},
	}
	for _, c := range cands {
		f.cands.exists[c.ID] = true
	}
	all := append([]Option{WithTitler(f.titler)}, opts...)
	f.svc = New(f.cands, f.jobs, ranking.New(f.embed, ranking.WithWorkers(2)), f.embed, all...)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}
