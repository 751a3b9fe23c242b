package insighthire

import (
	"context"

	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
	domjob "github.com/kailas-cloud/insighthire/internal/domain/job"
	"github.com/kailas-cloud/insighthire/internal/usecase/ranking"
	searchuc "github.com/kailas-cloud/insighthire/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, query string) (searchuc.Response, error)
	saveFn   func(ctx context.Context, jobID, candidateID string) error
	getJobFn func(ctx context.Context, id string) (domjob.Job, error)
}

func (m *mockSearchUC) Search(ctx context.Context, query string) (searchuc.Response, error) {
	return m.searchFn(ctx, query)
}

func (m *mockSearchUC) SaveCandidate(ctx context.Context, jobID, candidateID string) error {
	return m.saveFn(ctx, jobID, candidateID)
}

func (m *mockSearchUC) GetJob(ctx context.Context, id string) (domjob.Job, error) {
	return m.getJobFn(ctx, id)
}

// --- candidateStore mock ---

type mockCandidates struct {
	saved    []domcand.Candidate
	upsertFn func(ctx context.Context, c *domcand.Candidate) (bool, error)
}

func (m *mockCandidates) Upsert(ctx context.Context, c *domcand.Candidate) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, c)
	}
	m.saved = append(m.saved, *c)
	return true, nil
}

// --- embedders ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	m.batchCalls++
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := m.fn(ctx, t)
		if err != nil {
			return BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// fixedEmbedder returns the same vector for every text.
func fixedEmbedder(v ...float32) *mockEmbedder {
	return &mockEmbedder{fn: func(context.Context, string) (EmbeddingResult, error) {
		return EmbeddingResult{Embedding: v, TotalTokens: 1}, nil
	}}
}

// --- helpers ---

func testClient(e Embedder, search searchUseCase, cands candidateStore) *Client {
	adapter := &embedderAdapter{inner: e}
	return &Client{
		embed:      adapter,
		ranker:     ranking.New(adapter, ranking.WithWorkers(2)),
		searchSvc:  search,
		candidates: cands,
	}
}
