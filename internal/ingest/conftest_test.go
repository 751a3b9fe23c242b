package ingest

import (
	"context"

	"github.com/kailas-cloud/insighthire/internal/domain"
	domcand "github.com/kailas-cloud/insighthire/internal/domain/candidate"
)

type mockStore struct {
	saved    map[string]domcand.Candidate
	upsertFn func(ctx context.Context, c *domcand.Candidate) (bool, error)
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string]domcand.Candidate)}
}

func (m *mockStore) Upsert(ctx context.Context, c *domcand.Candidate) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, c)
	}
	_, existed := m.saved[c.ID]
	m.saved[c.ID] = *c
	return !existed, nil
}

// lenEmbedder embeds text as [len(text), 1] and counts batch calls.
type lenEmbedder struct {
	batches [][]string
	err     error
}

func (e *lenEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}, TotalTokens: 1}, nil
}

func (e *lenEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	e.batches = append(e.batches, append([]string(nil), texts...))
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	return domain.BatchFallback(ctx, e, texts)
}
