package ranking

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

// mockEmbedder returns vectors by text; unknown texts get the default vector.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	def     []float32
	err     error
	tokens  int
	calls   []string
	onEmbed func()
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.onEmbed != nil {
		m.onEmbed()
	}
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		v = m.def
	}
	return domain.EmbeddingResult{Embedding: v, TotalTokens: m.tokens}, nil
}

// mockBatchEmbedder also implements domain.BatchEmbedder.
type mockBatchEmbedder struct {
	mockEmbedder
	batchCalls [][]string
	batchErr   error
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls = append(m.batchCalls, texts)
	if m.batchErr != nil {
		return domain.BatchEmbeddingResult{}, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := m.vectors[t]
		if !ok {
			v = m.def
		}
		out[i] = v
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: m.tokens * len(texts)}, nil
}

// cancelAfterCtx reports no error for the first n Err checks and cancels on the next one.
type cancelAfterCtx struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func newCancelAfterCtx(n int64) *cancelAfterCtx {
	ctx, cancel := context.WithCancel(context.Background())
	c := &cancelAfterCtx{Context: ctx, cancel: cancel}
	c.left.Store(n)
	return c
}

func (c *cancelAfterCtx) Err() error {
	if c.left.Add(-1) < 0 {
		c.cancel()
	}
	return c.Context.Err()
}
