package ranking

import (
	"context"

	"github.com/kailas-cloud/insighthire/internal/domain"
)

// Embedder vectorizes query text and, for items without a precomputed vector, item content.
// Implementations that also satisfy domain.BatchEmbedder embed item content in one call.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
