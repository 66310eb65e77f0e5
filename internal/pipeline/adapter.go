package pipeline

import (
	"context"

	"github.com/chartscrub/chartscrub/internal/dedup"
	"github.com/chartscrub/chartscrub/internal/embeddings"
)

// EmbedderAdapter exposes an embedding service through the narrow interface
// the clustering pipeline consumes.
type EmbedderAdapter struct {
	service embeddings.EmbeddingService
}

var _ dedup.Embedder = (*EmbedderAdapter)(nil)

// NewEmbedderAdapter wraps an embedding service.
func NewEmbedderAdapter(service embeddings.EmbeddingService) *EmbedderAdapter {
	return &EmbedderAdapter{service: service}
}

// GenerateEmbedding returns the raw embedding vector for one text.
func (a *EmbedderAdapter) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	result, err := a.service.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	return result.Embedding, nil
}
