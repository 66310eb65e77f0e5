package dedup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Embedder is the external embedding capability consumed by the pipeline.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Pipeline runs semantic deduplication: embed, pair, cluster, select. All
// state is per-run; the only shared handle is the embedder.
type Pipeline struct {
	config   Config
	embedder Embedder
	logger   *zap.Logger
}

// NewPipeline creates a deduplication pipeline.
func NewPipeline(cfg Config, embedder Embedder, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		config:   cfg,
		embedder: embedder,
		logger:   logger,
	}
}

// GenerateEmbeddings produces one pooled, unit-normalized embedding per
// document. Long documents are chunked and mean-pooled. Aborts cheaply
// between documents when the context is cancelled.
func (p *Pipeline) GenerateEmbeddings(ctx context.Context, docs []InputDocument) ([]DocumentEmbedding, error) {
	embeddings := make([]DocumentEmbedding, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: StageEmbedding, DocumentID: doc.ID, Err: err}
		}

		chunks := ChunkText(doc.Text, p.config.ChunkSize, p.config.ChunkOverlap)
		vectors := make([][]float32, 0, len(chunks))
		for _, chunk := range chunks {
			v, err := p.embedder.GenerateEmbedding(ctx, chunk)
			if err != nil {
				return nil, &StageError{Stage: StageEmbedding, DocumentID: doc.ID, Err: err}
			}
			vectors = append(vectors, v)
		}

		pooled := NormalizeVector(MeanPool(vectors))
		embeddings = append(embeddings, DocumentEmbedding{
			DocumentID:   doc.ID,
			Embedding:    pooled,
			EmbeddingDim: len(pooled),
			ChunkCount:   len(chunks),
			TextLength:   len(doc.Text),
		})
	}
	p.logger.Debug("embeddings generated", zap.Int("documents", len(embeddings)))
	return embeddings, nil
}

// FindSimilarPairs compares every embedding pair and keeps those at or above
// the similarity threshold. Pairs are independent; the loop only reads
// shared state.
func (p *Pipeline) FindSimilarPairs(embeddings []DocumentEmbedding) ([]SimilarPair, error) {
	var pairs []SimilarPair
	for i := 0; i < len(embeddings); i++ {
		for j := i + 1; j < len(embeddings); j++ {
			sim, err := CosineSimilarity(embeddings[i].Embedding, embeddings[j].Embedding)
			if err != nil {
				return nil, &StageError{Stage: StageSimilarity, DocumentID: embeddings[i].DocumentID, Err: err}
			}
			if sim >= p.config.SimilarityThreshold {
				pairs = append(pairs, SimilarPair{
					DocumentA:  embeddings[i].DocumentID,
					DocumentB:  embeddings[j].DocumentID,
					Similarity: sim,
				})
			}
		}
	}
	return pairs, nil
}

// ClusterDocuments groups embeddings by the similarity pairs.
func (p *Pipeline) ClusterDocuments(embeddings []DocumentEmbedding, pairs []SimilarPair) ([]DocumentCluster, error) {
	return ClusterDocuments(embeddings, pairs, p.config)
}

// SelectRepresentatives picks one representative per cluster.
func (p *Pipeline) SelectRepresentatives(clusters []DocumentCluster, docs []InputDocument) []string {
	return SelectRepresentatives(clusters, docs, p.config)
}

// Deduplicate runs the full pipeline over a document set.
func (p *Pipeline) Deduplicate(ctx context.Context, docs []InputDocument) (*Result, error) {
	started := time.Now()

	embeddings, err := p.GenerateEmbeddings(ctx, docs)
	if err != nil {
		return nil, err
	}
	pairs, err := p.FindSimilarPairs(embeddings)
	if err != nil {
		return nil, err
	}
	clusters, err := p.ClusterDocuments(embeddings, pairs)
	if err != nil {
		return nil, err
	}
	reps := p.SelectRepresentatives(clusters, docs)

	result := &Result{
		Embeddings:      embeddings,
		Pairs:           pairs,
		Clusters:        clusters,
		Representatives: reps,
		TotalDocuments:  len(docs),
		UniqueDocuments: len(clusters),
		ProcessingTime:  time.Since(started),
	}
	p.logger.Info("deduplication complete",
		zap.Int("documents", result.TotalDocuments),
		zap.Int("clusters", result.UniqueDocuments),
		zap.Duration("elapsed", result.ProcessingTime))
	return result, nil
}
