package dedup

import "time"

// Cluster types, from tightest to loosest grouping.
const (
	ClusterSingleton      = "SINGLETON"
	ClusterDuplicateGroup = "DUPLICATE_GROUP"
	ClusterSimilarGroup   = "SIMILAR_GROUP"
	ClusterTopicGroup     = "TOPIC_GROUP"
)

// Config controls the semantic deduplication pipeline. Representative
// weights are expected to sum to roughly 1.
type Config struct {
	SimilarityThreshold    float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	NearDuplicateThreshold float64 `yaml:"near_duplicate_threshold" mapstructure:"near_duplicate_threshold"`
	ChunkSize              int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkOverlap           int     `yaml:"chunk_overlap" mapstructure:"chunk_overlap"`
	LengthWeight           float64 `yaml:"length_weight" mapstructure:"length_weight"`
	RecencyWeight          float64 `yaml:"recency_weight" mapstructure:"recency_weight"`
	QualityWeight          float64 `yaml:"quality_weight" mapstructure:"quality_weight"`
	DensityWeight          float64 `yaml:"density_weight" mapstructure:"density_weight"`
}

// DefaultConfig returns the reference deduplication configuration.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold:    0.85,
		NearDuplicateThreshold: 0.95,
		ChunkSize:              1000,
		ChunkOverlap:           200,
		LengthWeight:           0.35,
		RecencyWeight:          0.15,
		QualityWeight:          0.25,
		DensityWeight:          0.25,
	}
}

// InputDocument is one pipeline input. Date and OCRQuality are optional
// metadata consumed by representative selection.
type InputDocument struct {
	ID         string
	Text       string
	Date       time.Time
	OCRQuality *float64
}

// DocumentEmbedding is the unit-normalized pooled embedding of one document.
// Owned by the pipeline for the duration of one run.
type DocumentEmbedding struct {
	DocumentID   string    `json:"document_id"`
	Embedding    []float32 `json:"embedding"`
	EmbeddingDim int       `json:"embedding_dim"`
	ChunkCount   int       `json:"chunk_count"`
	TextLength   int       `json:"text_length"`
}

// SimilarPair records one above-threshold document pair.
type SimilarPair struct {
	DocumentA  string  `json:"document_a"`
	DocumentB  string  `json:"document_b"`
	Similarity float64 `json:"similarity"`
}

// DocumentCluster is one connected component of the similarity graph.
// Representative fields are set once by the selection step.
type DocumentCluster struct {
	ClusterID             string    `json:"cluster_id"`
	Type                  string    `json:"type"`
	DocumentIDs           []string  `json:"document_ids"`
	RepresentativeID      string    `json:"representative_id"`
	RepresentativeScore   float64   `json:"representative_score"`
	AvgInternalSimilarity float64   `json:"avg_internal_similarity"`
	MinInternalSimilarity float64   `json:"min_internal_similarity"`
	Centroid              []float32 `json:"centroid"`
}

// Result is the outcome of one full deduplication run.
type Result struct {
	Embeddings      []DocumentEmbedding `json:"embeddings"`
	Pairs           []SimilarPair       `json:"pairs"`
	Clusters        []DocumentCluster   `json:"clusters"`
	Representatives []string            `json:"representatives"`
	TotalDocuments  int                 `json:"total_documents"`
	UniqueDocuments int                 `json:"unique_documents"`
	ProcessingTime  time.Duration       `json:"processing_time"`
}
