package store

import (
	"time"
)

// Document represents a scrubbed document row with its embedding
type Document struct {
	ID           int64     `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	ContentHash  string    `db:"content_hash" json:"content_hash"`
	SimHash      string    `db:"sim_hash" json:"sim_hash"`
	DocumentType string    `db:"document_type" json:"document_type"`
	WordCount    int       `db:"word_count" json:"word_count"`
	ScrubbedText string    `db:"scrubbed_text" json:"scrubbed_text"`
	DocumentDate time.Time `db:"document_date" json:"document_date"`
	Embedding    []float32 `db:"embedding" json:"embedding"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SimilarityResult represents a document similarity search result
type SimilarityResult struct {
	Document   *Document `json:"document"`
	Similarity float32   `json:"similarity"`
	Distance   float32   `json:"distance"`
}

// SearchOptions contains options for document similarity search
type SearchOptions struct {
	Limit          int     `json:"limit"`
	MinSimilarity  float32 `json:"min_similarity"`
	TypeFilter     string  `json:"type_filter,omitempty"`
	ExcludeHash    string  `json:"exclude_hash,omitempty"`
}

// StoreStats represents database statistics
type StoreStats struct {
	TotalDocuments  int64   `json:"total_documents"`
	DistinctTypes   int64   `json:"distinct_types"`
	AvgWordCount    float64 `json:"avg_word_count"`
	AvgSearchTimeMs float64 `json:"avg_search_time_ms"`
}

// BatchInsertResult represents the result of a batch insert operation
type BatchInsertResult struct {
	Inserted int64         `json:"inserted"`
	Failed   int64         `json:"failed"`
	Duration time.Duration `json:"duration"`
	Errors   []error       `json:"errors,omitempty"`
}
