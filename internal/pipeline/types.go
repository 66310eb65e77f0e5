package pipeline

import (
	"time"

	"github.com/chartscrub/chartscrub/internal/dedup"
	"github.com/chartscrub/chartscrub/internal/template"
	"github.com/chartscrub/chartscrub/internal/timeline"
)

// DataRecord represents a single document from the input dataset
type DataRecord struct {
	Filename string `csv:"filename" parquet:"filename" json:"filename"`
	Text     string `csv:"text" parquet:"text" json:"text"`
}

// ProcessingResult represents the result of processing a corpus
type ProcessingResult struct {
	TotalDocuments  int64         `json:"total_documents"`
	ProcessedOK     int64         `json:"processed_ok"`
	ProcessedFailed int64         `json:"processed_failed"`
	Duplicates      int64         `json:"duplicates"`
	RedactedValues  int64         `json:"redacted_values"`
	Duration        time.Duration `json:"duration"`
	ScrubTime       time.Duration `json:"scrub_time"`
	EmbeddingTime   time.Duration `json:"embedding_time"`
	DatabaseTime    time.Duration `json:"database_time"`
	CacheTime       time.Duration `json:"cache_time"`
	Errors          []string      `json:"errors,omitempty"`
}

// CorpusReport bundles the per-document result with the corpus-wide analyses
type CorpusReport struct {
	Processing *ProcessingResult        `json:"processing"`
	Templates  *template.TemplateCorpus `json:"templates,omitempty"`
	Dedup      *dedup.Result            `json:"dedup,omitempty"`
	Timeline   *timeline.Timeline       `json:"timeline,omitempty"`
}

// Config contains corpus pipeline configuration
type Config struct {
	BatchSize      int  `yaml:"batch_size" mapstructure:"batch_size"`           // 100
	ValidateData   bool `yaml:"validate_data" mapstructure:"validate_data"`     // true
	SkipDuplicates bool `yaml:"skip_duplicates" mapstructure:"skip_duplicates"` // true
	CreateIndex    bool `yaml:"create_index" mapstructure:"create_index"`       // true
	UpdateCache    bool `yaml:"update_cache" mapstructure:"update_cache"`       // true
	ProgressReport int  `yaml:"progress_report" mapstructure:"progress_report"` // 100
	RegexOnly      bool `yaml:"regex_only" mapstructure:"regex_only"`           // false
	MaxTextLength  int  `yaml:"max_text_length" mapstructure:"max_text_length"` // 1000000
}

// DefaultConfig returns the reference pipeline configuration
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ValidateData:   true,
		SkipDuplicates: true,
		CreateIndex:    true,
		UpdateCache:    true,
		ProgressReport: 100,
		MaxTextLength:  1000000,
	}
}

// ProcessingStats tracks real-time processing statistics
type ProcessingStats struct {
	StartTime      time.Time `json:"start_time"`
	DocumentsRead  int64     `json:"documents_read"`
	DocumentsValid int64     `json:"documents_valid"`
	Scrubbed       int64     `json:"scrubbed"`
	EmbeddingsGen  int64     `json:"embeddings_generated"`
	DatabaseWrites int64     `json:"database_writes"`
	CacheWrites    int64     `json:"cache_writes"`
	CurrentBatch   int64     `json:"current_batch"`
	ProcessingRate float64   `json:"processing_rate"` // documents per second
}

// Notifier receives corpus processing events. A nil notifier disables
// event delivery.
type Notifier interface {
	DocumentScrubbed(filename string, redactedCount int, confidence *int)
	DuplicateFound(filename, duplicateOf, differenceType string, similarity float64)
	TemplateDetected(templateID, templateType string, frequency float64)
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case len(filename) >= 4 && filename[len(filename)-4:] == ".csv":
		return FormatCSV
	case len(filename) >= 8 && filename[len(filename)-8:] == ".parquet":
		return FormatParquet
	case len(filename) >= 5 && filename[len(filename)-5:] == ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}
