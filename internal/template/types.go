package template

import "time"

// Template types, assigned by content patterns with position fallback.
const (
	TypeHeader         = "HEADER"
	TypeFooter         = "FOOTER"
	TypeDemographics   = "DEMOGRAPHICS"
	TypeSignature      = "SIGNATURE"
	TypeMedicationList = "MEDICATION_LIST"
	TypeBoilerplate    = "BOILERPLATE"
	TypeLegal          = "LEGAL"
	TypeUnknown        = "UNKNOWN"
)

// Where a template tends to sit within its documents.
const (
	PositionStart  = "START"
	PositionMiddle = "MIDDLE"
	PositionEnd    = "END"
)

// Config controls corpus analysis. N-gram sizes are line counts, not words.
type Config struct {
	MinNgramSize            int     `yaml:"min_ngram_size" mapstructure:"min_ngram_size"`
	MaxNgramSize            int     `yaml:"max_ngram_size" mapstructure:"max_ngram_size"`
	TemplateThreshold       float64 `yaml:"template_threshold" mapstructure:"template_threshold"`
	RareThreshold           float64 `yaml:"rare_threshold" mapstructure:"rare_threshold"`
	NormalizeWhitespace     bool    `yaml:"normalize_whitespace" mapstructure:"normalize_whitespace"`
	LowercaseForMatching    bool    `yaml:"lowercase_for_matching" mapstructure:"lowercase_for_matching"`
	StripNumbers            bool    `yaml:"strip_numbers" mapstructure:"strip_numbers"`
	MaxDocumentsToSample    int     `yaml:"max_documents_to_sample" mapstructure:"max_documents_to_sample"`
	MinDocumentsForTemplate int     `yaml:"min_documents_for_template" mapstructure:"min_documents_for_template"`
}

// DefaultConfig returns the reference template mining configuration.
func DefaultConfig() Config {
	return Config{
		MinNgramSize:            3,
		MaxNgramSize:            8,
		TemplateThreshold:       0.30,
		RareThreshold:           0.05,
		NormalizeWhitespace:     true,
		LowercaseForMatching:    true,
		StripNumbers:            true,
		MaxDocumentsToSample:    100,
		MinDocumentsForTemplate: 3,
	}
}

// Document is the corpus analysis input: an identifier plus scrubbed text.
type Document struct {
	ID   string
	Text string
}

// DetectedTemplate is one repeated block found across the corpus. Deltas
// reference templates by ID and never copy their content.
type DetectedTemplate struct {
	ID             string  `json:"id"`
	Hash           string  `json:"hash"`
	Content        string  `json:"content"`
	LineCount      int     `json:"line_count"`
	CharCount      int     `json:"char_count"`
	Type           string  `json:"type"`
	Position       string  `json:"position"`
	DocumentCount  int     `json:"document_count"`
	Frequency      float64 `json:"frequency"`
	FirstSeenDocID string  `json:"first_seen_doc_id"`
}

// TemplateRef marks a template occurrence within one document as an
// inclusive line range.
type TemplateRef struct {
	TemplateID string `json:"template_id"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
}

// UniqueLine is one line of a document not covered by any template.
type UniqueLine struct {
	LineNumber int    `json:"line_number"`
	Content    string `json:"content"`
}

// DocumentDelta is a document expressed as template references plus unique
// content. TemplateRefs are non-overlapping and sorted by LineStart.
type DocumentDelta struct {
	DocumentID        string        `json:"document_id"`
	OriginalCharCount int           `json:"original_char_count"`
	DeltaCharCount    int           `json:"delta_char_count"`
	CompressionRatio  float64       `json:"compression_ratio"`
	TemplateRefs      []TemplateRef `json:"template_refs"`
	UniqueContent     string        `json:"unique_content"`
	UniqueLines       []UniqueLine  `json:"unique_lines"`
}

// TemplateCorpus is one corpus snapshot: the filtered template list plus
// analysis statistics.
type TemplateCorpus struct {
	Templates               []DetectedTemplate `json:"templates"`
	TotalDocuments          int                `json:"total_documents"`
	TotalTemplatesDetected  int                `json:"total_templates_detected"`
	AverageCompressionRatio float64            `json:"average_compression_ratio"`
	ConfigUsed              Config             `json:"config_used"`
	ProcessingTimeMs        int64              `json:"processing_time_ms"`
	CreatedAt               time.Time          `json:"created_at"`
}
