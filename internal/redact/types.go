package redact

import (
	"fmt"
	"time"
)

// Placeholder categories. Every replacement placeholder has the form
// [CATEGORY_N] where N is assigned in first-seen order within one scrub call.
const (
	CategoryEmail   = "EMAIL"
	CategoryPhone   = "PHONE"
	CategorySSN     = "SSN"
	CategoryCard    = "CARD"
	CategoryZip     = "ZIP"
	CategoryID      = "ID"
	CategoryDate    = "DATE"
	CategoryAge     = "AGE"
	CategoryAddress = "ADDR"
	CategoryPOBox   = "POBOX"
	CategoryLoc     = "LOC"
	CategoryPerson  = "PER"
	CategoryOrg     = "ORG"
)

// PIIMap maps each original PII value to its assigned placeholder.
type PIIMap map[string]string

// RedactedText is text that has passed through every redaction phase. Only
// the engine's output step constructs it, so unredacted text cannot be passed
// where redacted text is required.
type RedactedText struct {
	value string
}

// String returns the redacted text.
func (r RedactedText) String() string { return r.value }

// Options controls one scrub call.
type Options struct {
	// RegexOnly skips sentence chunking and the external NER phases. The
	// structural, contextual, validation, and verification passes still run.
	RegexOnly bool
}

// Config contains redaction engine configuration.
type Config struct {
	MinNERScore   float64       `yaml:"min_ner_score" mapstructure:"min_ner_score"`     // 0.85
	ChunkSize     int           `yaml:"chunk_size" mapstructure:"chunk_size"`           // 2000
	ChunkTimeout  time.Duration `yaml:"chunk_timeout" mapstructure:"chunk_timeout"`     // 30s
	AllowedLabels []string      `yaml:"allowed_labels" mapstructure:"allowed_labels"`   // PER, LOC, ORG
	RegexOnlyMode bool          `yaml:"regex_only_mode" mapstructure:"regex_only_mode"` // skip NER entirely
}

// DefaultConfig returns the reference redaction configuration.
func DefaultConfig() Config {
	return Config{
		MinNERScore:   0.85,
		ChunkSize:     2000,
		ChunkTimeout:  30 * time.Second,
		AllowedLabels: []string{"PER", "LOC", "ORG"},
	}
}

// ScrubResult is the output contract of one scrub call. Count is the number
// of unique original values redacted, not the occurrence count. Confidence is
// present only when the full (non regex-only) pipeline ran.
type ScrubResult struct {
	Text         RedactedText `json:"text"`
	Replacements PIIMap       `json:"replacements"`
	Count        int          `json:"count"`
	Confidence   *int         `json:"confidence,omitempty"`
}

// NewScrubResult validates the result invariants at construction time:
// count must equal the replacement map size and confidence, when present,
// must lie in [0,100]. Violations are programming errors and fail loudly.
func NewScrubResult(text string, replacements PIIMap, confidence *int) (*ScrubResult, error) {
	if replacements == nil {
		replacements = PIIMap{}
	}
	if confidence != nil && (*confidence < 0 || *confidence > 100) {
		return nil, fmt.Errorf("redact: confidence %d outside [0,100]", *confidence)
	}
	return &ScrubResult{
		Text:         RedactedText{value: text},
		Replacements: replacements,
		Count:        len(replacements),
		Confidence:   confidence,
	}, nil
}
