package fingerprint

// Document types assigned by keyword scoring, checked in fixed priority order.
const (
	TypeLabReport      = "lab_report"
	TypeImaging        = "imaging"
	TypePathology      = "pathology"
	TypeProgressNote   = "progress_note"
	TypeMedication     = "medication"
	TypeDischarge      = "discharge"
	TypeCorrespondence = "correspondence"
	TypeUnknown        = "unknown"
)

// Difference classifications produced by pairwise duplicate analysis.
const (
	DiffExact         = "exact"
	DiffNearDuplicate = "near-duplicate"
	DiffSameEvent     = "same-event"
	DiffUnique        = "unique"
)

// Pairwise thresholds over SimHash similarity.
const (
	nearDuplicateThreshold = 0.95
	sameEventThreshold     = 0.70
	sameEventWindowHours   = 72
)

// Fingerprint is the content identity of one scrubbed document. It is
// created once per document and never mutated.
type Fingerprint struct {
	ContentHash    string   `json:"content_hash"`
	SimHash        string   `json:"sim_hash"`
	WordCount      int      `json:"word_count"`
	DateReferences []string `json:"date_references"`
	DocumentType   string   `json:"document_type"`
}

// DuplicateAnalysis is the outcome of comparing two fingerprints.
// IsDuplicate is true only for exact and near-duplicate matches; same-event
// marks related encounters whose content is kept.
type DuplicateAnalysis struct {
	IsDuplicate    bool    `json:"is_duplicate"`
	DuplicateOf    string  `json:"duplicate_of,omitempty"`
	Similarity     float64 `json:"similarity"`
	DifferenceType string  `json:"difference_type"`
}
