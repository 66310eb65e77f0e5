package fingerprint

import (
	"regexp"
	"strings"
	"time"

	"github.com/chartscrub/chartscrub/internal/hashing"
)

// datePatterns match the date shapes that commonly appear in clinical text.
// Extraction keeps the first-appearance order and drops repeats.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}\b`),
}

// typeKeywords drive document classification. Types are checked in this
// order and the first type with a keyword hit wins.
var typeKeywords = []struct {
	docType  string
	keywords []string
}{
	{TypeLabReport, []string{"lab", "laboratory", "cbc", "metabolic panel", "urinalysis", "specimen", "reference range"}},
	{TypeImaging, []string{"x-ray", "xray", "radiograph", "ct scan", "mri", "ultrasound", "imaging", "radiology", "impression:"}},
	{TypePathology, []string{"pathology", "biopsy", "cytology", "histology", "gross description", "microscopic"}},
	{TypeProgressNote, []string{"progress note", "soap", "subjective", "objective", "assessment", "chief complaint", "office visit"}},
	{TypeMedication, []string{"medication", "prescription", "pharmacy", "refill", "dosage", "sig:"}},
	{TypeDischarge, []string{"discharge", "disposition", "admission", "hospital course"}},
	{TypeCorrespondence, []string{"dear", "sincerely", "referral", "letter", "correspondence", "thank you for"}},
}

// typeScanLimit bounds how much of the document body participates in
// classification. Document type markers live in headers, not body text.
const typeScanLimit = 500

// New computes the fingerprint of a scrubbed document.
func New(filename, text string) *Fingerprint {
	return &Fingerprint{
		ContentHash:    hashing.ContentHash(text),
		SimHash:        hashing.SimHash(text),
		WordCount:      len(strings.Fields(text)),
		DateReferences: ExtractDates(text),
		DocumentType:   classify(filename, text),
	}
}

// ExtractDates returns date-like substrings in first-appearance order with
// duplicates removed.
func ExtractDates(text string) []string {
	type hit struct {
		pos  int
		text string
	}
	var hits []hit
	for _, p := range datePatterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	// Order by position so first appearance wins across patterns.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	seen := make(map[string]bool, len(hits))
	var dates []string
	for _, h := range hits {
		if !seen[h.text] {
			seen[h.text] = true
			dates = append(dates, h.text)
		}
	}
	return dates
}

func classify(filename, text string) string {
	if len(text) > typeScanLimit {
		text = text[:typeScanLimit]
	}
	haystack := strings.ToLower(filename + " " + text)
	for _, tk := range typeKeywords {
		for _, kw := range tk.keywords {
			if strings.Contains(haystack, kw) {
				return tk.docType
			}
		}
	}
	return TypeUnknown
}

// AnalyzeDuplication classifies the relationship between two documents.
// Rules apply in order: exact content-hash match, near-duplicate by SimHash,
// same-event by SimHash plus type plus a 72-hour date window, else unique.
// Zero-value dates mean "date unknown" and disable the same-event rule.
func AnalyzeDuplication(a, b *Fingerprint, dateA, dateB time.Time) DuplicateAnalysis {
	if a.ContentHash == b.ContentHash {
		return DuplicateAnalysis{
			IsDuplicate:    true,
			DuplicateOf:    b.ContentHash,
			Similarity:     1.0,
			DifferenceType: DiffExact,
		}
	}

	similarity := hashing.SimHashSimilarity(a.SimHash, b.SimHash)
	if similarity >= nearDuplicateThreshold {
		return DuplicateAnalysis{
			IsDuplicate:    true,
			DuplicateOf:    b.ContentHash,
			Similarity:     similarity,
			DifferenceType: DiffNearDuplicate,
		}
	}

	if similarity >= sameEventThreshold &&
		a.DocumentType == b.DocumentType &&
		!dateA.IsZero() && !dateB.IsZero() &&
		withinWindow(dateA, dateB, sameEventWindowHours*time.Hour) {
		return DuplicateAnalysis{
			Similarity:     similarity,
			DifferenceType: DiffSameEvent,
		}
	}

	return DuplicateAnalysis{
		Similarity:     similarity,
		DifferenceType: DiffUnique,
	}
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
