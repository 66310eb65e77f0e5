package timeline

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/fingerprint"
)

// Document is one scrubbed corpus member offered to the assembler. Date
// comes from the original text when the caller captured it before
// redaction; a zero Date falls back to the fingerprint's date references.
type Document struct {
	ID          string
	Filename    string
	Fingerprint *fingerprint.Fingerprint
	Date        time.Time
}

// Entry is one timeline row. Kept documents get sequential document
// numbers; duplicates carry number 0 and point at the document they repeat.
type Entry struct {
	DocumentNumber int       `json:"document_number"`
	DocumentID     string    `json:"document_id"`
	Filename       string    `json:"filename"`
	DocumentType   string    `json:"document_type"`
	Date           time.Time `json:"date,omitempty"`
	HasDate        bool      `json:"has_date"`
	IsDuplicate    bool      `json:"is_duplicate"`
	DuplicateOf    string    `json:"duplicate_of,omitempty"`
	RelatedTo      string    `json:"related_to,omitempty"`
	Similarity     float64   `json:"similarity"`
	DifferenceType string    `json:"difference_type"`
}

// Timeline is the chronological, duplicate-annotated view of a corpus.
type Timeline struct {
	Entries        []Entry `json:"entries"`
	KeptCount      int     `json:"kept_count"`
	DuplicateCount int     `json:"duplicate_count"`
	UndatedCount   int     `json:"undated_count"`
}

// dateLayouts cover the date shapes the fingerprinter extracts.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 Jan. 2006",
}

// ParseDateReference parses one extracted date string. It returns a zero
// time and false when no known layout matches.
func ParseDateReference(ref string) (time.Time, bool) {
	ref = strings.TrimSpace(ref)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, ref); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DocumentDate returns the first parseable date reference of a fingerprint.
func DocumentDate(fp *fingerprint.Fingerprint) (time.Time, bool) {
	if fp == nil {
		return time.Time{}, false
	}
	for _, ref := range fp.DateReferences {
		if t, ok := ParseDateReference(ref); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// FirstDate returns the first parseable date reference in raw text. Callers
// that redact before fingerprinting use this to capture the document date
// while date values are still present.
func FirstDate(text string) (time.Time, bool) {
	for _, ref := range fingerprint.ExtractDates(text) {
		if t, ok := ParseDateReference(ref); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Assembler builds chronological timelines over fingerprinted documents.
type Assembler struct {
	logger *zap.Logger
}

// NewAssembler creates a timeline assembler.
func NewAssembler(logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{logger: logger}
}

// Assemble orders documents by their first parseable date reference, runs
// pairwise duplicate analysis against already-kept documents, and assigns
// document numbers to the kept ones. Undated documents sort after dated
// ones; order within ties follows input order.
func (a *Assembler) Assemble(docs []Document) *Timeline {
	type member struct {
		doc     Document
		date    time.Time
		hasDate bool
		order   int
	}

	members := make([]member, 0, len(docs))
	for i, doc := range docs {
		if doc.Fingerprint == nil {
			continue
		}
		date, ok := doc.Date, !doc.Date.IsZero()
		if !ok {
			date, ok = DocumentDate(doc.Fingerprint)
		}
		members = append(members, member{doc: doc, date: date, hasDate: ok, order: i})
	}

	sort.SliceStable(members, func(i, j int) bool {
		mi, mj := members[i], members[j]
		if mi.hasDate != mj.hasDate {
			return mi.hasDate
		}
		if mi.hasDate && !mi.date.Equal(mj.date) {
			return mi.date.Before(mj.date)
		}
		return mi.order < mj.order
	})

	tl := &Timeline{Entries: make([]Entry, 0, len(members))}

	type kept struct {
		id   string
		fp   *fingerprint.Fingerprint
		date time.Time
	}
	var keptDocs []kept

	nextNumber := 1
	for _, m := range members {
		entry := Entry{
			DocumentID:     m.doc.ID,
			Filename:       m.doc.Filename,
			DocumentType:   m.doc.Fingerprint.DocumentType,
			Date:           m.date,
			HasDate:        m.hasDate,
			DifferenceType: fingerprint.DiffUnique,
		}
		if !m.hasDate {
			tl.UndatedCount++
		}

		// Compare against kept documents; the strongest relationship wins.
		var best fingerprint.DuplicateAnalysis
		var bestID string
		for _, k := range keptDocs {
			analysis := fingerprint.AnalyzeDuplication(m.doc.Fingerprint, k.fp, m.date, k.date)
			if analysis.IsDuplicate {
				best = analysis
				bestID = k.id
				break
			}
			if analysis.Similarity > best.Similarity ||
				(best.DifferenceType == "" && analysis.DifferenceType != "") {
				best = analysis
				bestID = k.id
			}
		}

		if best.IsDuplicate {
			entry.IsDuplicate = true
			entry.DuplicateOf = bestID
			entry.Similarity = best.Similarity
			entry.DifferenceType = best.DifferenceType
			tl.DuplicateCount++
			tl.Entries = append(tl.Entries, entry)
			continue
		}

		if best.DifferenceType == fingerprint.DiffSameEvent {
			entry.RelatedTo = bestID
			entry.Similarity = best.Similarity
			entry.DifferenceType = best.DifferenceType
		} else if bestID != "" {
			entry.Similarity = best.Similarity
		}

		entry.DocumentNumber = nextNumber
		nextNumber++
		tl.KeptCount++
		keptDocs = append(keptDocs, kept{id: m.doc.ID, fp: m.doc.Fingerprint, date: m.date})
		tl.Entries = append(tl.Entries, entry)
	}

	a.logger.Info("Timeline assembled",
		zap.Int("documents", len(members)),
		zap.Int("kept", tl.KeptCount),
		zap.Int("duplicates", tl.DuplicateCount),
		zap.Int("undated", tl.UndatedCount))

	return tl
}
