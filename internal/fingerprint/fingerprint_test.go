package fingerprint

import (
	"strings"
	"testing"
	"time"
)

func TestNewFingerprint(t *testing.T) {
	text := "LABORATORY REPORT\nCollected 01/02/2023. CBC results within reference range.\nRepeat draw 01/02/2023 confirmed."
	fp := New("results.txt", text)

	if len(fp.ContentHash) != 64 {
		t.Errorf("content hash length = %d, want 64", len(fp.ContentHash))
	}
	if len(fp.SimHash) != 64 {
		t.Errorf("sim hash length = %d, want 64", len(fp.SimHash))
	}
	if fp.WordCount != len(strings.Fields(text)) {
		t.Errorf("word count = %d, want %d", fp.WordCount, len(strings.Fields(text)))
	}
	if fp.DocumentType != TypeLabReport {
		t.Errorf("document type = %q, want %q", fp.DocumentType, TypeLabReport)
	}
	if len(fp.DateReferences) != 1 || fp.DateReferences[0] != "01/02/2023" {
		t.Errorf("date references = %v, want one deduplicated date", fp.DateReferences)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	cases := []struct {
		filename string
		text     string
		want     string
	}{
		{"scan.txt", "MRI of the lumbar spine. Impression: unremarkable.", TypeImaging},
		{"note.txt", "Progress Note. Subjective: feeling better.", TypeProgressNote},
		{"rx.txt", "Prescription refill requested. Sig: one tablet daily.", TypeMedication},
		{"summary.txt", "Hospital course uneventful. Discharge in stable condition.", TypeDischarge},
		{"letter.txt", "Dear colleague, thank you for the referral. Sincerely,", TypeCorrespondence},
		{"misc.txt", "Unstructured content with no markers.", TypeUnknown},
		// lab outranks imaging when both keyword families appear
		{"combined.txt", "Laboratory values reviewed alongside imaging findings.", TypeLabReport},
	}
	for _, c := range cases {
		if got := classify(c.filename, c.text); got != c.want {
			t.Errorf("classify(%q, %q) = %q, want %q", c.filename, c.text, got, c.want)
		}
	}
}

func TestClassifyUsesFilename(t *testing.T) {
	if got := classify("pathology_biopsy.pdf", "no body markers"); got != TypePathology {
		t.Errorf("filename keywords ignored: got %q", got)
	}
}

func TestAnalyzeDuplicationExact(t *testing.T) {
	text := "Progress note. Patient stable."
	a := New("a.txt", text)
	b := New("b.txt", text)

	analysis := AnalyzeDuplication(a, b, time.Time{}, time.Time{})
	if !analysis.IsDuplicate {
		t.Error("identical content not flagged as duplicate")
	}
	if analysis.DifferenceType != DiffExact {
		t.Errorf("difference type = %q, want %q", analysis.DifferenceType, DiffExact)
	}
	if analysis.Similarity != 1.0 {
		t.Errorf("similarity = %f, want 1.0", analysis.Similarity)
	}
	if analysis.DuplicateOf != b.ContentHash {
		t.Error("duplicateOf does not reference the compared document")
	}
}

func TestAnalyzeDuplicationDateInvariance(t *testing.T) {
	// contentHash canonicalizes dates, so a changed date alone still hashes
	// identically.
	a := New("a.txt", "Office visit on 01/02/2023. Assessment unchanged from prior.")
	b := New("b.txt", "Office visit on 01/05/2023. Assessment unchanged from prior.")

	analysis := AnalyzeDuplication(a, b, time.Time{}, time.Time{})
	if analysis.DifferenceType != DiffExact {
		t.Errorf("date-only change should hash exact, got %q (similarity %f)",
			analysis.DifferenceType, analysis.Similarity)
	}
}

// simHashAtDistance builds a 64-bit SimHash string differing from the
// all-zero hash in exactly d bit positions.
func simHashAtDistance(d int) string {
	bits := []byte(strings.Repeat("0", 64))
	for i := 0; i < d; i++ {
		bits[i] = '1'
	}
	return string(bits)
}

func TestAnalyzeDuplicationSameEvent(t *testing.T) {
	// 12 differing bits: similarity = 1 - 12/64 = 0.8125, inside the
	// same-event band.
	a := &Fingerprint{ContentHash: "hash-a", SimHash: simHashAtDistance(0), DocumentType: TypeLabReport}
	b := &Fingerprint{ContentHash: "hash-b", SimHash: simHashAtDistance(12), DocumentType: TypeLabReport}

	dateA := time.Date(2023, 3, 1, 8, 0, 0, 0, time.UTC)
	dateB := dateA.Add(24 * time.Hour)

	analysis := AnalyzeDuplication(a, b, dateA, dateB)
	if analysis.DifferenceType != DiffSameEvent {
		t.Errorf("difference type = %q, want %q (similarity %f)",
			analysis.DifferenceType, DiffSameEvent, analysis.Similarity)
	}
	if analysis.IsDuplicate {
		t.Error("same-event must not be flagged as duplicate")
	}

	t.Run("outside 72h window", func(t *testing.T) {
		far := AnalyzeDuplication(a, b, dateA, dateA.Add(96*time.Hour))
		if far.DifferenceType != DiffUnique {
			t.Errorf("difference type = %q, want %q", far.DifferenceType, DiffUnique)
		}
	})

	t.Run("missing dates", func(t *testing.T) {
		nodate := AnalyzeDuplication(a, b, time.Time{}, time.Time{})
		if nodate.DifferenceType != DiffUnique {
			t.Errorf("difference type = %q, want %q", nodate.DifferenceType, DiffUnique)
		}
	})

	t.Run("different document types", func(t *testing.T) {
		c := &Fingerprint{ContentHash: "hash-c", SimHash: simHashAtDistance(12), DocumentType: TypeImaging}
		mixed := AnalyzeDuplication(a, c, dateA, dateB)
		if mixed.DifferenceType != DiffUnique {
			t.Errorf("difference type = %q, want %q", mixed.DifferenceType, DiffUnique)
		}
	})

	t.Run("near duplicate band", func(t *testing.T) {
		d := &Fingerprint{ContentHash: "hash-d", SimHash: simHashAtDistance(2), DocumentType: TypeLabReport}
		near := AnalyzeDuplication(a, d, dateA, dateB)
		if near.DifferenceType != DiffNearDuplicate || !near.IsDuplicate {
			t.Errorf("got %q (dup=%v), want near-duplicate", near.DifferenceType, near.IsDuplicate)
		}
	})
}

func TestAnalyzeDuplicationSimilarityBounds(t *testing.T) {
	docs := []*Fingerprint{
		New("a.txt", ""),
		New("b.txt", "one short line"),
		New("c.txt", strings.Repeat("completely different vocabulary here ", 50)),
		New("d.txt", strings.Repeat("another unrelated body of text entirely ", 50)),
	}
	for _, a := range docs {
		for _, b := range docs {
			analysis := AnalyzeDuplication(a, b, time.Time{}, time.Time{})
			if analysis.Similarity < 0 || analysis.Similarity > 1 {
				t.Errorf("similarity %f outside [0,1]", analysis.Similarity)
			}
		}
	}
}

func TestExtractDatesFirstAppearanceOrder(t *testing.T) {
	text := "Seen 2023-01-05, follow up 01/09/2023, originally 2023-01-05."
	dates := ExtractDates(text)
	want := []string{"2023-01-05", "01/09/2023"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], want[i])
		}
	}
}
