package redact

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/ner"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), nil, zap.NewNop())
}

func scrub(t *testing.T, text string) *ScrubResult {
	t.Helper()
	res, err := newTestEngine().Scrub(context.Background(), text, Options{RegexOnly: true})
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	return res
}

func TestScrubStructuralPatterns(t *testing.T) {
	t.Run("ssn", func(t *testing.T) {
		res := scrub(t, "Patient SSN: 123-45-6789 for insurance verification.")
		ph, ok := res.Replacements["123-45-6789"]
		if !ok {
			t.Fatalf("SSN not in replacement map: %v", res.Replacements)
		}
		if matched, _ := regexp.MatchString(`^\[SSN_\d+\]$`, ph); !matched {
			t.Errorf("placeholder %q does not have SSN form", ph)
		}
		if strings.Contains(res.Text.String(), "123-45-6789") {
			t.Error("original SSN survived redaction")
		}
		if !strings.Contains(res.Text.String(), ph) {
			t.Error("placeholder missing from redacted text")
		}
	})

	t.Run("email", func(t *testing.T) {
		res := scrub(t, "Contact john.doe@example.com with results.")
		if _, ok := res.Replacements["john.doe@example.com"]; !ok {
			t.Errorf("email not redacted: %v", res.Replacements)
		}
	})

	t.Run("phone", func(t *testing.T) {
		res := scrub(t, "Call the patient at 555-867-5309 tomorrow.")
		if strings.Contains(res.Text.String(), "555-867-5309") {
			t.Error("phone number survived redaction")
		}
	})

	t.Run("date", func(t *testing.T) {
		res := scrub(t, "Seen on 03/14/2024 for follow up.")
		if strings.Contains(res.Text.String(), "03/14/2024") {
			t.Error("date survived redaction")
		}
	})

	t.Run("all caps name", func(t *testing.T) {
		res := scrub(t, "Transfer arranged by charge nurse WILLOUGHBY overnight.")
		ph, ok := res.Replacements["WILLOUGHBY"]
		if !ok {
			t.Fatalf("uppercase name not redacted: %v", res.Replacements)
		}
		if matched, _ := regexp.MatchString(`^\[PER_\d+\]$`, ph); !matched {
			t.Errorf("placeholder %q does not have PER form", ph)
		}
	})
}

func TestScrubRepeatedValueSamePlaceholder(t *testing.T) {
	text := "Email john.doe@example.com. Again: john.doe@example.com. Final: john.doe@example.com."
	res := scrub(t, text)

	ph, ok := res.Replacements["john.doe@example.com"]
	if !ok {
		t.Fatalf("email not in replacement map: %v", res.Replacements)
	}
	if n := strings.Count(res.Text.String(), ph); n != 3 {
		t.Errorf("placeholder count = %d, want 3", n)
	}
	emails := 0
	for orig := range res.Replacements {
		if strings.Contains(orig, "@") {
			emails++
		}
	}
	if emails != 1 {
		t.Errorf("expected one email entry in replacement map, got %d", emails)
	}
}

func TestScrubIdempotent(t *testing.T) {
	text := "Patient John Smith, SSN 123-45-6789, email jsmith@example.com, called 555-123-4567 on 01/02/2023."
	first := scrub(t, text)
	second := scrub(t, first.Text.String())

	if second.Count != 0 {
		t.Errorf("second pass found %d new replacements: %v", second.Count, second.Replacements)
	}
	if second.Text.String() != first.Text.String() {
		t.Errorf("second pass changed text:\nfirst:  %q\nsecond: %q", first.Text.String(), second.Text.String())
	}
}

func TestScrubCountMatchesReplacements(t *testing.T) {
	inputs := []string{
		"",
		"No PII here at all.",
		"SSN 123-45-6789 and email a@b.com and SSN 123-45-6789 again.",
		"Dr. Jane Wilson saw the patient at 123 Main St on 04/05/2021.",
	}
	for _, in := range inputs {
		res := scrub(t, in)
		if res.Count != len(res.Replacements) {
			t.Errorf("input %q: count %d != map size %d", in, res.Count, len(res.Replacements))
		}
	}
}

func TestScrubConfidencePresence(t *testing.T) {
	t.Run("regex only has no confidence", func(t *testing.T) {
		res := scrub(t, "SSN 123-45-6789.")
		if res.Confidence != nil {
			t.Errorf("regex-only confidence = %d, want nil", *res.Confidence)
		}
	})

	t.Run("full pipeline has confidence", func(t *testing.T) {
		provider := ner.NewProvider(func(ctx context.Context) (ner.Recognizer, error) {
			return noopRecognizer{}, nil
		}, zap.NewNop())
		eng := NewEngine(DefaultConfig(), provider, zap.NewNop())

		res, err := eng.Scrub(context.Background(), "Visit summary with no identifiers.", Options{})
		if err != nil {
			t.Fatalf("Scrub failed: %v", err)
		}
		if res.Confidence == nil {
			t.Fatal("full pipeline produced nil confidence")
		}
		if *res.Confidence < 0 || *res.Confidence > 100 {
			t.Errorf("confidence %d outside [0,100]", *res.Confidence)
		}
	})
}

func TestScrubNERSpans(t *testing.T) {
	text := "The patient mentioned cousin maryanne briefly."
	rec := spanRecognizer{spans: map[string][]ner.Span{
		text: {{Label: "PER", Start: 29, End: 37, Score: 0.97}},
	}}
	p := ner.NewProvider(func(ctx context.Context) (ner.Recognizer, error) {
		return rec, nil
	}, zap.NewNop())
	eng := NewEngine(DefaultConfig(), p, zap.NewNop())

	res, err := eng.Scrub(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if _, ok := res.Replacements["maryanne"]; !ok {
		t.Errorf("model span not redacted: %v", res.Replacements)
	}
	if strings.Contains(res.Text.String(), "maryanne") {
		t.Error("model-detected name survived redaction")
	}
}

func TestScrubKeepsTextBetweenChunks(t *testing.T) {
	provider := ner.NewProvider(func(ctx context.Context) (ner.Recognizer, error) {
		return noopRecognizer{}, nil
	}, zap.NewNop())
	eng := NewEngine(DefaultConfig(), provider, zap.NewNop())

	// The sentence scan only covers terminator runs that follow a sentence,
	// so leading runs sit outside every chunk and must still reach the output.
	for _, in := range []string{
		"!!! Emergency note follows.",
		"?!?",
		"...continued from prior page. Vitals stable.",
	} {
		res, err := eng.Scrub(context.Background(), in, Options{})
		if err != nil {
			t.Fatalf("Scrub(%q) failed: %v", in, err)
		}
		if got := res.Text.String(); got != in {
			t.Errorf("scrubbed %q = %q, want input unchanged", in, got)
		}
	}
}

func TestScrubLowScoreSpanIgnored(t *testing.T) {
	text := "The patient mentioned cousin maryanne briefly."
	rec := spanRecognizer{spans: map[string][]ner.Span{
		text: {{Label: "PER", Start: 29, End: 37, Score: 0.40}},
	}}
	p := ner.NewProvider(func(ctx context.Context) (ner.Recognizer, error) {
		return rec, nil
	}, zap.NewNop())
	eng := NewEngine(DefaultConfig(), p, zap.NewNop())

	res, err := eng.Scrub(context.Background(), text, Options{})
	if err != nil {
		t.Fatalf("Scrub failed: %v", err)
	}
	if _, ok := res.Replacements["maryanne"]; ok {
		t.Error("span below score threshold was redacted")
	}
}

func TestScrubEmptyInput(t *testing.T) {
	res := scrub(t, "")
	if res.Count != 0 || len(res.Replacements) != 0 {
		t.Errorf("empty input produced replacements: %v", res.Replacements)
	}
	if res.Text.String() != "" {
		t.Errorf("empty input changed text to %q", res.Text.String())
	}
}

func TestScrubMedicalAcronymsPreserved(t *testing.T) {
	text := "History of COPD and CHF. EKG and CBC ordered. REVIEW OF SYSTEMS negative."
	res := scrub(t, text)
	for _, term := range []string{"COPD", "CHF", "EKG", "CBC", "REVIEW OF SYSTEMS"} {
		if !strings.Contains(res.Text.String(), term) {
			t.Errorf("clinical term %q was redacted; text: %q", term, res.Text.String())
		}
	}
}

func TestConfidenceScore(t *testing.T) {
	cases := []struct {
		survivors int
		want      int
	}{
		{0, 100},
		{1, 95},
		{2, 90},
		{3, 82},
		{5, 66},
		{6, 56},
		{100, 50},
	}
	for _, c := range cases {
		if got := confidenceScore(c.survivors); got != c.want {
			t.Errorf("confidenceScore(%d) = %d, want %d", c.survivors, got, c.want)
		}
	}
}

// noopRecognizer returns no spans for any input.
type noopRecognizer struct{}

func (noopRecognizer) Recognize(ctx context.Context, text string) ([]ner.Span, error) {
	return nil, nil
}

func (noopRecognizer) Close() error { return nil }

// spanRecognizer returns canned spans keyed by exact input text.
type spanRecognizer struct {
	spans map[string][]ner.Span
}

func (r spanRecognizer) Recognize(ctx context.Context, text string) ([]ner.Span, error) {
	return r.spans[text], nil
}

func (r spanRecognizer) Close() error { return nil }
