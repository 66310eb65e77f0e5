package hashing

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Run("CollapseWhitespace", func(t *testing.T) {
		got := Normalize("a \t b\n\nc", NormalizeOptions{CollapseWhitespace: true})
		if got != "a b c" {
			t.Errorf("expected %q, got %q", "a b c", got)
		}
	})

	t.Run("Lowercase", func(t *testing.T) {
		got := Normalize("Lab Report", NormalizeOptions{Lowercase: true})
		if got != "lab report" {
			t.Errorf("expected %q, got %q", "lab report", got)
		}
	})

	t.Run("StripNumbers", func(t *testing.T) {
		got := Normalize("WBC 12.5 on 01/02/2023", NormalizeOptions{StripNumbers: true})
		if strings.ContainsAny(got, "0123456789") {
			t.Errorf("digits survived normalization: %q", got)
		}
		// Each maximal digit run collapses to a single placeholder
		if got != "WBC #.# on #/#/#" {
			t.Errorf("unexpected shape: %q", got)
		}
	})
}

func TestContentHash(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		text := "Patient presented with acute symptoms."
		first := ContentHash(text)
		for i := 0; i < 100; i++ {
			if got := ContentHash(text); got != first {
				t.Fatalf("hash changed on repetition %d", i)
			}
		}
		if len(first) != 64 {
			t.Errorf("expected 64 hex chars, got %d", len(first))
		}
	})

	t.Run("PlaceholderInvariance", func(t *testing.T) {
		a := ContentHash("Seen by [PER_1] for followup.")
		b := ContentHash("Seen by [PER_2] for followup.")
		if a != b {
			t.Error("documents differing only in placeholder index should hash identically")
		}
	})

	t.Run("DateFormatInvariance", func(t *testing.T) {
		a := ContentHash("Visit on 01/02/2023 was routine.")
		b := ContentHash("Visit on 2023-01-02 was routine.")
		if a != b {
			t.Error("documents differing only in date formatting should hash identically")
		}
	})

	t.Run("ContentSensitive", func(t *testing.T) {
		a := ContentHash("chest pain radiating to left arm")
		b := ContentHash("chest pain radiating to right arm")
		if a == b {
			t.Error("different content should hash differently")
		}
	})
}

func TestSimHash(t *testing.T) {
	t.Run("Shape", func(t *testing.T) {
		h := SimHash("erythrocyte sedimentation rate elevated")
		if len(h) != SimHashBits {
			t.Fatalf("expected %d characters, got %d", SimHashBits, len(h))
		}
		for _, c := range h {
			if c != '0' && c != '1' {
				t.Fatalf("unexpected character %q in simhash", c)
			}
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		text := "complete blood count within normal limits"
		first := SimHash(text)
		for i := 0; i < 100; i++ {
			if SimHash(text) != first {
				t.Fatalf("simhash changed on repetition %d", i)
			}
		}
	})

	t.Run("SimilarDocumentsAreClose", func(t *testing.T) {
		base := "Patient seen in clinic today. Complete blood count ordered. Follow up in two weeks with primary care physician for result review and medication adjustment."
		changed := strings.Replace(base, "two weeks", "three weeks", 1)

		sim := SimHashSimilarity(SimHash(base), SimHash(changed))
		if sim < 0.70 {
			t.Errorf("near-identical documents should have similarity >= 0.70, got %f", sim)
		}
	})

	t.Run("SimilarityBounds", func(t *testing.T) {
		pairs := [][2]string{
			{"alpha beta gamma", "alpha beta gamma"},
			{"alpha beta gamma", "delta epsilon zeta"},
			{"", "anything at all here"},
		}
		for _, p := range pairs {
			sim := SimHashSimilarity(SimHash(p[0]), SimHash(p[1]))
			if sim < 0 || sim > 1 {
				t.Errorf("similarity out of bounds for %q vs %q: %f", p[0], p[1], sim)
			}
		}
	})
}

func TestHammingDistance(t *testing.T) {
	if d := HammingDistance("0000", "0000"); d != 0 {
		t.Errorf("expected 0, got %d", d)
	}
	if d := HammingDistance("0101", "1010"); d != 4 {
		t.Errorf("expected 4, got %d", d)
	}
	if d := HammingDistance("01", "010"); d != SimHashBits {
		t.Errorf("length mismatch should be maximally distant, got %d", d)
	}
}

func TestFNV1a64(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		first := FNV1a64("template block content")
		for i := 0; i < 100; i++ {
			if FNV1a64("template block content") != first {
				t.Fatalf("hash changed on repetition %d", i)
			}
		}
		if len(first) != 16 {
			t.Errorf("expected 16 hex chars, got %d (%s)", len(first), first)
		}
	})

	t.Run("Sensitivity", func(t *testing.T) {
		if FNV1a64("page 1 of 2") == FNV1a64("page 1 of 3") {
			t.Error("one-character difference should change the hash")
		}
	})
}
