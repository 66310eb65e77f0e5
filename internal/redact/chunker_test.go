package redact

import (
	"strings"
	"testing"
)

func TestChunkSentencesReassembles(t *testing.T) {
	texts := []string{
		"One sentence.",
		"First sentence. Second sentence! Third sentence? Trailing fragment",
		strings.Repeat("A fairly long sentence that repeats itself. ", 100),
	}
	for _, text := range texts {
		chunks := chunkSentences(text, 2000)
		var rebuilt strings.Builder
		for _, c := range chunks {
			rebuilt.WriteString(c.text)
		}
		if rebuilt.String() != text {
			t.Errorf("chunks do not reassemble input of length %d", len(text))
		}
	}
}

func TestChunkSentencesRespectsMaxChars(t *testing.T) {
	sentence := "This sentence is exactly some fixed length for the test. "
	text := strings.Repeat(sentence, 200)
	chunks := chunkSentences(text, 500)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.text) > 500 && strings.Count(strings.TrimSpace(c.text), ".") > 1 {
			t.Errorf("chunk %d exceeds limit with multiple sentences: %d chars", i, len(c.text))
		}
	}
}

func TestChunkSentencesOversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 1000) + "."
	chunks := chunkSentences(long, 100)
	if len(chunks) != 1 {
		t.Fatalf("oversized sentence should be one chunk, got %d", len(chunks))
	}
	if chunks[0].text != long {
		t.Error("oversized sentence was split")
	}
}

func TestChunkOffsets(t *testing.T) {
	text := "Alpha beta. Gamma delta. Epsilon zeta."
	for _, c := range chunkSentences(text, 15) {
		if text[c.start:c.end] != c.text {
			t.Errorf("chunk offsets [%d,%d) do not index original text", c.start, c.end)
		}
	}
}

func TestPassthrough(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"   \n\t ", true},
		{"[PER_1] [DATE_2]", true},
		{"[PER_1], [DATE_2].", true},
		{"Real clinical content here.", false},
		{"[PER_1] saw the patient.", false},
	}
	for _, c := range cases {
		got := passthrough(chunk{text: c.text})
		if got != c.want {
			t.Errorf("passthrough(%q) = %v, want %v", c.text, got, c.want)
		}
	}
}
