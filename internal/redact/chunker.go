package redact

import (
	"regexp"
	"strings"
)

// sentencePattern is the fallback sentence scan: a run of non-terminator
// characters followed by its terminators, or a trailing fragment without one.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// chunk is a contiguous region of the working buffer submitted to the
// external model as one unit. Offsets index the buffer the chunk was cut
// from; the caller carries over any bytes the sentence scan leaves between
// chunks.
type chunk struct {
	start int
	end   int
	text  string
}

// chunkSentences splits text into sentences and groups consecutive sentences
// into chunks of at most maxChars, never splitting a sentence. A sentence
// longer than maxChars becomes its own chunk.
func chunkSentences(text string, maxChars int) []chunk {
	if maxChars <= 0 {
		maxChars = 2000
	}
	locs := sentencePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var chunks []chunk
	curStart, curEnd := locs[0][0], locs[0][0]
	for _, loc := range locs {
		sentenceLen := loc[1] - loc[0]
		if curEnd > curStart && (curEnd-curStart)+sentenceLen > maxChars {
			chunks = append(chunks, chunk{curStart, curEnd, text[curStart:curEnd]})
			curStart = loc[0]
		}
		curEnd = loc[1]
	}
	if curEnd > curStart {
		chunks = append(chunks, chunk{curStart, curEnd, text[curStart:curEnd]})
	}
	return chunks
}

// passthrough reports whether a chunk has nothing left for the model:
// only whitespace, punctuation, and already-assigned placeholders.
func passthrough(c chunk) bool {
	stripped := containsPlaceholder.ReplaceAllString(c.text, "")
	stripped = strings.TrimFunc(stripped, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' ||
			r == '.' || r == ',' || r == ';' || r == ':' || r == '!' || r == '?' || r == '-'
	})
	return strings.TrimSpace(stripped) == ""
}
