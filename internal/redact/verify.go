package redact

import "regexp"

// survivorPatterns detect residual PII shapes in fully redacted text. The
// verification pass never mutates; it only scores how clean the output is.
var survivorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{9,}\b`),
	regexp.MustCompile(`\b[A-Z][a-z]+,\s[A-Z][a-z]+\b`),
}

// verify counts survivor matches and converts them into a confidence score.
// A clean document scores 100; each survivor costs progressively more, with
// a floor of 50.
func verify(text string) int {
	survivors := 0
	for _, p := range survivorPatterns {
		for _, m := range p.FindAllString(text, -1) {
			if !whitelisted(m) {
				survivors++
			}
		}
	}
	return confidenceScore(survivors)
}

func confidenceScore(survivors int) int {
	score := 100
	for i := 0; i < survivors; i++ {
		switch {
		case i < 2:
			score -= 5
		case i < 5:
			score -= 8
		default:
			score -= 10
		}
	}
	if score < 50 {
		score = 50
	}
	return score
}
