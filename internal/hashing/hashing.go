// Package hashing provides the content-identity primitives used across the
// corpus pipeline: text normalization, an exact content hash that is stable
// under placeholder injection and date reformatting, a 64-bit SimHash for
// fuzzy matching, and a fast FNV-1a hash for template lookup keys.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// SimHashBits is the number of bit positions in a SimHash.
const SimHashBits = 64

// NormalizeOptions controls text canonicalization.
type NormalizeOptions struct {
	CollapseWhitespace bool
	Lowercase          bool
	StripNumbers       bool
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	digitRun      = regexp.MustCompile(`\d+`)

	// Bracketed redaction placeholders, e.g. [SSN_1] or [PER_12].
	placeholderToken = regexp.MustCompile(`\[[A-Z]+_\d+\]`)

	// Date-like substrings collapsed before exact hashing so two copies of a
	// document that differ only in date formatting hash identically.
	dateLike = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{4}\b`),
	}
)

// Normalize canonicalizes text deterministically. StripNumbers replaces each
// maximal digit run with a single '#' so documents that differ only in
// variable numeric content (dates, lab values) normalize identically while
// the structural shape survives.
func Normalize(text string, opts NormalizeOptions) string {
	out := text
	if opts.Lowercase {
		out = strings.ToLower(out)
	}
	if opts.StripNumbers {
		out = digitRun.ReplaceAllString(out, "#")
	}
	if opts.CollapseWhitespace {
		out = whitespaceRun.ReplaceAllString(out, " ")
		out = strings.TrimSpace(out)
	}
	return out
}

// ContentHash computes the exact content identity of a document: SHA-256 over
// text with redaction placeholders collapsed, date-like substrings replaced
// by a canonical DATE token, and whitespace/case normalized. Two documents
// that differ only in injected placeholders or date formatting hash
// identically.
func ContentHash(text string) string {
	canon := placeholderToken.ReplaceAllString(text, "[REDACTED]")
	for _, re := range dateLike {
		canon = re.ReplaceAllString(canon, "DATE")
	}
	canon = Normalize(canon, NormalizeOptions{CollapseWhitespace: true, Lowercase: true})

	sum := sha256.Sum256([]byte(canon))
	return hex.EncodeToString(sum[:])
}

// SimHash computes a 64-position similarity hash over the word vocabulary of
// the text, encoded as a 64-character '0'/'1' string. Documents with
// overlapping vocabulary produce hashes with small Hamming distance.
func SimHash(text string) string {
	normalized := Normalize(text, NormalizeOptions{CollapseWhitespace: true, Lowercase: true})
	words := strings.Fields(normalized)

	var acc [SimHashBits]int
	for _, word := range words {
		if len(word) <= 2 {
			continue
		}
		h := wordHash32(word)
		for bit := 0; bit < SimHashBits; bit++ {
			if h>>(uint(bit)%32)&1 == 1 {
				acc[bit]++
			} else {
				acc[bit]--
			}
		}
	}

	var sb strings.Builder
	sb.Grow(SimHashBits)
	for bit := 0; bit < SimHashBits; bit++ {
		if acc[bit] > 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// HammingDistance counts differing bit positions between two SimHash strings.
// Hashes of unequal length are treated as maximally distant.
func HammingDistance(a, b string) int {
	if len(a) != len(b) {
		return SimHashBits
	}
	dist := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}

// SimHashSimilarity converts Hamming distance to a similarity in [0,1].
func SimHashSimilarity(a, b string) float64 {
	return 1.0 - float64(HammingDistance(a, b))/float64(SimHashBits)
}

// FNV1a64 returns the 64-bit FNV-1a hash of text as 16 lowercase hex
// characters. Used for template fingerprint lookup keys where collisions are
// acceptable; never for anything security-sensitive.
func FNV1a64(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}

// wordHash32 is a stable 32-bit FNV-1a mix of a single word.
func wordHash32(word string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return h.Sum32()
}
