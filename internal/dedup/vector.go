package dedup

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// CosineSimilarity returns dot(a,b) over the product of magnitudes. A zero vector yields 0 rather
// than NaN; mismatched dimensions are a caller error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dedup: dimension mismatch %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EuclideanDistance returns the L2 distance between two vectors.
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dedup: dimension mismatch %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// MeanPool averages a list of equal-length vectors component-wise. Empty
// input returns nil; a singleton returns a copy of itself.
func MeanPool(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	out := make([]float32, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			out[i] += v[i]
		}
	}
	n := float32(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out
}

// MaxPool takes the component-wise maximum of a list of equal-length
// vectors. Empty input returns nil.
func MaxPool(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	out := make([]float32, dim)
	copy(out, vectors[0])
	for _, v := range vectors[1:] {
		for i := 0; i < dim && i < len(v); i++ {
			if v[i] > out[i] {
				out[i] = v[i]
			}
		}
	}
	return out
}

// NormalizeVector scales a vector to unit length in place and returns it.
// The zero vector maps to itself.
func NormalizeVector(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}

// ChunkText splits text into overlapping windows of roughly size bytes, each
// window starting size-overlap after the previous one. Window boundaries snap
// forward to rune starts so no chunk holds a partial UTF-8 sequence. The
// final partial chunk is included. Empty text yields no chunks.
func ChunkText(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	step := size - overlap
	if step <= 0 {
		step = size
	}
	var chunks []string
	for start := 0; start < len(text); start = runeCeil(text, start+step) {
		end := runeCeil(text, start+size)
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}

// runeCeil returns the smallest rune-start offset >= i, clamped to len(s).
func runeCeil(s string, i int) int {
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	if i > len(s) {
		i = len(s)
	}
	return i
}
