package dedup

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{0.5, 0.5, 0.5, 0.5}, []float32{0.5, 0.5, 0.5, 0.5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sim-1.0) > 1e-9 {
			t.Errorf("similarity = %f, want 1.0", sim)
		}
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sim != 0 {
			t.Errorf("similarity = %f, want 0", sim)
		}
	})

	t.Run("zero vector yields zero not NaN", func(t *testing.T) {
		sim, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sim != 0 || math.IsNaN(sim) {
			t.Errorf("similarity = %f, want 0", sim)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		if _, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); err == nil {
			t.Error("expected dimension mismatch error")
		}
	})
}

func TestEuclideanDistance(t *testing.T) {
	d, err := EuclideanDistance([]float32{0, 0}, []float32{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(d-5.0) > 1e-9 {
		t.Errorf("distance = %f, want 5.0", d)
	}
	if _, err := EuclideanDistance([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestPooling(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		if MeanPool(nil) != nil {
			t.Error("mean pool of empty input not nil")
		}
		if MaxPool(nil) != nil {
			t.Error("max pool of empty input not nil")
		}
	})

	t.Run("singleton identity", func(t *testing.T) {
		v := []float32{1, 2, 3}
		mean := MeanPool([][]float32{v})
		max := MaxPool([][]float32{v})
		for i := range v {
			if mean[i] != v[i] || max[i] != v[i] {
				t.Fatalf("singleton pooling changed vector: mean=%v max=%v", mean, max)
			}
		}
	})

	t.Run("mean and max", func(t *testing.T) {
		vs := [][]float32{{1, 4}, {3, 2}}
		mean := MeanPool(vs)
		if mean[0] != 2 || mean[1] != 3 {
			t.Errorf("mean = %v, want [2 3]", mean)
		}
		max := MaxPool(vs)
		if max[0] != 3 || max[1] != 4 {
			t.Errorf("max = %v, want [3 4]", max)
		}
	})
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(norm-1.0) > 1e-6 {
		t.Errorf("norm^2 = %f, want 1.0", norm)
	}

	zero := NormalizeVector([]float32{0, 0, 0})
	for _, x := range zero {
		if x != 0 {
			t.Error("zero vector changed by normalization")
		}
	}
}

func TestChunkText(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		if got := ChunkText("", 10, 2); got != nil {
			t.Errorf("chunks of empty text = %v, want nil", got)
		}
	})

	t.Run("short text single chunk", func(t *testing.T) {
		got := ChunkText("short", 10, 2)
		if len(got) != 1 || got[0] != "short" {
			t.Errorf("chunks = %v, want [short]", got)
		}
	})

	t.Run("sliding window with overlap", func(t *testing.T) {
		got := ChunkText("abcdefghij", 4, 2)
		want := []string{"abcd", "cdef", "efgh", "ghij"}
		if len(got) != len(want) {
			t.Fatalf("chunks = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("chunk %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("final partial chunk included", func(t *testing.T) {
		got := ChunkText("abcdefg", 4, 2)
		if got[len(got)-1] != "efg" {
			t.Errorf("last chunk = %q, want partial tail", got[len(got)-1])
		}
	})

	t.Run("multibyte runes never split", func(t *testing.T) {
		text := strings.Repeat("température élevée après l'opération ", 8)
		for _, size := range []int{5, 16, 33} {
			for i, c := range ChunkText(text, size, size/4) {
				if !utf8.ValidString(c) {
					t.Errorf("size %d chunk %d is invalid UTF-8: %q", size, i, c)
				}
			}
		}
	})
}
