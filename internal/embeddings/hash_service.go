package embeddings

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HashEmbeddingService provides fast deterministic embeddings using
// cryptographic hashing with clinical feature boosting. The same text always
// produces the same vector, which keeps corpus runs reproducible without a
// model download.
type HashEmbeddingService struct {
	config    *ModelConfig
	logger    *zap.Logger
	stats     *ModelStats
	analyzer  *Analyzer
	mu        sync.RWMutex
	startTime time.Time
}

// NewHashEmbeddingService creates a new hash-based embedding service
func NewHashEmbeddingService(config *ModelConfig, logger *zap.Logger) (*HashEmbeddingService, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config cannot be nil", ErrConfigError)
	}

	start := time.Now()
	service := &HashEmbeddingService{
		config:    config,
		logger:    logger,
		analyzer:  NewAnalyzer(logger),
		startTime: start,
		stats: &ModelStats{
			ServiceType:   "hash",
			StartTime:     start,
			ModelLoadTime: time.Since(start),
		},
	}

	logger.Info("Hash embedding service initialized",
		zap.String("type", "deterministic_hash"),
		zap.Int("embedding_dimensions", EmbeddingDimensions))

	return service, nil
}

// GenerateEmbedding generates a deterministic embedding for text
func (s *HashEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (*EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}

	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: context cancelled", ErrTimeoutError)
	default:
	}

	clinical := s.analyzer.AnalyzeClinicalContent(text)
	features := s.analyzer.GenerateTextFeatures(text)
	embedding := s.generateDeterministicEmbedding(text, &clinical, &features)

	duration := time.Since(start)
	tokenCount := len(strings.Fields(text))
	s.updateStats(1, tokenCount, duration, true)

	return &EmbeddingResult{
		Embedding:   embedding,
		Duration:    duration,
		TokenCount:  tokenCount,
		Features:    &features,
		Clinical:    &clinical,
		ServiceType: "hash",
		CacheHit:    false,
	}, nil
}

// GenerateBatchEmbeddings generates embeddings for multiple texts
func (s *HashEmbeddingService) GenerateBatchEmbeddings(ctx context.Context, texts []string) (*BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return &BatchEmbeddingResult{ServiceType: "hash"}, nil
	}

	start := time.Now()
	embeddings := make([][]float32, 0, len(texts))
	totalTokens := 0
	successful := 0
	failed := 0
	var errors []error

	for i, text := range texts {
		select {
		case <-ctx.Done():
			errors = append(errors, fmt.Errorf("batch processing cancelled at item %d", i))
			failed++
			continue
		default:
		}

		if strings.TrimSpace(text) == "" {
			errors = append(errors, fmt.Errorf("empty text at index %d", i))
			failed++
			embeddings = append(embeddings, nil)
			continue
		}

		clinical := s.analyzer.AnalyzeClinicalContent(text)
		features := s.analyzer.GenerateTextFeatures(text)
		embeddings = append(embeddings, s.generateDeterministicEmbedding(text, &clinical, &features))
		totalTokens += len(strings.Fields(text))
		successful++
	}

	duration := time.Since(start)
	s.updateStats(int64(successful), totalTokens, duration, successful > 0)

	return &BatchEmbeddingResult{
		Embeddings:  embeddings,
		Duration:    duration,
		TotalTokens: totalTokens,
		Successful:  successful,
		Failed:      failed,
		Errors:      errors,
		ServiceType: "hash",
	}, nil
}

// generateDeterministicEmbedding builds the vector in three segments: a
// hash-seeded base, clinical cluster features, and text characteristics.
func (s *HashEmbeddingService) generateDeterministicEmbedding(text string, clinical *ClinicalFeatures, features *TextFeatures) []float32 {
	hash := s.analyzer.CreateDeterministicHash(text)
	embedding := make([]float32, EmbeddingDimensions)

	s.generateHashBasedFeatures(hash, embedding[:256])
	s.addClinicalFeatures(clinical, embedding[256:320])
	s.addTextFeatures(features, embedding[320:384])

	return s.analyzer.NormalizeEmbedding(embedding)
}

// generateHashBasedFeatures creates deterministic features from hash
func (s *HashEmbeddingService) generateHashBasedFeatures(hash [32]byte, target []float32) {
	seeds := []int64{
		int64(binary.BigEndian.Uint64(hash[0:8])),
		int64(binary.BigEndian.Uint64(hash[8:16])),
		int64(binary.BigEndian.Uint64(hash[16:24])),
		int64(binary.BigEndian.Uint64(hash[24:32])),
	}

	segmentSize := len(target) / len(seeds)
	for i, seed := range seeds {
		rng := rand.New(rand.NewSource(seed))
		start := i * segmentSize
		end := start + segmentSize
		if i == len(seeds)-1 {
			end = len(target)
		}
		for j := start; j < end; j++ {
			target[j] = float32(rng.NormFloat64())
		}
	}
}

// addClinicalFeatures encodes the vocabulary cluster analysis
func (s *HashEmbeddingService) addClinicalFeatures(clinical *ClinicalFeatures, target []float32) {
	target[0] = clinical.Density
	target[1] = float32(math.Min(float64(clinical.TotalHits)/20.0, 1.0))

	idx := 2
	for _, name := range clusterOrder {
		if idx >= len(target) {
			break
		}
		target[idx] = clinical.ClusterScores[name]
		idx++
	}

	// One-hot the dominant cluster in the next block of dimensions.
	for i, name := range clusterOrder {
		pos := 16 + i
		if pos >= len(target) {
			break
		}
		if clinical.DominantCluster == name {
			target[pos] = 1.0
		}
	}
}

// addTextFeatures adds text characteristic features
func (s *HashEmbeddingService) addTextFeatures(features *TextFeatures, target []float32) {
	target[0] = float32(math.Min(float64(features.Length)/10000.0, 1.0))
	target[1] = float32(math.Min(float64(features.WordCount)/1000.0, 1.0))
	target[2] = float32(math.Min(float64(features.AvgWordLength)/20.0, 1.0))
	target[3] = features.DigitRatio
	target[4] = features.CapitalizationRatio
	target[5] = float32(math.Min(float64(features.LineCount)/200.0, 1.0))
	target[6] = float32(math.Min(float64(features.SentenceCount)/100.0, 1.0))
	target[7] = features.Entropy
	target[8] = features.RepetitionScore
	target[9] = float32(math.Min(float64(features.PlaceholderCount)/50.0, 1.0))

	for i := 10; i < len(target); i++ {
		combined := (target[i%10] + target[(i+1)%10]) / 2.0
		target[i] = float32(math.Sin(float64(combined) * math.Pi))
	}
}

// ComputeSimilarity computes cosine similarity between two vectors
func (s *HashEmbeddingService) ComputeSimilarity(vec1, vec2 []float32) float32 {
	return s.analyzer.ComputeCosineSimilarity(vec1, vec2)
}

// GetStats returns model performance statistics
func (s *HashEmbeddingService) GetStats() *ModelStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := *s.stats
	return &stats
}

// updateStats updates performance statistics thread-safely
func (s *HashEmbeddingService) updateStats(inferences int64, tokens int, duration time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalInferences += inferences
	s.stats.TotalTokens += int64(tokens)
	s.stats.LastInferenceTime = time.Now()

	if success {
		s.stats.SuccessfulRuns += inferences
	} else {
		s.stats.FailedRuns += inferences
	}

	total := s.stats.SuccessfulRuns + s.stats.FailedRuns
	if total > 0 {
		s.stats.ErrorRate = float64(s.stats.FailedRuns) / float64(total)
	}

	if s.stats.SuccessfulRuns > 0 {
		totalDuration := time.Duration(s.stats.SuccessfulRuns) * s.stats.AvgInferenceTime
		s.stats.AvgInferenceTime = (totalDuration + duration) / time.Duration(s.stats.SuccessfulRuns)
	} else {
		s.stats.AvgInferenceTime = duration
	}

	if s.stats.TotalInferences > 0 {
		s.stats.AvgTokensPerText = float64(s.stats.TotalTokens) / float64(s.stats.TotalInferences)
	}
}

// Close cleans up resources
func (s *HashEmbeddingService) Close() error {
	return nil
}
