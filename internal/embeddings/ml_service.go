package embeddings

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MLEmbeddingService generates embeddings with a transformer backend when
// one is available, falling back to a deterministic hybrid of hash, clinical
// and tokenization features otherwise. Results are cached in Redis keyed by
// text hash.
type MLEmbeddingService struct {
	config      ModelConfig
	logger      *zap.Logger
	analyzer    *Analyzer
	stats       *ModelStats
	redisClient *redis.Client
	tokenizer   *Tokenizer
	backend     TransformerBackend
	mu          sync.RWMutex
	startTime   time.Time
}

// Tokenizer handles text tokenization for ML models
type Tokenizer struct {
	Vocab         map[string]int
	SpecialTokens map[string]int
	MaxLength     int
}

// NewMLEmbeddingService creates a new ML-based embedding service
func NewMLEmbeddingService(config ModelConfig, logger *zap.Logger, redisClient *redis.Client) (*MLEmbeddingService, error) {
	start := time.Now()
	logger.Info("Initializing ML embedding service",
		zap.String("model", config.ModelName),
		zap.Bool("redis_enabled", redisClient != nil))

	service := &MLEmbeddingService{
		config:      config,
		logger:      logger,
		analyzer:    NewAnalyzer(logger),
		redisClient: redisClient,
		startTime:   start,
		stats: &ModelStats{
			ServiceType: "ml",
			StartTime:   start,
		},
	}

	tokenizer, err := service.initializeTokenizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer: %w", err)
	}
	service.tokenizer = tokenizer

	service.backend = NewTransformerBackend(logger, config.ModelPath, config.MaxLength)
	if service.backend != nil && service.backend.IsReady() {
		logger.Info("Transformer backend ready", zap.String("model_path", config.ModelPath))
	} else {
		logger.Info("No transformer backend available, using hybrid embeddings")
	}
	service.stats.ModelLoadTime = time.Since(start)

	logger.Info("ML embedding service initialized",
		zap.Int("tokenizer_vocab_count", len(tokenizer.Vocab)),
		zap.Int("max_length", tokenizer.MaxLength),
		zap.Int("embedding_dims", EmbeddingDimensions),
		zap.Duration("total_load_time", service.stats.ModelLoadTime))

	return service, nil
}

// GenerateEmbedding generates a single embedding using the ML model
func (s *MLEmbeddingService) GenerateEmbedding(ctx context.Context, text string) (*EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrInvalidInput)
	}

	start := time.Now()

	if s.redisClient != nil {
		if cached, err := s.getCachedEmbedding(ctx, text); err == nil && cached != nil {
			s.updateStats(1, len(strings.Fields(text)), time.Since(start), true, true)
			return &EmbeddingResult{
				Embedding:   cached,
				Duration:    time.Since(start),
				TokenCount:  len(strings.Fields(text)),
				ServiceType: "ml",
				CacheHit:    true,
			}, nil
		}
	}

	tokens, err := s.tokenizer.Tokenize(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenizationFailed, err)
	}

	clinical := s.analyzer.AnalyzeClinicalContent(text)
	features := s.analyzer.GenerateTextFeatures(text)

	var embedding []float32
	if s.backend != nil && s.backend.IsReady() {
		batch, err := s.backend.EmbedBatch(ctx, []*TokenizedInput{tokens})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
		}
		embedding = s.analyzer.NormalizeEmbedding(batch[0])
	} else {
		embedding = s.generateHybridEmbedding(text, &clinical, &features, tokens)
	}

	if s.redisClient != nil {
		s.cacheEmbedding(ctx, text, embedding)
	}

	duration := time.Since(start)
	s.updateStats(1, tokens.TokenCount, duration, true, false)

	return &EmbeddingResult{
		Embedding:   embedding,
		Duration:    duration,
		TokenCount:  tokens.TokenCount,
		Features:    &features,
		Clinical:    &clinical,
		ServiceType: "ml",
	}, nil
}

// GenerateBatchEmbeddings generates embeddings for multiple texts
func (s *MLEmbeddingService) GenerateBatchEmbeddings(ctx context.Context, texts []string) (*BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return &BatchEmbeddingResult{ServiceType: "ml"}, nil
	}

	start := time.Now()
	result := &BatchEmbeddingResult{
		Embeddings:  make([][]float32, 0, len(texts)),
		ServiceType: "ml",
	}

	for i, text := range texts {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, fmt.Errorf("batch processing cancelled at item %d", i))
			result.Failed++
			continue
		default:
		}

		single, err := s.GenerateEmbedding(ctx, text)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("item %d: %w", i, err))
			result.Failed++
			result.Embeddings = append(result.Embeddings, nil)
			continue
		}
		result.Embeddings = append(result.Embeddings, single.Embedding)
		result.TotalTokens += single.TokenCount
		result.Successful++
		if single.CacheHit {
			result.CacheHits++
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// generateHybridEmbedding combines hash, clinical, text and tokenization
// features into one deterministic vector.
func (s *MLEmbeddingService) generateHybridEmbedding(text string, clinical *ClinicalFeatures, features *TextFeatures, tokens *TokenizedInput) []float32 {
	hash := s.analyzer.CreateDeterministicHash(text)
	embedding := make([]float32, EmbeddingDimensions)

	// Hash base occupies the first half; feature blocks fill the rest.
	for i := 0; i < 192; i++ {
		embedding[i] = float32(hash[i%32])/255.0 - 0.5
	}

	idx := 192
	for _, name := range clusterOrder {
		if idx >= 256 {
			break
		}
		embedding[idx] = clinical.ClusterScores[name]
		idx++
	}
	embedding[256] = clinical.Density
	embedding[257] = features.Entropy
	embedding[258] = features.DigitRatio
	embedding[259] = features.CapitalizationRatio
	embedding[260] = features.RepetitionScore

	// Token distribution features.
	for i, id := range tokens.InputIDs {
		pos := 264 + i%(EmbeddingDimensions-264)
		embedding[pos] += float32(id%97) / 97.0
	}

	return s.analyzer.NormalizeEmbedding(embedding)
}

func (s *MLEmbeddingService) getCachedEmbedding(ctx context.Context, text string) ([]float32, error) {
	data, err := s.redisClient.Get(ctx, s.getCacheKey(text)).Result()
	if err != nil {
		return nil, err
	}

	parts := strings.Split(data, ",")
	if len(parts) != EmbeddingDimensions {
		return nil, fmt.Errorf("cached embedding has wrong dimensions: %d", len(parts))
	}
	embedding := make([]float32, EmbeddingDimensions)
	for i, part := range parts {
		var val float64
		if _, err := fmt.Sscanf(part, "%f", &val); err != nil {
			return nil, fmt.Errorf("failed to parse cached embedding: %w", err)
		}
		embedding[i] = float32(val)
	}
	return embedding, nil
}

func (s *MLEmbeddingService) cacheEmbedding(ctx context.Context, text string, embedding []float32) {
	parts := make([]string, len(embedding))
	for i, val := range embedding {
		parts[i] = fmt.Sprintf("%.6f", val)
	}
	ttl := s.config.CacheTTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	if err := s.redisClient.Set(ctx, s.getCacheKey(text), strings.Join(parts, ","), ttl).Err(); err != nil {
		s.logger.Error("Failed to cache embedding", zap.Error(err))
	}
}

func (s *MLEmbeddingService) getCacheKey(text string) string {
	hash := s.analyzer.CreateDeterministicHash(text)
	return fmt.Sprintf("embedding:ml:%x", hash[:8])
}

func (s *MLEmbeddingService) initializeTokenizer() (*Tokenizer, error) {
	vocab := make(map[string]int)

	specialTokens := map[string]int{
		"[PAD]":  0,
		"[UNK]":  1,
		"[CLS]":  101,
		"[SEP]":  102,
		"[MASK]": 103,
	}
	for token, id := range specialTokens {
		vocab[token] = id
	}

	commonWords := []string{
		"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
		"is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "no", "not",
		"patient", "history", "exam", "normal", "left", "right", "bilateral", "acute", "chronic",
		"pain", "stable", "continue", "daily", "follow", "up", "visit", "noted", "denies",
		"reports", "reviewed", "ordered", "results", "impression", "assessment", "plan",
		"medication", "dose", "tablet", "lab", "blood", "pressure", "heart", "rate",
		"discharge", "admission", "diagnosis", "treatment", "symptoms", "negative", "positive",
	}
	startID := 1000
	for i, word := range commonWords {
		vocab[word] = startID + i
	}

	maxLength := s.config.MaxLength
	if maxLength <= 0 {
		maxLength = 512
	}

	return &Tokenizer{
		Vocab:         vocab,
		SpecialTokens: specialTokens,
		MaxLength:     maxLength,
	}, nil
}

// Tokenize converts text to token IDs
func (t *Tokenizer) Tokenize(text string) (*TokenizedInput, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot tokenize empty text")
	}

	text = strings.ToLower(strings.TrimSpace(text))
	words := strings.Fields(text)

	tokenIDs := []int32{int32(t.SpecialTokens["[CLS]"])}
	attentionMask := []int32{1}

	for _, word := range words {
		if id, exists := t.Vocab[word]; exists {
			tokenIDs = append(tokenIDs, int32(id))
		} else {
			tokenIDs = append(tokenIDs, int32(t.SpecialTokens["[UNK]"]))
		}
		attentionMask = append(attentionMask, 1)

		if len(tokenIDs) >= t.MaxLength-1 {
			break
		}
	}

	tokenIDs = append(tokenIDs, int32(t.SpecialTokens["[SEP]"]))
	attentionMask = append(attentionMask, 1)

	tokenCount := len(tokenIDs)
	truncated := tokenCount >= t.MaxLength

	for len(tokenIDs) < t.MaxLength {
		tokenIDs = append(tokenIDs, int32(t.SpecialTokens["[PAD]"]))
		attentionMask = append(attentionMask, 0)
	}

	return &TokenizedInput{
		InputIDs:      tokenIDs,
		AttentionMask: attentionMask,
		TokenTypeIDs:  make([]int32, t.MaxLength),
		TokenCount:    tokenCount,
		OriginalText:  text,
		Truncated:     truncated,
	}, nil
}

// ComputeSimilarity computes cosine similarity between embeddings
func (s *MLEmbeddingService) ComputeSimilarity(vec1, vec2 []float32) float32 {
	return s.analyzer.ComputeCosineSimilarity(vec1, vec2)
}

// GetStats returns model performance statistics
func (s *MLEmbeddingService) GetStats() *ModelStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := *s.stats
	return &stats
}

func (s *MLEmbeddingService) updateStats(requests int64, tokens int, duration time.Duration, success, cacheHit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.TotalInferences += requests
	s.stats.TotalTokens += int64(tokens)
	s.stats.LastInferenceTime = time.Now()

	if success {
		s.stats.SuccessfulRuns += requests
	} else {
		s.stats.FailedRuns += requests
	}

	total := s.stats.SuccessfulRuns + s.stats.FailedRuns
	if total > 0 {
		s.stats.ErrorRate = float64(s.stats.FailedRuns) / float64(total)
	}
	if s.stats.SuccessfulRuns > 0 {
		totalDuration := time.Duration(s.stats.SuccessfulRuns) * s.stats.AvgInferenceTime
		s.stats.AvgInferenceTime = (totalDuration + duration) / time.Duration(s.stats.SuccessfulRuns)
	}
	if s.stats.TotalInferences > 0 {
		s.stats.AvgTokensPerText = float64(s.stats.TotalTokens) / float64(s.stats.TotalInferences)
	}
	if cacheHit {
		// Approximate running ratio; exact hit counts live in the cache layer.
		s.stats.CacheHitRatio = (s.stats.CacheHitRatio*float64(total-1) + 1) / float64(total)
	} else {
		s.stats.CacheHitRatio = s.stats.CacheHitRatio * float64(total-1) / float64(total)
	}
}

// Close cleans up resources
func (s *MLEmbeddingService) Close() error {
	if s.backend != nil {
		return s.backend.Close()
	}
	return nil
}
