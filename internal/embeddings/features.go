package embeddings

import (
	"crypto/sha256"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// EmbeddingDimensions is the fixed output dimension of every service.
const EmbeddingDimensions = 384

// Analyzer holds the clinical vocabulary clusters and feature extraction
// helpers shared by all embedding services.
type Analyzer struct {
	logger           *zap.Logger
	semanticClusters map[string][]string
	mu               sync.RWMutex
}

// Cluster names in the fixed order used for feature dimensions.
var clusterOrder = []string{
	"laboratory",
	"medication",
	"imaging",
	"symptoms",
	"procedures",
	"vitals",
	"administrative",
}

// NewAnalyzer creates the shared feature analyzer.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	a := &Analyzer{
		logger:           logger,
		semanticClusters: make(map[string][]string),
	}
	a.initializeSemanticClusters()
	return a
}

func (a *Analyzer) initializeSemanticClusters() {
	a.semanticClusters["laboratory"] = []string{
		"hemoglobin", "glucose", "creatinine", "sodium", "potassium", "platelet",
		"specimen", "serum", "plasma", "panel", "assay", "reference",
	}

	a.semanticClusters["medication"] = []string{
		"tablet", "capsule", "dose", "dosage", "refill", "prescribed", "daily",
		"oral", "injection", "pharmacy", "discontinue", "titrate",
	}

	a.semanticClusters["imaging"] = []string{
		"radiograph", "contrast", "axial", "sagittal", "opacity", "effusion",
		"impression", "unremarkable", "lesion", "density", "views",
	}

	a.semanticClusters["symptoms"] = []string{
		"pain", "nausea", "fatigue", "fever", "cough", "dyspnea", "dizziness",
		"swelling", "weakness", "numbness", "tenderness",
	}

	a.semanticClusters["procedures"] = []string{
		"biopsy", "excision", "incision", "suture", "anesthesia", "catheter",
		"endoscopy", "resection", "drainage", "closure",
	}

	a.semanticClusters["vitals"] = []string{
		"pressure", "pulse", "temperature", "respiration", "saturation",
		"systolic", "diastolic", "bpm", "afebrile",
	}

	a.semanticClusters["administrative"] = []string{
		"insurance", "authorization", "referral", "billing", "claim",
		"appointment", "scheduling", "copay", "eligibility",
	}
}

// AnalyzeClinicalContent scores the text against each vocabulary cluster.
func (a *Analyzer) AnalyzeClinicalContent(text string) ClinicalFeatures {
	a.mu.RLock()
	defer a.mu.RUnlock()

	words := strings.Fields(strings.ToLower(text))
	result := ClinicalFeatures{
		ClusterScores: make(map[string]float32, len(clusterOrder)),
	}
	if len(words) == 0 {
		return result
	}

	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[strings.Trim(w, ".,;:!?()")] = true
	}

	var best float32
	for _, name := range clusterOrder {
		hits := 0
		for _, term := range a.semanticClusters[name] {
			if wordSet[term] {
				hits++
			}
		}
		score := float32(hits) / float32(len(a.semanticClusters[name]))
		result.ClusterScores[name] = score
		result.TotalHits += hits
		if score > best {
			best = score
			result.DominantCluster = name
		}
	}
	result.Density = float32(math.Min(float64(result.TotalHits)/float64(len(words))*10, 1.0))
	return result
}

// GenerateTextFeatures extracts numerical features from text
func (a *Analyzer) GenerateTextFeatures(text string) TextFeatures {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))

	return TextFeatures{
		Length:              len(text),
		WordCount:           len(words),
		AvgWordLength:       calculateAvgWordLength(words),
		DigitRatio:          calculateDigitRatio(text),
		CapitalizationRatio: calculateCapitalizationRatio(text),
		LineCount:           strings.Count(text, "\n") + 1,
		SentenceCount:       calculateSentenceCount(text),
		Entropy:             calculateEntropy(text),
		RepetitionScore:     calculateRepetitionScore(words),
		PlaceholderCount:    strings.Count(text, "["),
	}
}

// CreateDeterministicHash creates a deterministic hash for consistent embeddings
func (a *Analyzer) CreateDeterministicHash(text string) [32]byte {
	return sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
}

// NormalizeEmbedding normalizes a vector to unit length
func (a *Analyzer) NormalizeEmbedding(embedding []float32) []float32 {
	var norm float32
	for _, val := range embedding {
		norm += val * val
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm == 0 {
		return embedding
	}
	normalized := make([]float32, len(embedding))
	for i, val := range embedding {
		normalized[i] = val / norm
	}
	return normalized
}

// ComputeCosineSimilarity computes cosine similarity between two vectors
func (a *Analyzer) ComputeCosineSimilarity(vec1, vec2 []float32) float32 {
	if len(vec1) != len(vec2) || len(vec1) == 0 {
		return 0
	}
	var dot, norm1, norm2 float32
	for i := range vec1 {
		dot += vec1[i] * vec2[i]
		norm1 += vec1[i] * vec1[i]
		norm2 += vec2[i] * vec2[i]
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(norm1))) * float32(math.Sqrt(float64(norm2))))
}

func calculateAvgWordLength(words []string) float32 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	return float32(total) / float32(len(words))
}

func calculateDigitRatio(text string) float32 {
	if len(text) == 0 {
		return 0
	}
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float32(digits) / float32(len(text))
}

func calculateCapitalizationRatio(text string) float32 {
	letters, caps := 0, 0
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			caps++
		}
	}
	if letters == 0 {
		return 0
	}
	return float32(caps) / float32(letters)
}

func calculateSentenceCount(text string) int {
	return strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
}

func calculateEntropy(text string) float32 {
	if len(text) == 0 {
		return 0
	}
	freq := make(map[rune]int)
	for _, char := range text {
		freq[char]++
	}
	entropy := 0.0
	length := float64(len(text))
	for _, count := range freq {
		p := float64(count) / length
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}
	return float32(entropy / 8.0)
}

func calculateRepetitionScore(words []string) float32 {
	if len(words) <= 1 {
		return 0
	}
	freq := make(map[string]int)
	for _, word := range words {
		freq[word]++
	}
	repetitions := 0
	for _, count := range freq {
		if count > 1 {
			repetitions += count - 1
		}
	}
	return float32(repetitions) / float32(len(words))
}

// ClinicalFeatures is the result of vocabulary cluster analysis.
type ClinicalFeatures struct {
	ClusterScores   map[string]float32 `json:"cluster_scores"`
	DominantCluster string             `json:"dominant_cluster,omitempty"`
	TotalHits       int                `json:"total_hits"`
	Density         float32            `json:"density"`
}

// TextFeatures contains numerical characteristics used as embedding inputs.
type TextFeatures struct {
	Length              int     `json:"length"`
	WordCount           int     `json:"word_count"`
	AvgWordLength       float32 `json:"avg_word_length"`
	DigitRatio          float32 `json:"digit_ratio"`
	CapitalizationRatio float32 `json:"capitalization_ratio"`
	LineCount           int     `json:"line_count"`
	SentenceCount       int     `json:"sentence_count"`
	Entropy             float32 `json:"entropy"`
	RepetitionScore     float32 `json:"repetition_score"`
	PlaceholderCount    int     `json:"placeholder_count"`
}
