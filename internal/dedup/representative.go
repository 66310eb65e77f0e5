package dedup

import "strings"

// medicalTerms is the vocabulary used for term-density scoring. Density is
// hits per 100 words, capped at 10 and normalized to [0,1].
var medicalTerms = map[string]bool{
	"diagnosis": true, "assessment": true, "treatment": true, "symptoms": true,
	"medication": true, "prescribed": true, "dosage": true, "examination": true,
	"patient": true, "history": true, "chronic": true, "acute": true,
	"bilateral": true, "hypertension": true, "diabetes": true, "impression": true,
	"findings": true, "laboratory": true, "radiology": true, "pathology": true,
	"discharge": true, "admission": true, "prognosis": true, "followup": true,
	"specimen": true, "biopsy": true, "lesion": true, "fracture": true,
}

// assumedOCRQuality is used when a document carries no OCR confidence.
const assumedOCRQuality = 0.8

// SelectRepresentatives picks the best member of each multi-member cluster
// and mutates the cluster's representative fields once. Singletons represent
// themselves. Returns representative IDs in cluster order.
func SelectRepresentatives(clusters []DocumentCluster, docs []InputDocument, cfg Config) []string {
	byID := make(map[string]*InputDocument, len(docs))
	for i := range docs {
		byID[docs[i].ID] = &docs[i]
	}

	reps := make([]string, 0, len(clusters))
	for i := range clusters {
		c := &clusters[i]
		if len(c.DocumentIDs) == 1 {
			c.RepresentativeID = c.DocumentIDs[0]
			c.RepresentativeScore = 1.0
			reps = append(reps, c.RepresentativeID)
			continue
		}

		maxLen := 0
		for _, id := range c.DocumentIDs {
			if d, ok := byID[id]; ok && len(d.Text) > maxLen {
				maxLen = len(d.Text)
			}
		}

		bestScore := -1.0
		bestID := c.DocumentIDs[0]
		for _, id := range c.DocumentIDs {
			d, ok := byID[id]
			if !ok {
				continue
			}
			score := scoreMember(d, maxLen, cfg)
			if score > bestScore {
				bestScore = score
				bestID = id
			}
		}
		c.RepresentativeID = bestID
		c.RepresentativeScore = bestScore
		reps = append(reps, bestID)
	}
	return reps
}

// scoreMember computes the weighted selection score of one cluster member.
func scoreMember(d *InputDocument, maxLen int, cfg Config) float64 {
	lengthScore := 0.0
	if maxLen > 0 {
		lengthScore = float64(len(d.Text)) / float64(maxLen)
	}

	recencyScore := 0.0
	if !d.Date.IsZero() {
		recencyScore = 1.0
	}

	qualityScore := assumedOCRQuality
	if d.OCRQuality != nil {
		qualityScore = *d.OCRQuality
	}

	return cfg.LengthWeight*lengthScore +
		cfg.RecencyWeight*recencyScore +
		cfg.QualityWeight*qualityScore +
		cfg.DensityWeight*termDensity(d.Text)
}

// termDensity counts medical vocabulary hits per 100 words, capped at 10
// hits and scaled to [0,1].
func termDensity(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if medicalTerms[strings.Trim(w, ".,;:!?")] {
			hits++
		}
	}
	density := float64(hits) / float64(len(words)) * 100
	if density > 10 {
		density = 10
	}
	return density / 10
}
