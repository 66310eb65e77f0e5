package template

import (
	"sort"
	"strings"
	"time"

	"github.com/chartscrub/chartscrub/internal/hashing"
)

// Windows whose normalized text has fewer non-whitespace characters than
// this carry no structure worth mining.
const minWindowChars = 10

// candidate accumulates occurrence data for one distinct n-gram hash during
// corpus analysis.
type candidate struct {
	hash        string
	content     string
	normalized  string
	lineCount   int
	docIDs      map[string]bool
	firstOffset map[string]int
	firstDocID  string
}

// BuildCorpus mines repeated line n-grams across the documents and returns
// the corpus snapshot. Corpora smaller than the minimum document count yield
// no templates.
func BuildCorpus(documents []Document, cfg Config) *TemplateCorpus {
	started := time.Now()
	corpus := &TemplateCorpus{
		AverageCompressionRatio: 1.0,
		ConfigUsed:              cfg,
		CreatedAt:               started,
	}

	sample := documents
	if cfg.MaxDocumentsToSample > 0 && len(sample) > cfg.MaxDocumentsToSample {
		sample = sample[:cfg.MaxDocumentsToSample]
	}
	corpus.TotalDocuments = len(sample)
	if len(sample) < cfg.MinDocumentsForTemplate {
		corpus.ProcessingTimeMs = time.Since(started).Milliseconds()
		return corpus
	}

	candidates := make(map[string]*candidate)
	totalLines := 0
	for _, doc := range sample {
		lines := strings.Split(doc.Text, "\n")
		totalLines += len(lines)
		collectNgrams(doc.ID, lines, cfg, candidates)
	}
	meanDocLines := float64(totalLines) / float64(len(sample))

	minDocs := cfg.MinDocumentsForTemplate
	if byFraction := int(float64(len(sample)) * cfg.TemplateThreshold); byFraction > minDocs {
		minDocs = byFraction
	}

	var detected []DetectedTemplate
	for _, c := range candidates {
		if len(c.docIDs) < minDocs {
			continue
		}
		position := classifyPosition(c, meanDocLines)
		detected = append(detected, DetectedTemplate{
			ID:             "tpl_" + c.hash,
			Hash:           c.hash,
			Content:        c.content,
			LineCount:      c.lineCount,
			CharCount:      len(c.content),
			Type:           classifyTemplateType(c.content, position),
			Position:       position,
			DocumentCount:  len(c.docIDs),
			Frequency:      float64(len(c.docIDs)) / float64(len(sample)),
			FirstSeenDocID: c.firstDocID,
		})
	}
	corpus.TotalTemplatesDetected = len(detected)

	corpus.Templates = removeOverlapping(detected, cfg)
	sort.Slice(corpus.Templates, func(i, j int) bool {
		if corpus.Templates[i].Frequency != corpus.Templates[j].Frequency {
			return corpus.Templates[i].Frequency > corpus.Templates[j].Frequency
		}
		return corpus.Templates[i].Hash < corpus.Templates[j].Hash
	})

	if len(corpus.Templates) > 0 {
		total := 0.0
		for _, doc := range sample {
			total += StripTemplates(doc, corpus).CompressionRatio
		}
		corpus.AverageCompressionRatio = total / float64(len(sample))
	}

	corpus.ProcessingTimeMs = time.Since(started).Milliseconds()
	return corpus
}

// collectNgrams slides every configured window size over the document's
// lines and records each qualifying window under its normalized hash.
func collectNgrams(docID string, lines []string, cfg Config, candidates map[string]*candidate) {
	for size := cfg.MinNgramSize; size <= cfg.MaxNgramSize; size++ {
		for start := 0; start+size <= len(lines); start++ {
			window := strings.Join(lines[start:start+size], "\n")
			normalized := normalizeWindow(window, cfg)
			if nonWhitespaceLen(normalized) < minWindowChars {
				continue
			}
			h := hashing.FNV1a64(normalized)
			c, ok := candidates[h]
			if !ok {
				c = &candidate{
					hash:        h,
					content:     window,
					normalized:  normalized,
					lineCount:   size,
					docIDs:      make(map[string]bool),
					firstOffset: make(map[string]int),
					firstDocID:  docID,
				}
				candidates[h] = c
			}
			if !c.docIDs[docID] {
				c.docIDs[docID] = true
				c.firstOffset[docID] = start
			}
		}
	}
}

func normalizeWindow(text string, cfg Config) string {
	return hashing.Normalize(text, hashing.NormalizeOptions{
		CollapseWhitespace: cfg.NormalizeWhitespace,
		Lowercase:          cfg.LowercaseForMatching,
		StripNumbers:       cfg.StripNumbers,
	})
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}

// classifyPosition compares the candidate's mean first-line offset against
// the mean document length: the bottom fifth is START, the top fifth END.
func classifyPosition(c *candidate, meanDocLines float64) string {
	if len(c.firstOffset) == 0 || meanDocLines <= 0 {
		return PositionMiddle
	}
	sum := 0
	for _, off := range c.firstOffset {
		sum += off
	}
	meanOffset := float64(sum) / float64(len(c.firstOffset))
	switch {
	case meanOffset < 0.2*meanDocLines:
		return PositionStart
	case meanOffset > 0.8*meanDocLines:
		return PositionEnd
	default:
		return PositionMiddle
	}
}

// removeOverlapping drops any template whose normalized content is contained
// in a larger kept template. Larger line counts are processed first so the
// most specific span wins.
func removeOverlapping(templates []DetectedTemplate, cfg Config) []DetectedTemplate {
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].LineCount != templates[j].LineCount {
			return templates[i].LineCount > templates[j].LineCount
		}
		return templates[i].Hash < templates[j].Hash
	})

	var kept []DetectedTemplate
	var keptNorm []string
	for _, t := range templates {
		norm := normalizeWindow(t.Content, cfg)
		contained := false
		for _, kn := range keptNorm {
			if strings.Contains(kn, norm) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, t)
			keptNorm = append(keptNorm, norm)
		}
	}
	return kept
}

// StripTemplates expresses one document as template references plus unique
// content against an existing corpus.
func StripTemplates(doc Document, corpus *TemplateCorpus) *DocumentDelta {
	cfg := corpus.ConfigUsed
	lines := strings.Split(doc.Text, "\n")

	byHash := make(map[string]*DetectedTemplate, len(corpus.Templates))
	for i := range corpus.Templates {
		byHash[corpus.Templates[i].Hash] = &corpus.Templates[i]
	}

	// Find every window matching a known template.
	var matches []TemplateRef
	for size := cfg.MinNgramSize; size <= cfg.MaxNgramSize; size++ {
		for start := 0; start+size <= len(lines); start++ {
			window := strings.Join(lines[start:start+size], "\n")
			normalized := normalizeWindow(window, cfg)
			if nonWhitespaceLen(normalized) < minWindowChars {
				continue
			}
			if t, ok := byHash[hashing.FNV1a64(normalized)]; ok {
				matches = append(matches, TemplateRef{
					TemplateID: t.ID,
					LineStart:  start,
					LineEnd:    start + size - 1,
				})
			}
		}
	}

	refs := mergeMatches(matches)

	covered := make([]bool, len(lines))
	for _, ref := range refs {
		for i := ref.LineStart; i <= ref.LineEnd && i < len(lines); i++ {
			covered[i] = true
		}
	}

	var unique []UniqueLine
	var uniqueText []string
	for i, line := range lines {
		if !covered[i] {
			unique = append(unique, UniqueLine{LineNumber: i, Content: line})
			uniqueText = append(uniqueText, line)
		}
	}

	uniqueContent := strings.Join(uniqueText, "\n")
	ratio := 1.0
	if len(doc.Text) > 0 {
		ratio = float64(len(uniqueContent)) / float64(len(doc.Text))
	}

	return &DocumentDelta{
		DocumentID:        doc.ID,
		OriginalCharCount: len(doc.Text),
		DeltaCharCount:    len(uniqueContent),
		CompressionRatio:  ratio,
		TemplateRefs:      refs,
		UniqueContent:     uniqueContent,
		UniqueLines:       unique,
	}
}

// mergeMatches collapses overlapping matches into a minimal non-overlapping
// list sorted by start line. The first match at a position wins; a later
// overlapping match only extends the kept match's end.
func mergeMatches(matches []TemplateRef) []TemplateRef {
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].LineStart != matches[j].LineStart {
			return matches[i].LineStart < matches[j].LineStart
		}
		return matches[i].LineEnd > matches[j].LineEnd
	})

	merged := []TemplateRef{matches[0]}
	for _, m := range matches[1:] {
		last := &merged[len(merged)-1]
		if m.LineStart <= last.LineEnd {
			if m.LineEnd > last.LineEnd {
				last.LineEnd = m.LineEnd
			}
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// ReconstructDocument rebuilds a document from its delta by expanding each
// template reference to its stored content and merging with the unique
// lines in line-number order. Fidelity is bounded by how closely the stored
// template exemplar matches this instance's original text.
func ReconstructDocument(delta *DocumentDelta, corpus *TemplateCorpus) string {
	byID := make(map[string]*DetectedTemplate, len(corpus.Templates))
	for i := range corpus.Templates {
		byID[corpus.Templates[i].ID] = &corpus.Templates[i]
	}

	byLine := make(map[int]string)
	maxLine := -1
	for _, ref := range delta.TemplateRefs {
		t, ok := byID[ref.TemplateID]
		if !ok {
			continue
		}
		content := strings.Split(t.Content, "\n")
		for i := ref.LineStart; i <= ref.LineEnd; i++ {
			if idx := i - ref.LineStart; idx < len(content) {
				byLine[i] = content[idx]
			} else {
				byLine[i] = ""
			}
			if i > maxLine {
				maxLine = i
			}
		}
	}
	for _, ul := range delta.UniqueLines {
		byLine[ul.LineNumber] = ul.Content
		if ul.LineNumber > maxLine {
			maxLine = ul.LineNumber
		}
	}

	out := make([]string, 0, maxLine+1)
	for i := 0; i <= maxLine; i++ {
		line, ok := byLine[i]
		if !ok {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
