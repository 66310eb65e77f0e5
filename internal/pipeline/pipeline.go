package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/cache"
	"github.com/chartscrub/chartscrub/internal/dedup"
	"github.com/chartscrub/chartscrub/internal/embeddings"
	"github.com/chartscrub/chartscrub/internal/fingerprint"
	"github.com/chartscrub/chartscrub/internal/redact"
	"github.com/chartscrub/chartscrub/internal/store"
	"github.com/chartscrub/chartscrub/internal/template"
	"github.com/chartscrub/chartscrub/internal/timeline"
)

// processedDoc carries one document through the corpus-wide stages.
type processedDoc struct {
	filename    string
	scrubbed    string
	fingerprint *fingerprint.Fingerprint
	embedding   []float32
	date        time.Time
}

// Pipeline processes document corpora end to end: scrub, fingerprint,
// embed, store, then corpus-wide template detection, clustering, and
// timeline assembly.
type Pipeline struct {
	docStore         *store.Store
	embeddingService embeddings.EmbeddingService
	embeddingCache   *cache.EmbeddingCache
	scrubber         *redact.Engine
	config           *Config
	templateConfig   template.Config
	dedupConfig      dedup.Config
	notifier         Notifier
	logger           *zap.Logger
	stats            *ProcessingStats
	mu               sync.RWMutex
}

// NewPipeline creates a new corpus pipeline. The document store and
// embedding cache are optional; corpus analyses still run without them.
func NewPipeline(
	docStore *store.Store,
	embeddingService embeddings.EmbeddingService,
	embeddingCache *cache.EmbeddingCache,
	scrubber *redact.Engine,
	config *Config,
	logger *zap.Logger,
) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		docStore:         docStore,
		embeddingService: embeddingService,
		embeddingCache:   embeddingCache,
		scrubber:         scrubber,
		config:           config,
		templateConfig:   template.DefaultConfig(),
		dedupConfig:      dedup.DefaultConfig(),
		logger:           logger,
		stats: &ProcessingStats{
			StartTime: time.Now(),
		},
	}
}

// SetTemplateConfig overrides the template detection configuration.
func (p *Pipeline) SetTemplateConfig(cfg template.Config) {
	p.templateConfig = cfg
}

// SetDedupConfig overrides the clustering configuration.
func (p *Pipeline) SetDedupConfig(cfg dedup.Config) {
	p.dedupConfig = cfg
}

// SetNotifier attaches an event notifier.
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

// ProcessFile processes a dataset file (CSV, Parquet, or JSON)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*CorpusReport, error) {
	p.logger.Info("Starting corpus pipeline",
		zap.String("file", filePath),
		zap.Int("batch_size", p.config.BatchSize))

	start := time.Now()
	result := &ProcessingResult{}
	p.resetStats()

	format := DetectFileFormat(filePath)
	p.logger.Info("Detected file format", zap.String("format", string(format)))

	var corpus []processedDoc
	var err error
	switch format {
	case FormatCSV:
		corpus, err = p.processCSV(ctx, filePath, result)
		if err != nil {
			return nil, fmt.Errorf("CSV processing failed: %w", err)
		}
	case FormatParquet:
		corpus, err = p.processParquet(ctx, filePath, result)
		if err != nil {
			return nil, fmt.Errorf("Parquet processing failed: %w", err)
		}
	case FormatJSON:
		corpus, err = p.processJSON(ctx, filePath, result)
		if err != nil {
			return nil, fmt.Errorf("JSON processing failed: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}

	report := p.analyzeCorpus(ctx, corpus, result)
	result.Duration = time.Since(start)

	if p.config.CreateIndex && p.docStore != nil && result.ProcessedOK > 1000 {
		p.logger.Info("Creating vector similarity index...")
		if err := p.docStore.CreateIndex(ctx); err != nil {
			p.logger.Warn("Failed to create vector index", zap.Error(err))
		}
	}

	p.logger.Info("Corpus pipeline completed",
		zap.Int64("total_documents", result.TotalDocuments),
		zap.Int64("processed_ok", result.ProcessedOK),
		zap.Int64("processed_failed", result.ProcessedFailed),
		zap.Int64("duplicates", result.Duplicates),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("scrub_time", result.ScrubTime),
		zap.Duration("embedding_time", result.EmbeddingTime),
		zap.Duration("database_time", result.DatabaseTime))

	return report, nil
}

// ProcessDirectory processes every .txt and .md file under dir as one
// document each.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string) (*CorpusReport, error) {
	start := time.Now()
	result := &ProcessingResult{}
	p.resetStats()

	var records []*DataRecord
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			p.logger.Warn("Failed to read document", zap.String("path", path), zap.Error(err))
			return nil
		}
		records = append(records, &DataRecord{
			Filename: filepath.Base(path),
			Text:     string(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("directory walk failed: %w", err)
	}

	p.logger.Info("Directory scan completed",
		zap.String("dir", dir),
		zap.Int("documents", len(records)))

	var corpus []processedDoc
	for i := 0; i < len(records); i += p.config.BatchSize {
		end := i + p.config.BatchSize
		if end > len(records) {
			end = len(records)
		}
		batch, err := p.processBatch(ctx, records[i:end], result)
		if err != nil {
			result.ProcessedFailed += int64(end - i)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		corpus = append(corpus, batch...)
	}

	report := p.analyzeCorpus(ctx, corpus, result)
	result.Duration = time.Since(start)
	return report, nil
}

// processCSV reads CSV files with filename,text columns
func (p *Pipeline) processCSV(ctx context.Context, filePath string, result *ProcessingResult) ([]processedDoc, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2 // filename, text

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	p.logger.Info("CSV header detected", zap.Strings("columns", header))

	return p.processBatches(ctx, func() ([]*DataRecord, error) {
		var batch []*DataRecord
		for len(batch) < p.config.BatchSize {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read CSV record", zap.Error(err))
				continue
			}
			if len(record) != 2 {
				p.logger.Warn("Invalid CSV record length", zap.Int("length", len(record)))
				continue
			}

			dataRecord := &DataRecord{
				Filename: strings.TrimSpace(record[0]),
				Text:     record[1],
			}
			if p.validateRecord(dataRecord) {
				batch = append(batch, dataRecord)
			}
		}
		return batch, nil
	}, result)
}

// processParquet reads Parquet files
func (p *Pipeline) processParquet(ctx context.Context, filePath string, result *ProcessingResult) ([]processedDoc, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}
	defer file.Close()

	reader := parquet.NewReader(file)
	defer reader.Close()

	return p.processBatches(ctx, func() ([]*DataRecord, error) {
		var batch []*DataRecord
		for len(batch) < p.config.BatchSize {
			var record DataRecord
			err := reader.Read(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read Parquet record", zap.Error(err))
				continue
			}
			if p.validateRecord(&record) {
				rec := record
				batch = append(batch, &rec)
			}
		}
		return batch, nil
	}, result)
}

// processJSON reads JSON files (one JSON object per line)
func (p *Pipeline) processJSON(ctx context.Context, filePath string, result *ProcessingResult) ([]processedDoc, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open JSON file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)

	return p.processBatches(ctx, func() ([]*DataRecord, error) {
		var batch []*DataRecord
		for len(batch) < p.config.BatchSize {
			var record DataRecord
			err := decoder.Decode(&record)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.logger.Warn("Failed to read JSON record", zap.Error(err))
				continue
			}
			if p.validateRecord(&record) {
				rec := record
				batch = append(batch, &rec)
			}
		}
		return batch, nil
	}, result)
}

// processBatches drains the reader function batch by batch
func (p *Pipeline) processBatches(ctx context.Context, readBatch func() ([]*DataRecord, error), result *ProcessingResult) ([]processedDoc, error) {
	var corpus []processedDoc
	for {
		select {
		case <-ctx.Done():
			return corpus, ctx.Err()
		default:
		}

		batch, err := readBatch()
		if err != nil {
			return corpus, fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		docs, err := p.processBatch(ctx, batch, result)
		if err != nil {
			p.logger.Error("Batch processing failed", zap.Error(err))
			result.ProcessedFailed += int64(len(batch))
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		corpus = append(corpus, docs...)

		if p.config.ProgressReport > 0 && result.TotalDocuments%int64(p.config.ProgressReport) == 0 {
			p.reportProgress(result)
		}
	}
	return corpus, nil
}

// processBatch scrubs, fingerprints, embeds, and stores one batch
func (p *Pipeline) processBatch(ctx context.Context, batch []*DataRecord, result *ProcessingResult) ([]processedDoc, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	docs := make([]processedDoc, 0, len(batch))

	scrubStart := time.Now()
	for _, record := range batch {
		result.TotalDocuments++
		scrubbed, err := p.scrubber.Scrub(ctx, record.Text, redact.Options{RegexOnly: p.config.RegexOnly})
		if err != nil {
			p.logger.Warn("Scrub failed",
				zap.String("filename", record.Filename),
				zap.Error(err))
			result.ProcessedFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", record.Filename, err))
			continue
		}

		result.RedactedValues += int64(scrubbed.Count)
		if p.notifier != nil {
			p.notifier.DocumentScrubbed(record.Filename, scrubbed.Count, scrubbed.Confidence)
		}

		// Capture the document date before redaction replaces date values
		// with placeholders.
		date, _ := timeline.FirstDate(record.Text)

		text := scrubbed.Text.String()
		docs = append(docs, processedDoc{
			filename:    record.Filename,
			scrubbed:    text,
			fingerprint: fingerprint.New(record.Filename, text),
			date:        date,
		})
		result.ProcessedOK++
	}
	result.ScrubTime += time.Since(scrubStart)

	if err := p.embedBatch(ctx, docs, result); err != nil {
		return nil, err
	}

	if p.docStore != nil {
		if err := p.storeBatch(ctx, docs, result); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	p.stats.DocumentsRead += int64(len(batch))
	p.stats.Scrubbed += int64(len(docs))
	p.stats.CurrentBatch++
	p.mu.Unlock()

	return docs, nil
}

// embedBatch fills in document embeddings, consulting the cache first
func (p *Pipeline) embedBatch(ctx context.Context, docs []processedDoc, result *ProcessingResult) error {
	if p.embeddingService == nil {
		return nil
	}

	fresh := make(map[string][]float32)

	for i := range docs {
		hash := docs[i].fingerprint.ContentHash

		if p.embeddingCache != nil {
			cacheStart := time.Now()
			cached, err := p.embeddingCache.Get(ctx, hash)
			result.CacheTime += time.Since(cacheStart)
			if err != nil {
				p.logger.Warn("Cache lookup failed", zap.Error(err))
			} else if cached != nil {
				docs[i].embedding = cached.Embedding
				continue
			}
		}

		embeddingStart := time.Now()
		embResult, err := p.embeddingService.GenerateEmbedding(ctx, docs[i].scrubbed)
		result.EmbeddingTime += time.Since(embeddingStart)
		if err != nil {
			return fmt.Errorf("embedding generation failed for %s: %w", docs[i].filename, err)
		}
		docs[i].embedding = embResult.Embedding
		fresh[hash] = embResult.Embedding

		p.mu.Lock()
		p.stats.EmbeddingsGen++
		p.mu.Unlock()
	}

	if p.config.UpdateCache && p.embeddingCache != nil && len(fresh) > 0 {
		cacheStart := time.Now()
		if err := p.embeddingCache.SetBatch(ctx, fresh); err != nil {
			p.logger.Warn("Failed to update cache", zap.Error(err))
		} else {
			p.mu.Lock()
			p.stats.CacheWrites += int64(len(fresh))
			p.mu.Unlock()
		}
		result.CacheTime += time.Since(cacheStart)
	}

	return nil
}

// storeBatch persists scrubbed documents
func (p *Pipeline) storeBatch(ctx context.Context, docs []processedDoc, result *ProcessingResult) error {
	rows := make([]*store.Document, len(docs))
	for i, doc := range docs {
		rows[i] = &store.Document{
			Filename:     doc.filename,
			ContentHash:  doc.fingerprint.ContentHash,
			SimHash:      doc.fingerprint.SimHash,
			DocumentType: doc.fingerprint.DocumentType,
			WordCount:    doc.fingerprint.WordCount,
			ScrubbedText: doc.scrubbed,
			DocumentDate: doc.date,
			Embedding:    doc.embedding,
		}
	}

	dbStart := time.Now()
	batchResult, err := p.docStore.BatchInsert(ctx, rows)
	result.DatabaseTime += time.Since(dbStart)
	if err != nil {
		return fmt.Errorf("database batch insert failed: %w", err)
	}

	p.mu.Lock()
	p.stats.DatabaseWrites += batchResult.Inserted
	p.mu.Unlock()

	return nil
}

// analyzeCorpus runs the corpus-wide stages over all processed documents
func (p *Pipeline) analyzeCorpus(ctx context.Context, corpus []processedDoc, result *ProcessingResult) *CorpusReport {
	report := &CorpusReport{Processing: result}
	if len(corpus) == 0 {
		return report
	}

	// Template detection over scrubbed text
	templateDocs := make([]template.Document, len(corpus))
	for i, doc := range corpus {
		templateDocs[i] = template.Document{ID: doc.filename, Text: doc.scrubbed}
	}
	report.Templates = template.BuildCorpus(templateDocs, p.templateConfig)
	if p.notifier != nil {
		for _, tpl := range report.Templates.Templates {
			p.notifier.TemplateDetected(tpl.ID, tpl.Type, tpl.Frequency)
		}
	}
	p.logger.Info("Template detection completed",
		zap.Int("templates", len(report.Templates.Templates)),
		zap.Float64("avg_compression_ratio", report.Templates.AverageCompressionRatio))

	// Semantic clustering over precomputed embeddings
	report.Dedup = p.clusterCorpus(corpus)

	// Timeline assembly with pairwise duplicate analysis
	timelineDocs := make([]timeline.Document, len(corpus))
	for i, doc := range corpus {
		timelineDocs[i] = timeline.Document{
			ID:          doc.filename,
			Filename:    doc.filename,
			Fingerprint: doc.fingerprint,
			Date:        doc.date,
		}
	}
	report.Timeline = timeline.NewAssembler(p.logger).Assemble(timelineDocs)
	result.Duplicates = int64(report.Timeline.DuplicateCount)

	if p.notifier != nil {
		for _, entry := range report.Timeline.Entries {
			if entry.IsDuplicate {
				p.notifier.DuplicateFound(entry.Filename, entry.DuplicateOf, entry.DifferenceType, entry.Similarity)
			}
		}
	}

	return report
}

// clusterCorpus runs similarity pairing, clustering, and representative
// selection over embeddings produced during batch processing.
func (p *Pipeline) clusterCorpus(corpus []processedDoc) *dedup.Result {
	start := time.Now()

	var embedded []dedup.DocumentEmbedding
	var inputDocs []dedup.InputDocument
	for _, doc := range corpus {
		if len(doc.embedding) == 0 {
			continue
		}
		embedded = append(embedded, dedup.DocumentEmbedding{
			DocumentID:   doc.filename,
			Embedding:    doc.embedding,
			EmbeddingDim: len(doc.embedding),
			ChunkCount:   1,
			TextLength:   len(doc.scrubbed),
		})
		inputDocs = append(inputDocs, dedup.InputDocument{
			ID:   doc.filename,
			Text: doc.scrubbed,
			Date: doc.date,
		})
	}
	if len(embedded) == 0 {
		return nil
	}

	dedupPipe := dedup.NewPipeline(p.dedupConfig, nil, p.logger)

	pairs, err := dedupPipe.FindSimilarPairs(embedded)
	if err != nil {
		p.logger.Warn("Similarity pairing failed", zap.Error(err))
		return nil
	}
	clusters, err := dedupPipe.ClusterDocuments(embedded, pairs)
	if err != nil {
		p.logger.Warn("Clustering failed", zap.Error(err))
		return nil
	}
	reps := dedupPipe.SelectRepresentatives(clusters, inputDocs)

	return &dedup.Result{
		Embeddings:      embedded,
		Pairs:           pairs,
		Clusters:        clusters,
		Representatives: reps,
		TotalDocuments:  len(embedded),
		UniqueDocuments: len(clusters),
		ProcessingTime:  time.Since(start),
	}
}

// validateRecord validates a data record
func (p *Pipeline) validateRecord(record *DataRecord) bool {
	if !p.config.ValidateData {
		return true
	}

	if strings.TrimSpace(record.Text) == "" {
		p.logger.Debug("Invalid record: empty text")
		return false
	}
	if strings.TrimSpace(record.Filename) == "" {
		record.Filename = fmt.Sprintf("document_%d.txt", time.Now().UnixNano())
	}
	if p.config.MaxTextLength > 0 && len(record.Text) > p.config.MaxTextLength {
		p.logger.Debug("Invalid record: text too long", zap.Int("length", len(record.Text)))
		return false
	}

	p.mu.Lock()
	p.stats.DocumentsValid++
	p.mu.Unlock()

	return true
}

// reportProgress reports current processing progress
func (p *Pipeline) reportProgress(result *ProcessingResult) {
	elapsed := time.Since(p.stats.StartTime)
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(result.TotalDocuments) / elapsed.Seconds()
	}

	p.logger.Info("Processing progress",
		zap.Int64("documents_processed", result.TotalDocuments),
		zap.Int64("documents_ok", result.ProcessedOK),
		zap.Int64("documents_failed", result.ProcessedFailed),
		zap.Float64("rate_per_sec", rate),
		zap.Duration("elapsed", elapsed))
}

// resetStats resets processing statistics
func (p *Pipeline) resetStats() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = &ProcessingStats{
		StartTime: time.Now(),
	}
}

// GetStats returns a copy of current processing statistics
func (p *Pipeline) GetStats() *ProcessingStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stats := *p.stats
	return &stats
}
