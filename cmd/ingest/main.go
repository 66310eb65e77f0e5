package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/cache"
	"github.com/chartscrub/chartscrub/internal/config"
	"github.com/chartscrub/chartscrub/internal/embeddings"
	"github.com/chartscrub/chartscrub/internal/logger"
	"github.com/chartscrub/chartscrub/internal/pipeline"
	"github.com/chartscrub/chartscrub/internal/redact"
	"github.com/chartscrub/chartscrub/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input dataset file (CSV, Parquet, or JSON)")
		inputDir   = flag.String("dir", "", "Directory of text documents to process")
		batchSize  = flag.Int("batch-size", 0, "Batch size override")
		regexOnly  = flag.Bool("regex-only", false, "Skip NER phases during redaction")
		skipCache  = flag.Bool("skip-cache", false, "Skip updating the embedding cache")
		skipIndex  = flag.Bool("skip-index", false, "Skip creating the vector index")
		showStats  = flag.Bool("stats", false, "Show database statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && *inputDir == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input corpus.csv --batch-size 50\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir ./documents --regex-only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting chartscrub ingest",
		zap.String("version", "0.1.0"),
		zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	services, err := initializeServices(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.cleanup()

	if *showStats {
		if err := showDatabaseStats(ctx, services); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	pipelineCfg := cfg.Pipeline
	if *batchSize > 0 {
		pipelineCfg.BatchSize = *batchSize
	}
	if *regexOnly {
		pipelineCfg.RegexOnly = true
	}
	if *skipCache {
		pipelineCfg.UpdateCache = false
	}
	if *skipIndex {
		pipelineCfg.CreateIndex = false
	}

	p := pipeline.NewPipeline(
		services.docStore,
		services.embeddingService,
		services.embeddingCache,
		services.scrubber,
		&pipelineCfg,
		log.WithComponent("pipeline").Logger,
	)
	p.SetTemplateConfig(cfg.Template)
	p.SetDedupConfig(cfg.Dedup)

	var report *pipeline.CorpusReport
	if *inputDir != "" {
		report, err = p.ProcessDirectory(ctx, *inputDir)
	} else {
		if _, statErr := os.Stat(*inputFile); os.IsNotExist(statErr) {
			log.Fatal("Input file does not exist", zap.String("file", *inputFile))
		}
		report, err = p.ProcessFile(ctx, *inputFile)
	}
	if err != nil {
		log.Fatal("Corpus processing failed", zap.Error(err))
	}

	printReport(report)
	log.Info("Ingest completed successfully")
}

// services holds all initialized services
type services struct {
	docStore         *store.Store
	embeddingService embeddings.EmbeddingService
	embeddingCache   *cache.EmbeddingCache
	scrubber         *redact.Engine
}

func (s *services) cleanup() {
	if s.embeddingService != nil {
		s.embeddingService.Close()
	}
	if s.docStore != nil {
		s.docStore.Close()
	}
	if s.embeddingCache != nil {
		s.embeddingCache.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(cfg *config.Config, log *logger.Logger) (*services, error) {
	services := &services{}

	if cfg.Store.Enabled {
		log.Info("Initializing document store...")
		docStore, err := store.NewStore(&cfg.Store.Config, log.WithComponent("store").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize document store: %w", err)
		}
		services.docStore = docStore
	}

	if cfg.Cache.Enabled {
		log.Info("Initializing embedding cache...")
		embeddingCache, err := cache.NewEmbeddingCache(&cfg.Cache.Config, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedding cache: %w", err)
		}
		services.embeddingCache = embeddingCache
	}

	log.Info("Initializing embedding service...")
	factory := embeddings.NewFactory(log.WithComponent("embeddings").Logger)
	embeddingService, err := factory.CreateService(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding service: %w", err)
	}
	services.embeddingService = embeddingService

	services.scrubber = redact.NewEngine(cfg.Redact, nil, log.WithComponent("redact").Logger)

	return services, nil
}

// printReport prints a summary of the corpus report
func printReport(report *pipeline.CorpusReport) {
	res := report.Processing

	fmt.Printf("\n=== Corpus Processing Summary ===\n")
	fmt.Printf("Total Documents:    %d\n", res.TotalDocuments)
	fmt.Printf("Processed OK:       %d\n", res.ProcessedOK)
	fmt.Printf("Failed:             %d\n", res.ProcessedFailed)
	fmt.Printf("Duplicates:         %d\n", res.Duplicates)
	fmt.Printf("Redacted Values:    %d\n", res.RedactedValues)
	fmt.Printf("Duration:           %v\n", res.Duration)
	fmt.Printf("Scrub Time:         %v\n", res.ScrubTime)
	fmt.Printf("Embedding Time:     %v\n", res.EmbeddingTime)
	fmt.Printf("Database Time:      %v\n", res.DatabaseTime)

	if report.Templates != nil {
		fmt.Printf("\n=== Template Detection ===\n")
		fmt.Printf("Templates Kept:     %d\n", len(report.Templates.Templates))
		fmt.Printf("Templates Detected: %d\n", report.Templates.TotalTemplatesDetected)
		fmt.Printf("Avg Compression:    %.3f\n", report.Templates.AverageCompressionRatio)
	}

	if report.Dedup != nil {
		fmt.Printf("\n=== Semantic Clustering ===\n")
		fmt.Printf("Clusters:           %d\n", len(report.Dedup.Clusters))
		fmt.Printf("Unique Documents:   %d\n", report.Dedup.UniqueDocuments)
		fmt.Printf("Similar Pairs:      %d\n", len(report.Dedup.Pairs))
	}

	if report.Timeline != nil {
		fmt.Printf("\n=== Timeline ===\n")
		fmt.Printf("Entries:            %d\n", len(report.Timeline.Entries))
		fmt.Printf("Kept:               %d\n", report.Timeline.KeptCount)
		fmt.Printf("Duplicates:         %d\n", report.Timeline.DuplicateCount)
		fmt.Printf("Undated:            %d\n", report.Timeline.UndatedCount)
	}

	if len(res.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

// showDatabaseStats displays current database statistics
func showDatabaseStats(ctx context.Context, services *services) error {
	if services.docStore == nil {
		return fmt.Errorf("document store is not enabled")
	}

	stats, err := services.docStore.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get database stats: %w", err)
	}

	fmt.Printf("\n=== Document Store Statistics ===\n")
	fmt.Printf("Total Documents:    %d\n", stats.TotalDocuments)
	fmt.Printf("Distinct Types:     %d\n", stats.DistinctTypes)
	fmt.Printf("Avg Word Count:     %.1f\n", stats.AvgWordCount)

	if services.embeddingCache != nil {
		cacheStats, err := services.embeddingCache.Stats(ctx)
		if err == nil {
			fmt.Printf("\n=== Embedding Cache Statistics ===\n")
			fmt.Printf("Cache Hits:         %d\n", cacheStats.Hits)
			fmt.Printf("Cache Misses:       %d\n", cacheStats.Misses)
			fmt.Printf("Total Keys:         %d\n", cacheStats.TotalKeys)
		}
	}

	embeddingStats := services.embeddingService.GetStats()
	fmt.Printf("\n=== Embedding Service Statistics ===\n")
	fmt.Printf("Total Inferences:   %d\n", embeddingStats.TotalInferences)
	fmt.Printf("Total Tokens:       %d\n", embeddingStats.TotalTokens)
	fmt.Printf("Avg Inference Time: %v\n", embeddingStats.AvgInferenceTime)
	fmt.Printf("Cache Hit Ratio:    %.2f\n", embeddingStats.CacheHitRatio)

	return nil
}
