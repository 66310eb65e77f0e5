package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/embeddings"
	"github.com/chartscrub/chartscrub/internal/redact"
)

func TestDetectFileFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     FileFormat
	}{
		{"corpus.csv", FormatCSV},
		{"corpus.parquet", FormatParquet},
		{"corpus.json", FormatJSON},
		{"corpus.dat", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectFileFormat(tt.filename); got != tt.want {
				t.Errorf("DetectFileFormat(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestValidateRecord(t *testing.T) {
	p := NewPipeline(nil, nil, nil, nil, DefaultConfig(), zap.NewNop())

	t.Run("empty text rejected", func(t *testing.T) {
		if p.validateRecord(&DataRecord{Filename: "a.txt", Text: "   "}) {
			t.Error("expected empty text to be rejected")
		}
	})

	t.Run("missing filename gets one assigned", func(t *testing.T) {
		rec := &DataRecord{Text: "Patient seen today."}
		if !p.validateRecord(rec) {
			t.Fatal("record should be valid")
		}
		if rec.Filename == "" {
			t.Error("filename should be assigned")
		}
	})

	t.Run("validation disabled passes everything", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ValidateData = false
		p2 := NewPipeline(nil, nil, nil, nil, cfg, zap.NewNop())
		if !p2.validateRecord(&DataRecord{}) {
			t.Error("expected record to pass with validation disabled")
		}
	})
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()

	service, err := embeddings.NewHashEmbeddingService(&embeddings.ModelConfig{ModelName: "hash"}, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to create embedding service: %v", err)
	}

	engine := redact.NewEngine(redact.DefaultConfig(), nil, zap.NewNop())
	cfg := DefaultConfig()
	cfg.RegexOnly = true
	return NewPipeline(nil, service, nil, engine, cfg, zap.NewNop())
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()

	docs := map[string]string{
		"note_a.txt": "Progress Note 1/5/2023\nChief complaint: cough.\nPatient email test@example.com recorded.",
		"note_b.txt": "Progress Note 1/5/2023\nChief complaint: cough.\nPatient email test@example.com recorded.",
		"lab_c.txt":  "Laboratory Report 2/1/2023\nCBC results within reference range.",
	}
	for name, text := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-document files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "ignore.bin"), []byte{0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t)
	report, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}

	res := report.Processing
	if res.TotalDocuments != 3 {
		t.Errorf("TotalDocuments = %d, want 3", res.TotalDocuments)
	}
	if res.ProcessedOK != 3 {
		t.Errorf("ProcessedOK = %d, want 3", res.ProcessedOK)
	}
	if res.RedactedValues == 0 {
		t.Error("expected at least one redacted value (email)")
	}

	// note_a and note_b are byte-identical after scrubbing, so the timeline
	// marks one of them as an exact duplicate.
	if report.Timeline == nil {
		t.Fatal("timeline missing")
	}
	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", res.Duplicates)
	}
	if report.Timeline.KeptCount != 2 {
		t.Errorf("KeptCount = %d, want 2", report.Timeline.KeptCount)
	}

	if report.Templates == nil {
		t.Fatal("template corpus missing")
	}
	if report.Dedup == nil {
		t.Fatal("dedup result missing")
	}
	if report.Dedup.TotalDocuments != 3 {
		t.Errorf("dedup total = %d, want 3", report.Dedup.TotalDocuments)
	}
}

func TestProcessFileCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")
	csvData := "filename,text\n" +
		"visit1.txt,\"Office visit on 3/1/2023. Patient phone 555-123-4567.\"\n" +
		"visit2.txt,\"Office visit on 3/2/2023. Follow up scheduled.\"\n"
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t)
	report, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if report.Processing.ProcessedOK != 2 {
		t.Errorf("ProcessedOK = %d, want 2", report.Processing.ProcessedOK)
	}
	if len(report.Timeline.Entries) != 2 {
		t.Errorf("timeline entries = %d, want 2", len(report.Timeline.Entries))
	}
}

type recordingNotifier struct {
	scrubbed   int
	duplicates int
	templates  int
}

func (n *recordingNotifier) DocumentScrubbed(string, int, *int)           { n.scrubbed++ }
func (n *recordingNotifier) DuplicateFound(string, string, string, float64) { n.duplicates++ }
func (n *recordingNotifier) TemplateDetected(string, string, float64)     { n.templates++ }

func TestNotifierReceivesEvents(t *testing.T) {
	dir := t.TempDir()
	text := "Discharge summary 4/1/2023.\nHospital course unremarkable."
	for _, name := range []string{"d1.txt", "d2.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := testPipeline(t)
	n := &recordingNotifier{}
	p.SetNotifier(n)

	if _, err := p.ProcessDirectory(context.Background(), dir); err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}

	if n.scrubbed != 2 {
		t.Errorf("scrubbed events = %d, want 2", n.scrubbed)
	}
	if n.duplicates != 1 {
		t.Errorf("duplicate events = %d, want 1", n.duplicates)
	}
}

func TestNotifierTemplateEvents(t *testing.T) {
	dir := t.TempDir()
	boilerplate := "Ward round documentation sheet\n" +
		"Section one: subjective findings\n" +
		"Section two: objective findings\n" +
		"Section three: assessment and plan\n"
	complaints := map[string]string{
		"r1.txt": "Patient reports mild headache today.",
		"r2.txt": "Patient reports persistent cough today.",
		"r3.txt": "Patient reports ongoing fatigue today.",
	}
	for name, line := range complaints {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(boilerplate+line), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := testPipeline(t)
	n := &recordingNotifier{}
	p.SetNotifier(n)

	report, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ProcessDirectory failed: %v", err)
	}
	if len(report.Templates.Templates) == 0 {
		t.Fatal("shared boilerplate produced no templates")
	}
	if n.templates != len(report.Templates.Templates) {
		t.Errorf("template events = %d, want %d", n.templates, len(report.Templates.Templates))
	}
}

func TestEmbedderAdapter(t *testing.T) {
	service, err := embeddings.NewHashEmbeddingService(&embeddings.ModelConfig{ModelName: "hash"}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	adapter := NewEmbedderAdapter(service)
	vec, err := adapter.GenerateEmbedding(context.Background(), "chest x-ray impression: clear")
	if err != nil {
		t.Fatalf("GenerateEmbedding failed: %v", err)
	}
	if len(vec) != embeddings.EmbeddingDimensions {
		t.Errorf("embedding dim = %d, want %d", len(vec), embeddings.EmbeddingDimensions)
	}
}
