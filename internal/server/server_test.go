package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chartscrub/chartscrub/internal/logger"
	"github.com/chartscrub/chartscrub/internal/redact"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "error", Format: "console"})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	cfg := redact.DefaultConfig()
	cfg.RegexOnlyMode = true
	engine := redact.NewEngine(cfg, nil, log.Logger)

	srv, err := New(DefaultConfig(), engine, nil, log)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestScrubEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := postJSON(t, srv, "/v1/scrub", ScrubRequest{
		Text:      "Contact the patient at jdoe@example.com for results.",
		RegexOnly: true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ScrubResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(resp.Text, "jdoe@example.com") {
		t.Error("email survived scrubbing")
	}
	if resp.Count != 1 {
		t.Errorf("Count = %d, want 1", resp.Count)
	}
	if resp.Confidence != nil {
		t.Error("regex-only scrub must not report confidence")
	}
}

func TestScrubEndpointBadJSON(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/scrub", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestFingerprintEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := postJSON(t, srv, "/v1/fingerprint", FingerprintRequest{
		Filename: "lab_result.txt",
		Text:     "Laboratory report: CBC within reference range.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["document_type"] != "lab_report" {
		t.Errorf("document_type = %v, want lab_report", resp["document_type"])
	}
	if hash, _ := resp["content_hash"].(string); len(hash) != 64 {
		t.Errorf("content_hash length = %d, want 64", len(hash))
	}
}

func TestFingerprintEndpointEmptyText(t *testing.T) {
	srv := testServer(t)

	rec := postJSON(t, srv, "/v1/fingerprint", FingerprintRequest{Filename: "x.txt"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpointExactDuplicate(t *testing.T) {
	srv := testServer(t)

	text := "Discharge summary. Hospital course unremarkable."
	rec := postJSON(t, srv, "/v1/analyze", AnalyzeRequest{
		A: AnalyzeDocument{Filename: "a.txt", Text: text},
		B: AnalyzeDocument{Filename: "b.txt", Text: text},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Analysis.IsDuplicate {
		t.Error("identical texts should be duplicates")
	}
	if resp.Analysis.DifferenceType != "exact" {
		t.Errorf("DifferenceType = %q, want exact", resp.Analysis.DifferenceType)
	}
	if resp.Analysis.Similarity != 1.0 {
		t.Errorf("Similarity = %v, want 1.0", resp.Analysis.Similarity)
	}
}

func TestAnalyzeEndpointInvalidDate(t *testing.T) {
	srv := testServer(t)

	rec := postJSON(t, srv, "/v1/analyze", AnalyzeRequest{
		A: AnalyzeDocument{Text: "some text", Date: "yesterday"},
		B: AnalyzeDocument{Text: "other text"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
