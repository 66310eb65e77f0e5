package server

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chartscrub/chartscrub/internal/fingerprint"
	"github.com/chartscrub/chartscrub/internal/redact"
	"github.com/chartscrub/chartscrub/internal/timeline"
)

// ScrubRequest is the body of POST /v1/scrub
type ScrubRequest struct {
	Text      string `json:"text"`
	RegexOnly bool   `json:"regex_only"`
}

// ScrubResponse is the body of a successful scrub
type ScrubResponse struct {
	Text         string            `json:"text"`
	Replacements map[string]string `json:"replacements"`
	Count        int               `json:"count"`
	Confidence   *int              `json:"confidence,omitempty"`
}

// FingerprintRequest is the body of POST /v1/fingerprint
type FingerprintRequest struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// AnalyzeRequest is the body of POST /v1/analyze. Dates are optional
// RFC 3339 strings; missing dates fall back to date references in the text.
type AnalyzeRequest struct {
	A AnalyzeDocument `json:"a"`
	B AnalyzeDocument `json:"b"`
}

// AnalyzeDocument is one side of a pairwise comparison
type AnalyzeDocument struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
	Date     string `json:"date,omitempty"`
}

// AnalyzeResponse is the body of a successful pairwise analysis
type AnalyzeResponse struct {
	A        *fingerprint.Fingerprint    `json:"a"`
	B        *fingerprint.Fingerprint    `json:"b"`
	Analysis fingerprint.DuplicateAnalysis `json:"analysis"`
}

// errorResponse is the uniform error body
type errorResponse struct {
	Error string `json:"error"`
}

// handleScrub redacts the posted text
func (s *Server) handleScrub(w http.ResponseWriter, r *http.Request) {
	var req ScrubRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	result, err := s.scrubber.Scrub(r.Context(), req.Text, redact.Options{RegexOnly: req.RegexOnly})
	if err != nil {
		s.logger.Error("Scrub failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "scrub failed")
		return
	}

	if s.hub != nil {
		s.hub.DocumentScrubbed("api", result.Count, result.Confidence)
	}

	s.writeJSON(w, http.StatusOK, ScrubResponse{
		Text:         result.Text.String(),
		Replacements: result.Replacements,
		Count:        result.Count,
		Confidence:   result.Confidence,
	})
}

// handleFingerprint computes the fingerprint of the posted document
func (s *Server) handleFingerprint(w http.ResponseWriter, r *http.Request) {
	var req FingerprintRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	s.writeJSON(w, http.StatusOK, fingerprint.New(req.Filename, req.Text))
}

// handleAnalyze runs pairwise duplicate analysis over two documents
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.A.Text == "" || req.B.Text == "" {
		s.writeError(w, http.StatusBadRequest, "both documents need text")
		return
	}

	fpA := fingerprint.New(req.A.Filename, req.A.Text)
	fpB := fingerprint.New(req.B.Filename, req.B.Text)

	dateA, err := documentDate(req.A)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date for document a")
		return
	}
	dateB, err := documentDate(req.B)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid date for document b")
		return
	}

	analysis := fingerprint.AnalyzeDuplication(fpA, fpB, dateA, dateB)

	if s.hub != nil && analysis.IsDuplicate {
		s.hub.DuplicateFound(req.A.Filename, req.B.Filename, analysis.DifferenceType, analysis.Similarity)
	}

	s.writeJSON(w, http.StatusOK, AnalyzeResponse{
		A:        fpA,
		B:        fpB,
		Analysis: analysis,
	})
}

// documentDate resolves the comparison date for one document: an explicit
// RFC 3339 date wins, otherwise the first date reference found in the text.
func documentDate(doc AnalyzeDocument) (time.Time, error) {
	if doc.Date != "" {
		return time.Parse(time.RFC3339, doc.Date)
	}
	if t, ok := timeline.FirstDate(doc.Text); ok {
		return t, nil
	}
	return time.Time{}, nil
}

// decodeJSON decodes the request body, writing a 400 on failure
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if s.config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
