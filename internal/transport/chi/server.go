// Package chi implements the HTTP API on the chi router.
package chi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/domain/fusion"
	answeruc "github.com/lexora-cloud/docfuse/internal/usecase/answer"
	healthuc "github.com/lexora-cloud/docfuse/internal/usecase/health"
	searchuc "github.com/lexora-cloud/docfuse/internal/usecase/search"
)

// snippetRunes is the fallback snippet length taken from content.
const snippetRunes = 200

// Searcher is the fusion orchestrator contract.
type Searcher interface {
	Search(ctx context.Context, query, source string, limit int) fusion.Result
}

// Answerer synthesizes an answer over fused results.
type Answerer interface {
	Answer(ctx context.Context, query string) (answeruc.Answer, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	search Searcher
	answer Answerer // nil when no completion provider is configured
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates the HTTP API server. answer may be nil.
func NewServer(search Searcher, answer Answerer, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{search: search, answer: answer, health: health, logger: logger}
}

// Routes registers all API handlers on the router.
func (s *Server) Routes(r gochi.Router) {
	r.Post("/v1/search", s.handleSearch)
	r.Post("/v1/answer", s.handleAnswer)
	r.Get("/health", s.handleHealth)
}

type searchRequest struct {
	Query  string `json:"query"`
	Source string `json:"source"`
	Limit  *int   `json:"limit"`
}

type documentJSON struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source"`
	DocType string  `json:"doc_type"`
	Score   float64 `json:"score"`
}

type searchResponse struct {
	Documents  []documentJSON `json:"documents"`
	TotalFound int            `json:"total_found"`
	Query      string         `json:"query"`
	Source     string         `json:"source"`
}

// handleSearch serves POST /v1/search. A well-formed request always gets 200:
// an empty or whitespace-only query yields the same shape with zero documents.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	source := searchuc.NormalizeSource(req.Source)
	limit := searchuc.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	result := s.search.Search(r.Context(), req.Query, source, limit)

	docs := make([]documentJSON, 0, len(result.Documents))
	for _, d := range result.Documents {
		docs = append(docs, toDocumentJSON(d))
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Documents:  docs,
		TotalFound: len(docs),
		Query:      req.Query,
		Source:     source,
	})
}

type answerRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Answer  string         `json:"answer"`
	Sources []documentJSON `json:"sources"`
	Query   string         `json:"query"`
}

// handleAnswer serves POST /v1/answer.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if s.answer == nil {
		writeError(w, http.StatusNotImplemented, "no completion provider configured")
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ans, err := s.answer.Answer(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("answer synthesis failed", zap.String("query", req.Query), zap.Error(err))
		writeError(w, http.StatusBadGateway, "answer synthesis failed")
		return
	}

	sources := make([]documentJSON, 0, len(ans.Sources))
	for _, d := range ans.Sources {
		sources = append(sources, toDocumentJSON(d))
	}
	writeJSON(w, http.StatusOK, answerResponse{Answer: ans.Text, Sources: sources, Query: req.Query})
}

// handleHealth serves GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// toDocumentJSON flattens a document for the API: the rank score rounded to
// two decimals, the snippet falling back to the leading content runes.
func toDocumentJSON(d doc.Document) documentJSON {
	return documentJSON{
		Title:   d.Title(),
		URL:     d.URL(),
		Snippet: snippetOf(d),
		Source:  string(d.Source()),
		DocType: string(d.DocType()),
		Score:   math.Round(d.RankScore()*100) / 100,
	}
}

func snippetOf(d doc.Document) string {
	if s := d.Snippet(); s != "" {
		return s
	}
	r := []rune(d.Content())
	if len(r) > snippetRunes {
		r = r[:snippetRunes]
	}
	return string(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
