// Package answer synthesizes a single model answer over fused search results.
package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/domain/fusion"
	"github.com/lexora-cloud/docfuse/internal/llm"
	searchuc "github.com/lexora-cloud/docfuse/internal/usecase/search"
)

// maxSourceChars caps how much of each document body enters the prompt.
const maxSourceChars = 4000

// Searcher is the fusion orchestrator contract this service consumes.
type Searcher interface {
	Search(ctx context.Context, query, source string, limit int) fusion.Result
}

// Answer is a synthesized answer plus the documents it was grounded on.
type Answer struct {
	Text    string
	Sources []doc.Document
}

// Service runs a fused search and one completion over the top documents.
// Unlike the search path, answer synthesis may fail: provider errors
// propagate so the transport can report them.
type Service struct {
	search Searcher
	gen    llm.Generator
	logger *zap.Logger
}

// New creates the answer service.
func New(search Searcher, gen llm.Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{search: search, gen: gen, logger: logger}
}

// Answer searches both backends and asks the model to answer from the sources.
func (s *Service) Answer(ctx context.Context, query string) (Answer, error) {
	result := s.search.Search(ctx, query, searchuc.SourceBoth, searchuc.DefaultLimit)
	if len(result.Documents) == 0 {
		return Answer{Text: "", Sources: []doc.Document{}}, nil
	}

	text, err := s.gen.Generate(ctx, buildPrompt(query, result.Documents))
	if err != nil {
		return Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Info("answer synthesized",
		zap.String("query", query),
		zap.Int("sources", len(result.Documents)),
	)
	return Answer{Text: text, Sources: result.Documents}, nil
}

// buildPrompt lays out the query and numbered sources for the model.
func buildPrompt(query string, docs []doc.Document) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the sources below. ")
	b.WriteString("Cite sources by number.\n\n")
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\n")

	for i, d := range docs {
		fmt.Fprintf(&b, "Source #%d: %s\n%s\n", i+1, d.Title(), d.URL())
		body := d.Content()
		if body == "" {
			body = d.Snippet()
		}
		if r := []rune(body); len(r) > maxSourceChars {
			body = string(r[:maxSourceChars])
		}
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	return b.String()
}
