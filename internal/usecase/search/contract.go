package search

import (
	"context"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
)

// Backend turns a text query into unified documents. Implementations absorb
// their own failures and return what they could get; an error from Search is
// still isolated at the orchestrator's call site.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]doc.Document, error)
}
