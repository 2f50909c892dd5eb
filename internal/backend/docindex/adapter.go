package docindex

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/domain/lawref"
	"github.com/lexora-cloud/docfuse/internal/metrics"
)

// backendName labels this adapter in logs and metrics.
const backendName = "internal"

// Searcher is the index client contract.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Item, error)
}

// Adapter is the internal-index backend: it maps pre-ranked index hits into
// unified documents and mirrors the external adapter's resilience contract —
// any failure degrades to zero documents.
type Adapter struct {
	client Searcher
	logger *zap.Logger
}

// NewAdapter creates the internal-index adapter.
func NewAdapter(client Searcher, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger}
}

// Name returns the backend label.
func (a *Adapter) Name() string { return backendName }

// Search queries the index and converts its hits at the boundary.
// Items without a usable URL are dropped; everything else is kept as-is,
// trusting the index's own ranking as the raw score.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]doc.Document, error) {
	start := time.Now()
	defer func() {
		metrics.BackendDuration.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	}()

	items, err := a.client.Search(ctx, query, limit)
	if err != nil {
		a.logger.Error("internal search failed", zap.String("query", query), zap.Error(err))
		metrics.BackendResultsTotal.WithLabelValues(backendName, "error").Inc()
		return nil, nil
	}

	docs := make([]doc.Document, 0, len(items))
	for i, item := range items {
		d, err := doc.New(item.DocName, item.URL, doc.SourceInternal)
		if err != nil {
			a.logger.Warn("dropping unusable index hit",
				zap.String("id", item.ID), zap.String("url", item.URL), zap.Error(err))
			continue
		}

		d = d.WithSnippet(item.Snippet).
			WithType(doc.Type(item.DocType)). // unknown values keep the internal default
			WithRawScore(itemScore(item, i, len(items))).
			WithLawRefs(lawref.Scan(d.Title() + " " + item.Snippet))
		docs = append(docs, d)
	}

	metrics.BackendResultsTotal.WithLabelValues(backendName, "ok").Add(float64(len(docs)))
	a.logger.Info("internal search completed",
		zap.String("query", query),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// itemScore prefers the index's own relevance score, falling back to a
// position-derived value when the index did not supply one.
func itemScore(item Item, index, total int) float64 {
	if item.Score > 0 {
		return item.Score
	}
	if total <= 0 {
		return 0
	}
	return float64(total-index) / float64(total)
}
