package yandex

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/doctype"
	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/domain/lawref"
	"github.com/lexora-cloud/docfuse/internal/extract"
	"github.com/lexora-cloud/docfuse/internal/metrics"
)

// backendName labels this adapter in logs and metrics.
const backendName = "yandex"

// LinkSearcher turns a query into ranked result URLs.
type LinkSearcher interface {
	Links(ctx context.Context, query string, n int) ([]string, error)
}

// PageFetcher retrieves and extracts a batch of pages concurrently.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string) []extract.Result
}

// Adapter is the external-search backend: web search, then concurrent page
// extraction, then normalization into unified documents.
type Adapter struct {
	client     LinkSearcher
	fetcher    PageFetcher
	classifier *doctype.Classifier
	logger     *zap.Logger
}

// NewAdapter creates the external-search adapter.
func NewAdapter(client LinkSearcher, fetcher PageFetcher, classifier *doctype.Classifier, logger *zap.Logger) *Adapter {
	if classifier == nil {
		classifier = doctype.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, fetcher: fetcher, classifier: classifier, logger: logger}
}

// Name returns the backend label.
func (a *Adapter) Name() string { return backendName }

// Search runs the web search and extracts each result page. Provider failures
// are logged and degrade to zero documents; they never propagate. Pages that
// failed to fetch come back as low-value placeholder documents, not gaps.
func (a *Adapter) Search(ctx context.Context, query string, limit int) ([]doc.Document, error) {
	start := time.Now()
	defer func() {
		metrics.BackendDuration.WithLabelValues(backendName).Observe(time.Since(start).Seconds())
	}()

	links, err := a.client.Links(ctx, query, limit)
	if err != nil {
		a.logger.Error("yandex search failed", zap.String("query", query), zap.Error(err))
		metrics.BackendResultsTotal.WithLabelValues(backendName, "error").Inc()
		return nil, nil
	}
	if len(links) == 0 {
		a.logger.Info("yandex search returned no links", zap.String("query", query))
		metrics.BackendResultsTotal.WithLabelValues(backendName, "ok").Inc()
		return nil, nil
	}

	pages := a.fetcher.FetchAll(ctx, links)

	docs := make([]doc.Document, 0, len(pages))
	for i, res := range pages {
		d, err := doc.New(res.Page.Title, res.URL, doc.SourceYandex)
		if err != nil {
			// A malformed URL from the provider: this document is unusable.
			a.logger.Warn("dropping unusable search hit", zap.String("url", res.URL), zap.Error(err))
			continue
		}

		d = d.WithContent(res.Page.Content).
			WithType(a.classifier.Classify(res.URL)).
			WithRawScore(positionScore(i, len(pages))).
			WithLawRefs(lawref.Scan(citationText(d.Title(), res.Page.Content)))
		docs = append(docs, d)
	}

	metrics.BackendResultsTotal.WithLabelValues(backendName, "ok").Add(float64(len(docs)))
	a.logger.Info("yandex search completed",
		zap.String("query", query),
		zap.Int("links", len(links)),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// positionScore derives a backend-native score from the search-engine rank:
// the first result gets 1.0, the last approaches 1/n.
func positionScore(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-index) / float64(total)
}

// citationText joins the fields scanned for regulatory citations.
func citationText(parts ...string) string {
	return strings.Join(parts, " ")
}
