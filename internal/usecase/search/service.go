// Package search fuses the results of the internal index and external web
// search into one deduplicated, ranked document list.
package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
	"github.com/lexora-cloud/docfuse/internal/domain/fusion"
	"github.com/lexora-cloud/docfuse/internal/metrics"
)

// Source selection values.
const (
	SourceInternal = "internal"
	SourceYandex   = "yandex"
	SourceBoth     = "both"
)

// Limit bounds for one search.
const (
	MinLimit     = 1
	MaxLimit     = 10
	DefaultLimit = 5
)

// NormalizeSource coerces unrecognized source values to "both".
func NormalizeSource(source string) string {
	switch source {
	case SourceInternal, SourceYandex, SourceBoth:
		return source
	}
	return SourceBoth
}

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Service is the fusion orchestrator. It never returns an error: backend
// failures degrade to zero contributions and the worst case is an empty,
// well-formed result.
type Service struct {
	internal Backend
	yandex   Backend
	logger   *zap.Logger
}

// New creates the fusion orchestrator.
func New(internal, yandex Backend, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{internal: internal, yandex: yandex, logger: logger}
}

// Search runs the selected backends concurrently, merges their documents,
// deduplicates by content identity, scores, ranks and truncates to limit.
// A blank query short-circuits without invoking any backend.
func (s *Service) Search(ctx context.Context, query, source string, limit int) fusion.Result {
	source = NormalizeSource(source)
	limit = ClampLimit(limit)
	metrics.SearchRequestsTotal.WithLabelValues(source).Inc()

	if strings.TrimSpace(query) == "" {
		s.logger.Warn("empty query, skipping backends")
		return fusion.Empty(map[string]string{"total_before_dedup": "0"})
	}

	var (
		internalDocs []doc.Document
		yandexDocs   []doc.Document
		wg           sync.WaitGroup
	)

	// Each backend writes only its own slice; the orchestrator reads both
	// only after the join. A failure in one cannot touch the other.
	run := func(b Backend, out *[]doc.Document) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("backend panic", zap.String("backend", b.Name()), zap.Any("panic", r))
			}
		}()

		docs, err := b.Search(ctx, query, limit)
		if err != nil {
			s.logger.Error("backend search failed", zap.String("backend", b.Name()), zap.Error(err))
			return
		}
		*out = docs
	}

	if source == SourceInternal || source == SourceBoth {
		wg.Add(1)
		go run(s.internal, &internalDocs)
	}
	if source == SourceYandex || source == SourceBoth {
		wg.Add(1)
		go run(s.yandex, &yandexDocs)
	}
	wg.Wait()

	// Merge order is fixed — internal first — so the stable sort below is
	// deterministic for identical backend responses.
	merged := make([]doc.Document, 0, len(internalDocs)+len(yandexDocs))
	merged = append(merged, internalDocs...)
	merged = append(merged, yandexDocs...)
	totalBefore := len(merged)

	deduped := dedupe(merged)

	ranked := make([]doc.Document, len(deduped))
	for i, d := range deduped {
		ranked[i] = d.WithRankScore(rankScore(d))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RankScore() > ranked[j].RankScore()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.logger.Info("search fused",
		zap.String("query", query),
		zap.String("source", source),
		zap.Int("internal", len(internalDocs)),
		zap.Int("yandex", len(yandexDocs)),
		zap.Int("deduped", len(deduped)),
		zap.Int("returned", len(ranked)),
	)

	return fusion.Result{
		Documents: ranked,
		Meta: map[string]string{
			"total_before_dedup": strconv.Itoa(totalBefore),
			"internal_count":     strconv.Itoa(len(internalDocs)),
			"yandex_count":       strconv.Itoa(len(yandexDocs)),
			"deduped_count":      strconv.Itoa(len(deduped)),
		},
	}
}

// dedupe keeps the first occurrence per content identity, preserving merge order.
func dedupe(docs []doc.Document) []doc.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]doc.Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.ContentID()]; ok {
			continue
		}
		seen[d.ContentID()] = struct{}{}
		out = append(out, d)
	}
	return out
}
