// Package fusion defines the merged multi-backend search result.
package fusion

import "github.com/lexora-cloud/docfuse/internal/domain/doc"

// Result is the ranked, truncated output of a fused search.
// Meta carries provenance counts for observability only; nothing downstream
// consumes it.
type Result struct {
	Documents []doc.Document
	Meta      map[string]string
}

// Empty creates a well-formed zero-document result with the given meta.
func Empty(meta map[string]string) Result {
	if meta == nil {
		meta = map[string]string{}
	}
	return Result{Documents: []doc.Document{}, Meta: meta}
}
