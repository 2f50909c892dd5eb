// Package doc defines the unified document model shared by all search backends.
package doc

import (
	"crypto/md5" //nolint:gosec // identity hash, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/lexora-cloud/docfuse/internal/domain/lawref"
)

// Source identifies which backend produced a document.
type Source string

// Backend provenance values.
const (
	SourceYandex   Source = "yandex"
	SourceInternal Source = "internal"
)

// IsValid checks if the source is one of the supported values.
func (s Source) IsValid() bool {
	return s == SourceYandex || s == SourceInternal
}

// Type classifies a document by the authority of its origin.
type Type string

// Document type constants, ordered roughly by authority.
const (
	TypeLaw       Type = "law"
	TypeGovLetter Type = "gov_letter"
	TypeCourt     Type = "court"
	TypeArticle   Type = "article"
	TypeFAQ       Type = "faq"
	TypeNews      Type = "news"
	TypeForum     Type = "forum"
	TypeInternal  Type = "internal"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case TypeLaw, TypeGovLetter, TypeCourt, TypeArticle, TypeFAQ, TypeNews, TypeForum, TypeInternal:
		return true
	}
	return false
}

// ErrInvalidURL signals a document URL that is not a well-formed absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid document URL")

// PlaceholderTitle substitutes a title that resolved to empty after trimming.
const PlaceholderTitle = "Untitled"

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses all whitespace runs to single spaces and trims.
func NormalizeWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Document is one normalized search hit (immutable value object).
// The content identity is computed once at construction and never recomputed.
type Document struct {
	title     string
	snippet   string
	content   string
	url       string
	source    Source
	docType   Type
	scoreRaw  float64
	scoreRank float64
	lawRefs   []lawref.Ref
	contentID string
}

// New validates and creates a Document. A missing title degrades to the
// placeholder; a malformed URL is the only hard error. The document type
// defaults per source (internal for the internal backend, article otherwise).
func New(title, rawURL string, source Source) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Document{}, fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	if !source.IsValid() {
		return Document{}, fmt.Errorf("invalid document source %q", source)
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = PlaceholderTitle
	}

	docType := TypeArticle
	if source == SourceInternal {
		docType = TypeInternal
	}

	return Document{
		title:     title,
		url:       rawURL,
		source:    source,
		docType:   docType,
		contentID: ContentID(title, rawURL),
	}, nil
}

// ContentID derives the dedup identity from a title/URL pair:
// hex md5 of the lowercased "title|url" concatenation. Pure and idempotent.
func ContentID(title, rawURL string) string {
	base := strings.ToLower(title + "|" + rawURL)
	sum := md5.Sum([]byte(base)) //nolint:gosec // identity hash, not a security boundary
	return hex.EncodeToString(sum[:])
}

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Snippet returns the short preview text, if any.
func (d *Document) Snippet() string { return d.snippet }

// Content returns the extracted body text, if any.
func (d *Document) Content() string { return d.content }

// URL returns the document URL.
func (d *Document) URL() string { return d.url }

// Source returns the backend provenance.
func (d *Document) Source() Source { return d.source }

// DocType returns the document classification.
func (d *Document) DocType() Type { return d.docType }

// RawScore returns the backend-native relevance signal.
func (d *Document) RawScore() float64 { return d.scoreRaw }

// RankScore returns the fusion-computed ranking score.
func (d *Document) RankScore() float64 { return d.scoreRank }

// LawRefs returns the detected regulatory citations.
func (d *Document) LawRefs() []lawref.Ref { return d.lawRefs }

// ContentID returns the dedup identity computed at construction.
func (d *Document) ContentID() string { return d.contentID }

// WithSnippet returns a copy with the snippet set.
func (d Document) WithSnippet(snippet string) Document {
	d.snippet = strings.TrimSpace(snippet)
	return d
}

// WithContent returns a copy with the whitespace-normalized content set.
func (d Document) WithContent(content string) Document {
	d.content = NormalizeWhitespace(content)
	return d
}

// WithType returns a copy with the document type set.
// Unknown types are ignored and the current classification is kept.
func (d Document) WithType(t Type) Document {
	if t.IsValid() {
		d.docType = t
	}
	return d
}

// WithRawScore returns a copy with the backend-native score set.
func (d Document) WithRawScore(score float64) Document {
	d.scoreRaw = score
	return d
}

// WithLawRefs returns a copy with the detected citations set.
func (d Document) WithLawRefs(refs []lawref.Ref) Document {
	d.lawRefs = refs
	return d
}

// WithRankScore returns a copy with the fusion ranking score set.
// Called exactly once per document, during fusion.
func (d Document) WithRankScore(score float64) Document {
	d.scoreRank = score
	return d
}
