// Package doctype infers a document classification from its URL.
package doctype

import (
	"strings"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
)

// Rule maps a URL substring to a document type. Rules are checked in order;
// the first match wins.
type Rule struct {
	Substr string
	Type   doc.Type
}

// DefaultRules returns the built-in domain heuristics: known legal publishers,
// government portals and case-law archives first, then generic URL keywords.
func DefaultRules() []Rule {
	return []Rule{
		{Substr: "consultant.ru", Type: doc.TypeLaw},
		{Substr: "garant.ru", Type: doc.TypeLaw},
		{Substr: "nalog.gov.ru", Type: doc.TypeGovLetter},
		{Substr: "minfin.gov.ru", Type: doc.TypeGovLetter},
		{Substr: "sudact.ru", Type: doc.TypeCourt},
		{Substr: "forum", Type: doc.TypeForum},
		{Substr: "news", Type: doc.TypeNews},
		{Substr: "faq", Type: doc.TypeFAQ},
	}
}

// Classifier resolves document types by substring matching over the URL.
type Classifier struct {
	rules []Rule
}

// New creates a classifier. With no rules the default table is used.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the type for a URL, defaulting to article.
func (c *Classifier) Classify(rawURL string) doc.Type {
	lower := strings.ToLower(rawURL)
	for _, r := range c.rules {
		if strings.Contains(lower, r.Substr) {
			return r.Type
		}
	}
	return doc.TypeArticle
}
