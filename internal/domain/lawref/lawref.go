// Package lawref detects regulatory citations in document text.
package lawref

import (
	"regexp"
	"strings"
)

// Ref is a single regulatory citation: the legal-code abbreviation and,
// when present, the article it points at.
type Ref struct {
	Code    string
	Article string
}

// citationPattern matches a known legal-code abbreviation optionally followed
// by an article reference within the same clause (the lazy gap stops at clause
// punctuation). The vocabulary is fixed: tax code, accounting standards (old
// and federal), labor code, civil code.
var citationPattern = regexp.MustCompile(
	`(?i)(НК РФ|ПБУ|ФСБУ|ТК РФ|ГК РФ)(?:[^.,;:]{0,40}?(ст\.?\s?\d+))?`,
)

// Scan extracts all citations found in text, preserving match order.
// Codes are normalized to upper case; the article part is kept as matched.
func Scan(text string) []Ref {
	if text == "" {
		return nil
	}

	matches := citationPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, Ref{
			Code:    strings.ToUpper(m[1]),
			Article: m[2],
		})
	}
	return refs
}
