package search

import "github.com/lexora-cloud/docfuse/internal/domain/doc"

// typeWeights orders authoritative sources above discussion content.
// The values are tunable policy; the ordering law/gov_letter > court >
// internal > article > faq > news > forum is the contract.
var typeWeights = map[doc.Type]float64{
	doc.TypeLaw:       1.0,
	doc.TypeGovLetter: 0.95,
	doc.TypeCourt:     0.85,
	doc.TypeInternal:  0.75,
	doc.TypeArticle:   0.6,
	doc.TypeFAQ:       0.5,
	doc.TypeNews:      0.4,
	doc.TypeForum:     0.3,
}

const (
	// citationBoost rewards documents citing a recognized legal code.
	citationBoost = 0.25
	// rawScoreWeight is the tie-break contribution of the backend-native score.
	rawScoreWeight = 0.1
	// defaultTypeWeight covers types missing from the table.
	defaultTypeWeight = 0.5
)

// rankScore computes the fusion ranking score as a pure function of fields
// already on the document: type weight, citation boost and a bounded share
// of the backend-native score. No I/O, idempotent.
func rankScore(d doc.Document) float64 {
	w, ok := typeWeights[d.DocType()]
	if !ok {
		w = defaultTypeWeight
	}

	score := w
	if len(d.LawRefs()) > 0 {
		score += citationBoost
	}

	raw := d.RawScore()
	if raw < 0 {
		raw = 0
	}
	if raw > 1 {
		raw = 1
	}
	return score + raw*rawScoreWeight
}
