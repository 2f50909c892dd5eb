package doctype

import (
	"testing"

	"github.com/lexora-cloud/docfuse/internal/domain/doc"
)

func TestClassify_DefaultRules(t *testing.T) {
	c := New(nil)

	cases := map[string]doc.Type{
		"https://www.consultant.ru/document/cons_doc_LAW_19671/": doc.TypeLaw,
		"https://base.garant.ru/10900200/":                       doc.TypeLaw,
		"https://www.nalog.gov.ru/rn77/taxation/":                doc.TypeGovLetter,
		"https://minfin.gov.ru/ru/document/":                     doc.TypeGovLetter,
		"https://sudact.ru/arbitral/doc/":                        doc.TypeCourt,
		"https://forum.klerk.ru/threads/12345":                   doc.TypeForum,
		"https://www.rbc.ru/news/economics":                      doc.TypeNews,
		"https://example.com/faq/taxes":                          doc.TypeFAQ,
		"https://habr.com/ru/articles/12345/":                    doc.TypeArticle,
	}
	for url, want := range cases {
		if got := c.Classify(url); got != want {
			t.Errorf("Classify(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	c := New(nil)
	// Hosts a legal-publisher domain and the "news" keyword; the publisher
	// rule comes first in the table.
	if got := c.Classify("https://www.consultant.ru/news/123"); got != doc.TypeLaw {
		t.Errorf("expected law, got %q", got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New(nil)
	if got := c.Classify("https://WWW.CONSULTANT.RU/doc"); got != doc.TypeLaw {
		t.Errorf("expected law, got %q", got)
	}
}

func TestClassify_CustomRulesReplaceDefaults(t *testing.T) {
	c := New([]Rule{{Substr: "mycorp.example", Type: doc.TypeInternal}})

	if got := c.Classify("https://docs.mycorp.example/policy"); got != doc.TypeInternal {
		t.Errorf("expected internal, got %q", got)
	}
	// Default table is replaced, not extended.
	if got := c.Classify("https://www.consultant.ru/doc"); got != doc.TypeArticle {
		t.Errorf("expected article fallback, got %q", got)
	}
}
